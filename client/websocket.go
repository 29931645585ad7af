package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// websocketClient WebSocket 客户端实现
type websocketClient struct {
	endpoint string
	conn     *websocket.Conn
	mu       sync.RWMutex
	closed   int32
	nextID   uint64
	requests map[uint64]chan *jsonrpcResponse
	muReq    sync.RWMutex
	// subs 订阅 ID → 事件通道
	subs  map[uint64]chan *Event
	muSub sync.RWMutex
}

// jsonrpcResponse JSON-RPC 响应（WebSocket 通道上还会承载订阅通知）
type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
	ID      uint64          `json:"id"`
}

// jsonrpcError JSON-RPC 错误
type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// subscriptionNotice 订阅通知的 params 载荷
type subscriptionNotice struct {
	Subscription uint64 `json:"subscription"`
	Result       struct {
		Type              string                 `json:"type"`
		TransactionDigest string                 `json:"transactionDigest"`
		ParsedJSON        map[string]interface{} `json:"parsedJson"`
	} `json:"result"`
}

// NewWebSocketClient 创建 WebSocket 客户端
func NewWebSocketClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	endpoint := config.Endpoint
	// 将 http:// 或 https:// 转换为 ws:// 或 wss://
	if len(endpoint) >= 7 && endpoint[:7] == "http://" {
		endpoint = "ws://" + endpoint[7:]
	} else if len(endpoint) >= 8 && endpoint[:8] == "https://" {
		endpoint = "wss://" + endpoint[8:]
	} else if len(endpoint) < 5 || (endpoint[:5] != "ws://" && endpoint[:5] != "wss://") {
		endpoint = "ws://" + endpoint
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if config.TLS != nil {
		tlsCfg, err := config.TLS.build()
		if err != nil {
			return nil, err
		}
		dialer.TLSClientConfig = tlsCfg
	}

	conn, _, err := dialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}

	client := &websocketClient{
		endpoint: endpoint,
		conn:     conn,
		requests: make(map[uint64]chan *jsonrpcResponse),
		subs:     make(map[uint64]chan *Event),
	}

	// 启动消息读取循环
	go client.readLoop()

	return client, nil
}

// readLoop 消息读取循环：分发请求响应与订阅通知
func (c *websocketClient) readLoop() {
	defer func() {
		atomic.StoreInt32(&c.closed, 1)
		c.muReq.Lock()
		for _, ch := range c.requests {
			close(ch)
		}
		c.requests = make(map[uint64]chan *jsonrpcResponse)
		c.muReq.Unlock()
		c.muSub.Lock()
		for _, ch := range c.subs {
			close(ch)
		}
		c.subs = make(map[uint64]chan *Event)
		c.muSub.Unlock()
	}()

	for {
		if atomic.LoadInt32(&c.closed) == 1 {
			return
		}

		var resp jsonrpcResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			return
		}

		// 订阅通知
		if resp.Method == "suix_subscribeEvent" && resp.Params != nil {
			c.dispatchEvent(resp.Params)
			continue
		}

		// 请求响应
		c.muReq.Lock()
		ch, exists := c.requests[resp.ID]
		if exists {
			delete(c.requests, resp.ID)
		}
		c.muReq.Unlock()

		if exists && ch != nil {
			select {
			case ch <- &resp:
			default:
			}
		}
	}
}

// dispatchEvent 解析订阅通知并投递到对应通道
func (c *websocketClient) dispatchEvent(params json.RawMessage) {
	var notice subscriptionNotice
	if err := json.Unmarshal(params, &notice); err != nil {
		return
	}

	c.muSub.RLock()
	ch, ok := c.subs[notice.Subscription]
	c.muSub.RUnlock()
	if !ok {
		return
	}

	ev := &Event{
		Type:     notice.Result.Type,
		TxDigest: notice.Result.TransactionDigest,
		Data:     notice.Result.ParsedJSON,
	}
	select {
	case ch <- ev:
	default:
		// 通道满时丢弃，订阅方消费过慢
	}
}

// Call 调用 JSON-RPC 方法
func (c *websocketClient) Call(ctx context.Context, method string, params interface{}) (interface{}, error) {
	if atomic.LoadInt32(&c.closed) == 1 {
		return nil, fmt.Errorf("websocket client is closed")
	}

	reqID := atomic.AddUint64(&c.nextID, 1)

	req := jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      reqID,
	}

	respCh := make(chan *jsonrpcResponse, 1)
	c.muReq.Lock()
	c.requests[reqID] = respCh
	c.muReq.Unlock()

	c.mu.RLock()
	err := c.conn.WriteJSON(req)
	c.mu.RUnlock()
	if err != nil {
		c.muReq.Lock()
		delete(c.requests, reqID)
		c.muReq.Unlock()
		return nil, fmt.Errorf("write request: %w", err)
	}

	select {
	case resp := <-respCh:
		if resp == nil {
			return nil, fmt.Errorf("response channel closed")
		}
		if resp.Error != nil {
			return nil, NewRPCError(resp.Error.Code, resp.Error.Message, resp.Error.Data)
		}

		var result interface{}
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		return result, nil

	case <-ctx.Done():
		c.muReq.Lock()
		delete(c.requests, reqID)
		c.muReq.Unlock()
		return nil, ctx.Err()

	case <-time.After(30 * time.Second):
		c.muReq.Lock()
		delete(c.requests, reqID)
		c.muReq.Unlock()
		return nil, NewTimeoutError()
	}
}

// ExecuteTransactionBlock 提交已签名的交易块
func (c *websocketClient) ExecuteTransactionBlock(ctx context.Context, draftJSON []byte, signatures []string) (*ExecuteResult, error) {
	return executeTransactionBlock(ctx, c, draftJSON, signatures)
}

// Subscribe 订阅事件
func (c *websocketClient) Subscribe(ctx context.Context, filter *EventFilter) (<-chan *Event, error) {
	// 构建订阅过滤参数
	f := map[string]interface{}{}
	if filter != nil {
		if filter.Package != "" {
			f["Package"] = filter.Package
		}
		if filter.Module != "" {
			f["MoveModule"] = map[string]interface{}{
				"package": filter.Package,
				"module":  filter.Module,
			}
		}
		if filter.EventType != "" {
			f["MoveEventType"] = filter.EventType
		}
		if filter.Sender != "" {
			f["Sender"] = filter.Sender
		}
	}

	result, err := c.Call(ctx, "suix_subscribeEvent", []interface{}{f})
	if err != nil {
		return nil, fmt.Errorf("subscribe failed: %w", err)
	}

	// 订阅 ID 是一个数字
	subID, ok := result.(float64)
	if !ok {
		return nil, NewInvalidResponseError("subscription ID is not a number")
	}

	eventCh := make(chan *Event, 100)
	c.muSub.Lock()
	c.subs[uint64(subID)] = eventCh
	c.muSub.Unlock()

	// 上下文取消时退订并关闭通道
	go func() {
		<-ctx.Done()
		c.muSub.Lock()
		ch, ok := c.subs[uint64(subID)]
		if ok {
			delete(c.subs, uint64(subID))
			close(ch)
		}
		c.muSub.Unlock()
		if ok && atomic.LoadInt32(&c.closed) == 0 {
			unsubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, _ = c.Call(unsubCtx, "suix_unsubscribeEvent", []interface{}{uint64(subID)})
		}
	}()

	return eventCh, nil
}

// Close 关闭连接
func (c *websocketClient) Close() error {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	}
	return nil
}
