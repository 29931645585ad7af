package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/otterhq/intent-sdk-go/types"
)

// httpClient HTTP客户端实现
type httpClient struct {
	endpoint string
	client   *http.Client
	logger   Logger
	debug    bool
	nextID   atomic.Uint64
	retry    *RetryConfig
}

// NewHTTPClient 创建HTTP客户端
func NewHTTPClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	httpCli := &http.Client{
		Timeout: time.Duration(config.Timeout) * time.Second,
	}
	if config.TLS != nil {
		tlsCfg, err := config.TLS.build()
		if err != nil {
			return nil, err
		}
		httpCli.Transport = &http.Transport{TLSClientConfig: tlsCfg}
	}

	retryConfig := config.Retry
	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
		// 如果配置了重试，添加日志回调
		if config.Debug && config.Logger != nil {
			retryConfig.OnRetry = func(attempt int, err error) {
				config.Logger.Warn("Retrying request", "attempt", attempt, "error", err)
			}
		}
	}

	return &httpClient{
		endpoint: config.Endpoint,
		client:   httpCli,
		logger:   config.Logger,
		debug:    config.Debug,
		nextID:   atomic.Uint64{},
		retry:    retryConfig,
	}, nil
}

// Call 调用JSON-RPC方法
func (c *httpClient) Call(ctx context.Context, method string, params interface{}) (interface{}, error) {
	// 使用原子计数器生成唯一ID
	req := &jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("JSON-RPC request", "method", method, "body", string(reqBody))
	}

	// 发送请求（带重试）
	var resp *http.Response
	var respErr error

	if c.retry != nil {
		respErr = withRetry(ctx, func() error {
			// 每次重试都创建新的请求（因为 Body 只能读取一次）
			httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
			if reqErr != nil {
				return fmt.Errorf("create request failed: %w", reqErr)
			}

			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("Accept", "application/json")

			httpResp, reqErr := c.client.Do(httpReq)
			if reqErr != nil {
				return reqErr
			}

			if isRetryableHTTPError(httpResp.StatusCode) {
				httpResp.Body.Close()
				return &httpStatusError{status: httpResp.StatusCode}
			}

			resp = httpResp
			return nil
		}, c.retry)
		if respErr != nil {
			return nil, fmt.Errorf("send request failed: %w", respErr)
		}
	} else {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
		if err != nil {
			return nil, fmt.Errorf("create request failed: %w", err)
		}

		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")

		resp, err = c.client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("send request failed: %w", err)
		}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			if c.logger != nil {
				c.logger.Warn("Failed to close response body", "error", err)
			}
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("JSON-RPC response", "status", resp.StatusCode, "body", string(respBody))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var jsonResp jsonRPCResponse
	if err := json.Unmarshal(respBody, &jsonResp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	if jsonResp.Error != nil {
		return nil, NewRPCError(jsonResp.Error.Code, jsonResp.Error.Message, jsonResp.Error.Data)
	}

	return jsonResp.Result, nil
}

// ExecuteTransactionBlock 提交已签名的交易块
func (c *httpClient) ExecuteTransactionBlock(ctx context.Context, draftJSON []byte, signatures []string) (*ExecuteResult, error) {
	return executeTransactionBlock(ctx, c, draftJSON, signatures)
}

// Subscribe 订阅事件（HTTP不支持，需要使用WebSocket）
func (c *httpClient) Subscribe(ctx context.Context, filter *EventFilter) (<-chan *Event, error) {
	return nil, NewNotSupportedError("event subscription over HTTP, use WebSocket client instead")
}

// Close 关闭连接（HTTP客户端无需特殊处理）
func (c *httpClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// executeTransactionBlock 通过 Call 提交交易块（HTTP / WebSocket 共用）
func executeTransactionBlock(ctx context.Context, c Client, draftJSON []byte, signatures []string) (*ExecuteResult, error) {
	encoded := base64.StdEncoding.EncodeToString(draftJSON)
	params := []interface{}{
		encoded,
		signatures,
		map[string]interface{}{"showEffects": true},
		"WaitForLocalExecution",
	}

	result, err := c.Call(ctx, "sui_executeTransactionBlock", params)
	if err != nil {
		return nil, fmt.Errorf("execute transaction block failed: %w", err)
	}

	resultMap, ok := result.(map[string]interface{})
	if !ok {
		return nil, NewInvalidResponseError("execute result is not an object")
	}

	exec := &ExecuteResult{}
	exec.Digest, _ = resultMap["digest"].(string)
	if effects, ok := resultMap["effects"].(map[string]interface{}); ok {
		if status, ok := effects["status"].(map[string]interface{}); ok {
			exec.Status, _ = status["status"].(string)
			exec.Error, _ = status["error"].(string)
		}
	}
	if exec.Digest == "" {
		return nil, NewInvalidResponseError("execute result missing digest")
	}
	if exec.Status != "" && exec.Status != "success" {
		return nil, &types.SettlementError{Digest: exec.Digest, Status: exec.Status, Detail: exec.Error}
	}
	return exec, nil
}

// jsonRPCRequest JSON-RPC请求结构
type jsonRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      uint64      `json:"id"`
}

// jsonRPCResponse JSON-RPC响应结构
type jsonRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *jsonRPCError `json:"error,omitempty"`
	ID      uint64        `json:"id"`
}

// jsonRPCError JSON-RPC错误结构
type jsonRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
