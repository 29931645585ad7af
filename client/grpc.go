package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// grpcClient gRPC 客户端实现
type grpcClient struct {
	conn     *grpc.ClientConn
	endpoint string
}

// NewGRPCClient 创建 gRPC 客户端
func NewGRPCClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	endpoint := config.Endpoint
	// 如果 endpoint 包含 http:// 或 https://，移除协议前缀
	if len(endpoint) >= 7 && endpoint[:7] == "http://" {
		endpoint = endpoint[7:]
	} else if len(endpoint) >= 8 && endpoint[:8] == "https://" {
		endpoint = endpoint[8:]
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	creds := insecure.NewCredentials()
	if config.TLS != nil {
		tlsCfg, err := config.TLS.build()
		if err != nil {
			return nil, err
		}
		creds = credentials.NewTLS(tlsCfg)
	}

	conn, err := grpc.DialContext(ctx, endpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC: %w", err)
	}

	return &grpcClient{
		conn:     conn,
		endpoint: endpoint,
	}, nil
}

// Call 调用 JSON-RPC 方法（通过 gRPC）
//
// 注意：当前实现假设节点提供 gRPC 接口；节点只提供 JSON-RPC over HTTP 时
// 需要通过 HTTP 适配器实现。
func (c *grpcClient) Call(ctx context.Context, method string, params interface{}) (interface{}, error) {
	// TODO: 节点的 gRPC 服务定义发布后接入真实调用
	return nil, NewNotSupportedError("gRPC transport is not wired to a node service yet, use HTTP or WebSocket")
}

// ExecuteTransactionBlock 提交已签名的交易块
func (c *grpcClient) ExecuteTransactionBlock(ctx context.Context, draftJSON []byte, signatures []string) (*ExecuteResult, error) {
	return executeTransactionBlock(ctx, c, draftJSON, signatures)
}

// Subscribe 订阅事件
func (c *grpcClient) Subscribe(ctx context.Context, filter *EventFilter) (<-chan *Event, error) {
	return nil, NewNotSupportedError("event subscription over gRPC, use WebSocket client instead")
}

// Close 关闭连接
func (c *grpcClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
