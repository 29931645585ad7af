package client

import (
	"context"
	"fmt"
)

// Client 结算层客户端接口
//
// 面向结算层全节点的窄接口：JSON-RPC 调用、已签名交易提交、
// 事件订阅。类型化的读辅助函数在 reads.go 中基于 Call 实现。
type Client interface {
	// Call 调用 JSON-RPC 方法
	Call(ctx context.Context, method string, params interface{}) (interface{}, error)

	// ExecuteTransactionBlock 提交已签名的交易块
	ExecuteTransactionBlock(ctx context.Context, draftJSON []byte, signatures []string) (*ExecuteResult, error)

	// Subscribe 订阅链上事件
	Subscribe(ctx context.Context, filter *EventFilter) (<-chan *Event, error)

	// Close 关闭连接
	Close() error
}

// EventFilter 事件过滤器
type EventFilter struct {
	// Package 事件来源合约包 ID
	Package string
	// Module 事件来源模块名
	Module string
	// EventType 完整事件类型标签
	EventType string
	// Sender 事件发起者地址
	Sender string
}

// Event 链上事件
type Event struct {
	// Type 事件类型标签
	Type string
	// TxDigest 产生事件的交易摘要
	TxDigest string
	// Data 事件载荷字段
	Data map[string]interface{}
}

// ExecuteResult 交易提交结果
type ExecuteResult struct {
	// Digest 交易摘要
	Digest string `json:"digest"`
	// Status 执行状态（success / failure）
	Status string `json:"status"`
	// Error 失败原因（仅失败时）
	Error string `json:"error,omitempty"`
}

// NewClient 创建新的客户端
func NewClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Protocol {
	case ProtocolHTTP:
		return NewHTTPClient(config)
	case ProtocolGRPC:
		return NewGRPCClient(config)
	case ProtocolWebSocket:
		return NewWebSocketClient(config)
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", config.Protocol)
	}
}
