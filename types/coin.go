package types

// Coin 结算层上不可再分的价值单元对象
//
// 同一时刻只属于一个地址；所有权随操作包的原子执行一并转移。
// SDK 只读取快照，从不直接修改。
type Coin struct {
	// ObjectID 对象 ID（唯一）
	ObjectID string `json:"coinObjectId"`
	// CoinType 代币类型标签
	CoinType string `json:"coinType"`
	// Balance 余额（最小单位）
	Balance uint64 `json:"balance,string"`
	// Version 对象版本（用于引用对象时的乐观并发）
	Version uint64 `json:"version,string"`
	// Digest 对象摘要
	Digest string `json:"digest,omitempty"`
}

// ObjectSnapshot 链上对象的只读快照
type ObjectSnapshot struct {
	ObjectID string `json:"objectId"`
	// Type 对象的完整类型标签
	Type    string `json:"type"`
	Version uint64 `json:"version,string"`
	// Fields 对象内容字段（节点返回的原始 JSON 结构）
	Fields map[string]interface{} `json:"fields"`
	// Shared 是否为共享对象
	Shared bool `json:"shared"`
}

// CreatedObject 交易效果中新创建的对象
type CreatedObject struct {
	ObjectID   string `json:"objectId"`
	ObjectType string `json:"objectType"`
}

// TransactionDetails 交易详情（效果、事件、创建对象列表）
type TransactionDetails struct {
	Digest string `json:"digest"`
	// Status 执行状态（"success" / "failure"）
	Status string `json:"status"`
	// Error 失败原因（Status 为 failure 时）
	Error   string          `json:"error,omitempty"`
	Created []CreatedObject `json:"created,omitempty"`
	// Events 原始事件列表
	Events []map[string]interface{} `json:"events,omitempty"`
}
