package types

// AuthorizationState 链上委托授权对象的只读缓存视图
//
// **架构说明**：
// 权威状态在链上合约里，只会被合约在每次委托执行或显式
// revoke/disable 时修改。SDK 只读取快照并在本地预判结果，
// 用于 UI 展示和编译期的资格预检；快照可能过期，最终以链上
// 提交时的校验为准。
type AuthorizationState struct {
	// ObjectID 授权对象 ID
	ObjectID string
	// Owner 授权人地址
	Owner string
	// Agent 被授权的代理地址
	Agent string
	// TokenType 本授权作用的代币类型标签
	TokenType string
	// DailyLimit 每日限额（最小单位）
	DailyLimit uint64
	// PerTxLimit 单笔限额（最小单位）
	PerTxLimit uint64
	// UsedToday 今日已用额度（最小单位）
	UsedToday uint64
	// LastReset 上次每日额度重置时间（Unix 毫秒，链上时钟口径）
	LastReset uint64
	// Expiry 过期时间（Unix 毫秒），过期后对象失效
	Expiry uint64
	// Enabled 是否启用
	Enabled bool
}
