package services

// Config 统一的业务服务配置结构，为各个具体 Service 提供合约包 ID、
// 交易池表、策略上限等运行时参数。
//
// **设计目的**：
// - 避免在各个 service 内部硬编码合约包 ID / 池对象 ID
// - 保持与结算层协议的解耦：协议层只关心输入输出，业务配置由 SDK 使用方提供
//
// **说明**：
// - 地址类字段统一使用 0x 前缀的十六进制对象 ID
type Config struct {
	// VenuePackageID 交易场所（现货 DEX）合约包 ID
	VenuePackageID string

	// AuthPackageID 委托授权合约包 ID
	AuthPackageID string

	// Pools 已知交易池表
	Pools []PoolEntry

	// Limits 策略上限（零值字段采用默认值）
	Limits PolicyLimits
}

// PoolEntry 交易池登记项
type PoolEntry struct {
	// ObjectID 池共享对象 ID
	ObjectID string
	// TokenX / TokenY 池两侧代币的类型标签
	TokenX string
	TokenY string
}

// PolicyLimits 意图策略上限
//
// 全部在本地校验阶段生效，任何一项越界都在发起链上读取之前拒绝。
type PolicyLimits struct {
	// MaxAmount 单笔最大金额（人类可读单位的十进制字符串，按代币精度换算比较）
	MaxAmount string
	// MaxSlippageBps 最大滑点（基点）
	MaxSlippageBps uint64
	// MaxActions 单批次最大动作数
	MaxActions int
	// MinConfidence 分类置信度下限
	MinConfidence float64
}

// DefaultLimits 返回默认策略上限
func DefaultLimits() PolicyLimits {
	return PolicyLimits{
		MaxAmount:      "1000",
		MaxSlippageBps: 500,
		MaxActions:     5,
		MinConfidence:  0.7,
	}
}

// LimitsOrDefault 返回配置的上限，零值字段回落到默认值
func (c *Config) LimitsOrDefault() PolicyLimits {
	def := DefaultLimits()
	limits := c.Limits
	if limits.MaxAmount == "" {
		limits.MaxAmount = def.MaxAmount
	}
	if limits.MaxSlippageBps == 0 {
		limits.MaxSlippageBps = def.MaxSlippageBps
	}
	if limits.MaxActions == 0 {
		limits.MaxActions = def.MaxActions
	}
	if limits.MinConfidence == 0 {
		limits.MinConfidence = def.MinConfidence
	}
	return limits
}
