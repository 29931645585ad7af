package types

import (
	"encoding/json"
	"fmt"
)

// ActionType 意图动作类型
type ActionType string

const (
	ActionSwap     ActionType = "swap"
	ActionTransfer ActionType = "transfer"
	ActionSplit    ActionType = "split"
)

// Known 判断动作是否属于受支持的封闭集合
func (a ActionType) Known() bool {
	switch a {
	case ActionSwap, ActionTransfer, ActionSplit:
		return true
	}
	return false
}

// SwapParams 兑换参数
type SwapParams struct {
	// InputToken 输入代币符号（必须在白名单内）
	InputToken string `json:"inputToken"`
	// OutputToken 输出代币符号（必须在白名单内）
	OutputToken string `json:"outputToken"`
	// Amount 输入金额（十进制字符串，> 0）
	Amount string `json:"amount"`
	// Slippage 滑点（小数形式，"0.01" 表示 1%；也接受 "1%" 写法）
	Slippage string `json:"slippage"`
}

// TransferParams 转账参数
type TransferParams struct {
	// Token 代币符号
	Token string `json:"token"`
	// Amount 转账金额（十进制字符串，> 0）
	Amount string `json:"amount"`
	// Recipient 接收地址（0x + 64 位十六进制）
	Recipient string `json:"recipient"`
}

// SplitParams 拆分参数
type SplitParams struct {
	// Token 代币符号
	Token string `json:"token"`
	// Splits 每份的金额字符串（如 "30%"、"33.33%"，数值之和须为 100 ± 0.1）
	Splits []string `json:"splits"`
	// Recipients 可选：每份的接收地址，提供时长度必须与 Splits 一致
	Recipients []string `json:"recipients,omitempty"`
}

// Intent 单个用户意图
//
// **设计说明**：
// 动作集合是封闭的，用带标签的联合建模：Action 指明变体，
// 对应的参数字段恰好有一个非 nil。switch 时必须穷举全部变体，
// 新增动作会在编译期暴露遗漏的分支。
type Intent struct {
	Action     ActionType
	Swap       *SwapParams
	Transfer   *TransferParams
	Split      *SplitParams
	Confidence float64
}

// intentWire 分类服务使用的 JSON 外部格式：{action, params, confidence}
type intentWire struct {
	Action     ActionType      `json:"action"`
	Params     json.RawMessage `json:"params"`
	Confidence float64         `json:"confidence"`
}

// UnmarshalJSON 按 action 把多态的 params 解码到对应的变体字段
func (i *Intent) UnmarshalJSON(data []byte) error {
	var wire intentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	i.Action = wire.Action
	i.Confidence = wire.Confidence
	i.Swap = nil
	i.Transfer = nil
	i.Split = nil

	if len(wire.Params) == 0 {
		return nil
	}

	switch wire.Action {
	case ActionSwap:
		p := &SwapParams{}
		if err := json.Unmarshal(wire.Params, p); err != nil {
			return fmt.Errorf("decode swap params failed: %w", err)
		}
		i.Swap = p
	case ActionTransfer:
		p := &TransferParams{}
		if err := json.Unmarshal(wire.Params, p); err != nil {
			return fmt.Errorf("decode transfer params failed: %w", err)
		}
		i.Transfer = p
	case ActionSplit:
		p := &SplitParams{}
		if err := json.Unmarshal(wire.Params, p); err != nil {
			return fmt.Errorf("decode split params failed: %w", err)
		}
		i.Split = p
	default:
		// 未知动作保留 Action 原值，由校验器拒绝
	}

	return nil
}

// MarshalJSON 编码为分类服务的外部格式
func (i Intent) MarshalJSON() ([]byte, error) {
	var params interface{}
	switch i.Action {
	case ActionSwap:
		params = i.Swap
	case ActionTransfer:
		params = i.Transfer
	case ActionSplit:
		params = i.Split
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(intentWire{
		Action:     i.Action,
		Params:     raw,
		Confidence: i.Confidence,
	})
}

// ClassifierResponse 分类服务的响应 schema
type ClassifierResponse struct {
	Intents    []*Intent `json:"intents"`
	Summary    string    `json:"summary"`
	Confidence float64   `json:"confidence"`
}
