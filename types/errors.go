package types

import (
	"errors"
	"fmt"
)

// 错误分类：
//
//   - ValidationError     本地校验失败（无任何 I/O），调用方重新表述即可恢复
//   - 解析类哨兵错误       未知代币 / 找不到交易池，对该意图是终态
//   - InsufficientBalanceError 余额不足，携带需要/可用金额
//   - DelegationError     授权被禁用/过期/超额，编译期本地预判得出
//   - 外部读取错误         coin 查询 / 对象读取 / 报价失败，原样向上传播
//   - 结算层错误           提交之后链上报告的失败，完全在 SDK 控制之外
var (
	// ErrUnknownToken 代币符号不在白名单内
	ErrUnknownToken = errors.New("unknown token")
	// ErrMalformedAmount 金额字符串不是合法的非负十进制数
	ErrMalformedAmount = errors.New("malformed amount")
	// ErrPoolNotFound 没有已知的交易池服务该交易对
	ErrPoolNotFound = errors.New("pool not found")
	// ErrSenderRequired 操作需要发送者地址但未提供
	ErrSenderRequired = errors.New("sender address is required")
	// ErrUnknownAction 意图携带了不支持的动作
	ErrUnknownAction = errors.New("unknown action")
	// ErrMixedBatchUnsupported 同一批次混合 Swap 与其他动作
	ErrMixedBatchUnsupported = errors.New("mixed batch with swap is unsupported")
	// ErrNotFound 重试耗尽后仍未找到目标对象
	ErrNotFound = errors.New("object not found")
)

// ValidationError 意图校验失败
//
// 纯本地判定，携带面向用户的拒绝原因；绝不自动重试。
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "intent validation failed: " + e.Reason
}

// NewValidationError 创建校验错误
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InsufficientBalanceError 余额不足
//
// 携带需要金额与可用金额（最小单位），便于给用户呈现清晰的差额。
type InsufficientBalanceError struct {
	TokenType string
	Required  uint64
	Available uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s: required %d, available %d",
		e.TokenType, e.Required, e.Available)
}

// DelegationError 委托资格预检失败
//
// 在发出授权合约调用之前本地判定，避免浪费一次注定被链上拒绝的签名。
type DelegationError struct {
	Reason string
}

func (e *DelegationError) Error() string {
	return "delegated execution not eligible: " + e.Reason
}

// SettlementError 结算层在提交后报告的失败（gas 不足、合约 abort 等）
type SettlementError struct {
	Digest string
	Status string
	Detail string
}

func (e *SettlementError) Error() string {
	if e.Digest != "" {
		return fmt.Sprintf("settlement failed [%s]: %s: %s", e.Digest, e.Status, e.Detail)
	}
	return fmt.Sprintf("settlement failed: %s: %s", e.Status, e.Detail)
}

// IsValidation 判断错误是否为校验错误
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsInsufficientBalance 提取余额不足错误
func IsInsufficientBalance(err error) (*InsufficientBalanceError, bool) {
	var b *InsufficientBalanceError
	if errors.As(err, &b) {
		return b, true
	}
	return nil, false
}
