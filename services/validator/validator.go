package validator

import (
	"strings"

	"github.com/otterhq/intent-sdk-go/services"
	"github.com/otterhq/intent-sdk-go/token"
	"github.com/otterhq/intent-sdk-go/types"
	"github.com/otterhq/intent-sdk-go/utils"
)

// Service 意图校验服务接口
//
// 纯本地判定，零 I/O。必须在任何 coin 查询或报价调用之前运行：
// 它是整条流水线上最便宜的拒绝点。
type Service interface {
	// ValidateIntent 校验单个意图，按序检查，首个失败即返回
	ValidateIntent(intent *types.Intent) error

	// ValidateBatch 校验整批意图（逐个校验 + 批次上限）
	ValidateBatch(intents []*types.Intent) error
}

// service 校验服务实现
type service struct {
	limits services.PolicyLimits
}

// NewService 创建校验服务
func NewService(limits services.PolicyLimits) Service {
	return &service{limits: limits}
}

// percentScale 百分比按两位小数放大的整数刻度
const percentScale = 100

// ValidateIntent 校验单个意图
//
// 检查顺序（与拒绝优先级一致）：
//  1. 动作属于已知集合
//  2. 置信度达标
//  3. 按动作校验参数
func (s *service) ValidateIntent(intent *types.Intent) error {
	if intent == nil {
		return types.NewValidationError("intent is nil")
	}
	if !intent.Action.Known() {
		return types.NewValidationError("unknown action %q", string(intent.Action))
	}
	if intent.Confidence < s.limits.MinConfidence {
		return types.NewValidationError("confidence %.2f below threshold %.2f",
			intent.Confidence, s.limits.MinConfidence)
	}

	switch intent.Action {
	case types.ActionSwap:
		return s.validateSwap(intent.Swap)
	case types.ActionTransfer:
		return s.validateTransfer(intent.Transfer)
	case types.ActionSplit:
		return s.validateSplit(intent.Split)
	}
	return nil
}

// ValidateBatch 校验整批意图
func (s *service) ValidateBatch(intents []*types.Intent) error {
	if len(intents) == 0 {
		return types.NewValidationError("no intents to validate")
	}
	if len(intents) > s.limits.MaxActions {
		return types.NewValidationError("too many actions: %d exceeds limit %d",
			len(intents), s.limits.MaxActions)
	}
	for i, intent := range intents {
		if err := s.ValidateIntent(intent); err != nil {
			return types.NewValidationError("intent %d: %v", i, err)
		}
	}
	return nil
}

// validateSwap 校验兑换参数
func (s *service) validateSwap(p *types.SwapParams) error {
	if p == nil {
		return types.NewValidationError("swap params missing")
	}
	inInfo, err := token.Resolve(p.InputToken)
	if err != nil {
		return types.NewValidationError("input token %q is not allowed", p.InputToken)
	}
	if _, err := token.Resolve(p.OutputToken); err != nil {
		return types.NewValidationError("output token %q is not allowed", p.OutputToken)
	}
	if err := s.checkAmount(p.Amount, inInfo); err != nil {
		return err
	}

	slipBps, err := token.ParseSlippageBps(p.Slippage)
	if err != nil {
		return types.NewValidationError("slippage %q is not a valid fraction or percentage", p.Slippage)
	}
	if slipBps > s.limits.MaxSlippageBps {
		return types.NewValidationError("slippage %q exceeds maximum %d bps", p.Slippage, s.limits.MaxSlippageBps)
	}
	return nil
}

// validateTransfer 校验转账参数
func (s *service) validateTransfer(p *types.TransferParams) error {
	if p == nil {
		return types.NewValidationError("transfer params missing")
	}
	info, err := token.Resolve(p.Token)
	if err != nil {
		return types.NewValidationError("token %q is not allowed", p.Token)
	}
	if err := s.checkAmount(p.Amount, info); err != nil {
		return err
	}
	if !utils.IsValidAddress(p.Recipient) {
		return types.NewValidationError("recipient %q is not a valid address", p.Recipient)
	}
	return nil
}

// validateSplit 校验拆分参数
//
// 百分比之和按两位小数的整数刻度比较：100 ± 0.1 即 10000 ± 10。
func (s *service) validateSplit(p *types.SplitParams) error {
	if p == nil {
		return types.NewValidationError("split params missing")
	}
	if _, err := token.Resolve(p.Token); err != nil {
		return types.NewValidationError("token %q is not allowed", p.Token)
	}
	if len(p.Splits) == 0 {
		return types.NewValidationError("splits are empty")
	}
	if len(p.Recipients) > 0 && len(p.Recipients) != len(p.Splits) {
		return types.NewValidationError("recipients length %d does not match splits length %d",
			len(p.Recipients), len(p.Splits))
	}
	for _, r := range p.Recipients {
		if !utils.IsValidAddress(r) {
			return types.NewValidationError("recipient %q is not a valid address", r)
		}
	}

	var sum uint64
	for _, raw := range p.Splits {
		v := strings.TrimSuffix(strings.TrimSpace(raw), "%")
		scaled, err := token.ParseAmount(v, token.Info{Decimals: 2})
		if err != nil {
			return types.NewValidationError("split %q is not a valid percentage", raw)
		}
		if scaled == 0 {
			return types.NewValidationError("split %q must be greater than zero", raw)
		}
		sum += scaled
	}

	const (
		target    = 100 * percentScale
		tolerance = 10 // 0.1%
	)
	if sum < target-tolerance || sum > target+tolerance {
		return types.NewValidationError("split percentages sum to %d.%02d, expected 100 within 0.1",
			sum/percentScale, sum%percentScale)
	}
	return nil
}

// checkAmount 金额必须可解析且落在 (0, maxAmount] 内
func (s *service) checkAmount(amount string, info token.Info) error {
	parsed, err := token.ParseAmount(amount, info)
	if err != nil {
		return types.NewValidationError("amount %q is malformed", amount)
	}
	if parsed == 0 {
		return types.NewValidationError("amount must be greater than zero")
	}
	max, err := token.ParseAmount(s.limits.MaxAmount, info)
	if err != nil {
		return types.NewValidationError("configured max amount %q is malformed", s.limits.MaxAmount)
	}
	if parsed > max {
		return types.NewValidationError("amount %s exceeds maximum %s", amount, s.limits.MaxAmount)
	}
	return nil
}
