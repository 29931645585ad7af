package authorization

import (
	"fmt"
	"time"

	"github.com/otterhq/intent-sdk-go/token"
	"github.com/otterhq/intent-sdk-go/types"
)

// 策略引擎：对授权快照做纯本地的资格判定
//
// 这是一个乐观预过滤器，不是事实源：快照可能过期，链上合约在
// 提交时刻会重新校验。预判的价值在于避免浪费一次注定被拒绝的签名。

// dayMillis 每日额度窗口长度（毫秒）
const dayMillis = 24 * 60 * 60 * 1000

// EffectiveUsedToday 计算判定时刻的有效已用额度
//
// 距上次重置已满 24 小时的，合约在下次执行时会把 used_today 清零，
// 本地预判同样按零计算。
func EffectiveUsedToday(state *types.AuthorizationState, now time.Time) uint64 {
	nowMs := uint64(now.UnixMilli())
	if nowMs >= state.LastReset+dayMillis {
		return 0
	}
	return state.UsedToday
}

// CanDelegate 判定一笔金额能否走委托执行
//
// 资格条件：enabled ∧ now < expiry ∧ used + amount ≤ dailyLimit ∧ amount ≤ perTxLimit
func CanDelegate(state *types.AuthorizationState, requestedAmount uint64, now time.Time) bool {
	return CheckDelegate(state, requestedAmount, now) == nil
}

// CheckDelegate 同 CanDelegate，但携带具体拒绝原因
func CheckDelegate(state *types.AuthorizationState, requestedAmount uint64, now time.Time) error {
	if state == nil {
		return &types.DelegationError{Reason: "no authorization state"}
	}
	if !state.Enabled {
		return &types.DelegationError{Reason: "authorization is disabled"}
	}
	if uint64(now.UnixMilli()) >= state.Expiry {
		return &types.DelegationError{Reason: "authorization has expired"}
	}
	if requestedAmount > state.PerTxLimit {
		return &types.DelegationError{Reason: fmt.Sprintf(
			"amount %d exceeds per-transaction limit %d", requestedAmount, state.PerTxLimit)}
	}
	used := EffectiveUsedToday(state, now)
	if used+requestedAmount > state.DailyLimit {
		return &types.DelegationError{Reason: fmt.Sprintf(
			"amount %d would exceed daily limit: used %d of %d", requestedAmount, used, state.DailyLimit)}
	}
	return nil
}

// SetupParams 创建授权的链上调用参数（最小单位）
type SetupParams struct {
	DailyLimit   uint64
	PerTxLimit   uint64
	ValidityDays uint64
}

// FormatSetupParams 把人类可读的限额换算为链上调用参数
func FormatSetupParams(info token.Info, dailyLimit, perTxLimit string, validityDays int) (*SetupParams, error) {
	if validityDays <= 0 {
		return nil, types.NewValidationError("validity days must be positive, got %d", validityDays)
	}
	daily, err := token.ParseAmount(dailyLimit, info)
	if err != nil {
		return nil, fmt.Errorf("daily limit: %w", err)
	}
	perTx, err := token.ParseAmount(perTxLimit, info)
	if err != nil {
		return nil, fmt.Errorf("per-tx limit: %w", err)
	}
	if perTx > daily {
		return nil, types.NewValidationError("per-tx limit %s exceeds daily limit %s", perTxLimit, dailyLimit)
	}
	return &SetupParams{
		DailyLimit:   daily,
		PerTxLimit:   perTx,
		ValidityDays: uint64(validityDays),
	}, nil
}
