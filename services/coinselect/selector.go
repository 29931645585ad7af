package coinselect

import (
	"context"
	"fmt"

	"github.com/otterhq/intent-sdk-go/bundle"
	"github.com/otterhq/intent-sdk-go/client"
	"github.com/otterhq/intent-sdk-go/token"
	"github.com/otterhq/intent-sdk-go/types"
)

// Service coin 选择服务接口
//
// 为一笔支付在捆绑中筹措精确金额：读取持仓快照，按计划向
// 捆绑追加拆分/合并命令。只做预演（staging），从不直接触碰结算层。
type Service interface {
	// SelectPayment 在捆绑中筹措 required 数量的代币，返回支付 coin 的参数引用
	SelectPayment(ctx context.Context, b *bundle.Bundle, owner string, info token.Info, required uint64) (bundle.Argument, error)

	// Balances 查询地址在全部白名单代币上的总余额（最小单位）
	Balances(ctx context.Context, owner string) (map[string]uint64, error)
}

// service coin 选择服务实现
type service struct {
	client client.Client
	logger client.Logger
}

// NewService 创建 coin 选择服务
func NewService(c client.Client, logger client.Logger) Service {
	return &service{client: c, logger: logger}
}

// SelectPayment 筹措支付
//
// **算法**：
//  1. 原生 gas 代币：直接从 gas 币拆分，完全跳过持仓查询
//  2. 任一单个 coin 余额足够：拆分该 coin（快路径，只触碰一个对象）
//  3. 总余额不足：返回 InsufficientBalanceError{required, available}
//  4. 否则：把其余 coin 全部并入余额最大的 coin，再从中拆出所需金额
//     （余额相同时取查询顺序中先遇到的；合并顺序只影响 gas，不影响正确性）
func (s *service) SelectPayment(ctx context.Context, b *bundle.Bundle, owner string, info token.Info, required uint64) (bundle.Argument, error) {
	if required == 0 {
		return bundle.Argument{}, fmt.Errorf("%w: required amount is zero", types.ErrMalformedAmount)
	}

	// 1. 原生 gas 代币走快捷通道
	if info.Native {
		parts := b.SplitCoins(b.Gas(), []bundle.Argument{b.PureU64(required)})
		return parts[0], nil
	}

	coins, err := client.GetCoins(ctx, s.client, owner, info.TypeTag)
	if err != nil {
		return bundle.Argument{}, fmt.Errorf("query coins for %s failed: %w", info.Symbol, err)
	}

	// 2. 快路径：单个 coin 足够
	for _, c := range coins {
		if c.Balance >= required {
			parts := b.SplitCoins(b.Object(c.ObjectID), []bundle.Argument{b.PureU64(required)})
			return parts[0], nil
		}
	}

	// 3. 总余额检查
	var total uint64
	largest := -1
	for i, c := range coins {
		total += c.Balance
		if largest < 0 || c.Balance > coins[largest].Balance {
			largest = i
		}
	}
	if total < required {
		return bundle.Argument{}, &types.InsufficientBalanceError{
			TokenType: info.TypeTag,
			Required:  required,
			Available: total,
		}
	}

	// 4. 合并后拆分
	if s.logger != nil {
		s.logger.Info("merging coins to source payment",
			"token", info.Symbol, "coins", len(coins), "required", required, "available", total)
	}
	target := b.Object(coins[largest].ObjectID)
	sources := make([]bundle.Argument, 0, len(coins)-1)
	for i, c := range coins {
		if i == largest {
			continue
		}
		sources = append(sources, b.Object(c.ObjectID))
	}
	b.MergeCoins(target, sources)
	parts := b.SplitCoins(target, []bundle.Argument{b.PureU64(required)})
	return parts[0], nil
}
