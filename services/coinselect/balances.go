package coinselect

import (
	"context"

	"github.com/otterhq/intent-sdk-go/client"
	"github.com/otterhq/intent-sdk-go/token"
	"github.com/otterhq/intent-sdk-go/utils"
)

// Balances 并发查询地址在全部白名单代币上的总余额
//
// 每个代币一次独立的持仓查询，结果按符号汇总（最小单位）。
func (s *service) Balances(ctx context.Context, owner string) (map[string]uint64, error) {
	symbols := token.Symbols()

	totals, err := utils.ParallelExecute(ctx, symbols, func(ctx context.Context, symbol string) (uint64, error) {
		info, err := token.Resolve(symbol)
		if err != nil {
			return 0, err
		}
		coins, err := client.GetCoins(ctx, s.client, owner, info.TypeTag)
		if err != nil {
			return 0, err
		}
		var total uint64
		for _, c := range coins {
			total += c.Balance
		}
		return total, nil
	}, len(symbols))
	if err != nil {
		return nil, err
	}

	result := make(map[string]uint64, len(symbols))
	for i, symbol := range symbols {
		result[symbol] = totals[i]
	}
	return result, nil
}
