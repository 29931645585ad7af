package utils

import (
	"context"
	"fmt"
	"sync"
)

// ParallelExecute 并行执行多个操作
//
// 对一组输入并发执行操作函数，限制并发数量；结果按输入顺序返回，
// 任何一项失败则整体失败。
//
// 示例：
//
//	symbols := []string{"SUI", "USDT", "USDC"}
//	balances, err := ParallelExecute(ctx, symbols, func(ctx context.Context, s string) (uint64, error) {
//	    return queryBalance(ctx, s)
//	}, 3)
func ParallelExecute[T any, R any](
	ctx context.Context,
	items []T,
	executeFn func(ctx context.Context, item T) (R, error),
	concurrency int,
) ([]R, error) {
	if concurrency <= 0 {
		concurrency = 5
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, item := range items {
		wg.Add(1)
		go func(index int, it T) {
			defer wg.Done()

			// 获取信号量
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := executeFn(ctx, it)
			if err != nil {
				errs[index] = err
			} else {
				results[index] = result
			}
		}(i, item)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("parallel execute failed: %w", err)
		}
	}

	return results, nil
}
