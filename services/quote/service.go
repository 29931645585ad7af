package quote

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/otterhq/intent-sdk-go/client"
	"github.com/otterhq/intent-sdk-go/services"
	"github.com/otterhq/intent-sdk-go/types"
)

// Direction 输入代币占据池中哪一侧
//
// 池存储的两个代币槽位顺序与用户的输入/输出顺序无关，方向搞反
// 会算出完全错误的成交结果，所以方向必须随报价一起返回。
type Direction string

const (
	// DirectionXToY 输入是池的 X 侧
	DirectionXToY Direction = "x_to_y"
	// DirectionYToX 输入是池的 Y 侧
	DirectionYToX Direction = "y_to_x"
)

// Result 单次报价结果
//
// EstimatedOutput 只是一次读取时刻的估计值，不保证新鲜度；
// 调用方必须用滑点下界约束风险，而不是把它当作承诺。
type Result struct {
	// PoolID 池共享对象 ID
	PoolID string
	// EstimatedOutput 估计输出（最小单位）
	EstimatedOutput uint64
	// Direction 输入方向
	Direction Direction
	// XType / YType 池两侧代币的类型标签
	XType string
	YType string
}

// Service 报价服务接口
type Service interface {
	// Quote 对 (inputType → outputType, amountIn) 询价
	Quote(ctx context.Context, inputType, outputType string, amountIn uint64) (*Result, error)
}

// service 报价服务实现
type service struct {
	client client.Client
	pools  []services.PoolEntry
}

// NewService 创建报价服务
func NewService(c client.Client, pools []services.PoolEntry) Service {
	return &service{client: c, pools: pools}
}

// feeScale 手续费基点刻度
const feeScale = 10000

// Quote 询价
//
// **算法**：
//  1. 在池表中找服务该交易对的池（两个方向都找），找不到返回 ErrPoolNotFound
//  2. 读池对象快照，取两侧储备与手续费
//  3. 恒定乘积扣费估算：out = reserveOut * inAfterFee / (reserveIn + inAfterFee)
//     全程 big.Int，金额不经过浮点
func (s *service) Quote(ctx context.Context, inputType, outputType string, amountIn uint64) (*Result, error) {
	entry, direction, err := s.findPool(inputType, outputType)
	if err != nil {
		return nil, err
	}

	snapshot, err := client.GetObject(ctx, s.client, entry.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("read pool %s failed: %w", entry.ObjectID, err)
	}

	reserveX, err := fieldU64(snapshot.Fields, "reserve_x")
	if err != nil {
		return nil, err
	}
	reserveY, err := fieldU64(snapshot.Fields, "reserve_y")
	if err != nil {
		return nil, err
	}
	feeBps, err := fieldU64(snapshot.Fields, "lp_fee_percent")
	if err != nil {
		return nil, err
	}
	if feeBps >= feeScale {
		return nil, client.NewInvalidResponseError(fmt.Sprintf("pool fee %d bps is out of range", feeBps))
	}

	reserveIn, reserveOut := reserveX, reserveY
	if direction == DirectionYToX {
		reserveIn, reserveOut = reserveY, reserveX
	}
	if reserveIn == 0 || reserveOut == 0 {
		return nil, fmt.Errorf("%w: pool %s has empty reserves", types.ErrPoolNotFound, entry.ObjectID)
	}

	estimated := constantProductOut(amountIn, reserveIn, reserveOut, feeBps)

	return &Result{
		PoolID:          entry.ObjectID,
		EstimatedOutput: estimated,
		Direction:       direction,
		XType:           entry.TokenX,
		YType:           entry.TokenY,
	}, nil
}

// findPool 在池表中按类型标签匹配交易对（两个方向）
func (s *service) findPool(inputType, outputType string) (services.PoolEntry, Direction, error) {
	for _, entry := range s.pools {
		if entry.TokenX == inputType && entry.TokenY == outputType {
			return entry, DirectionXToY, nil
		}
		if entry.TokenY == inputType && entry.TokenX == outputType {
			return entry, DirectionYToX, nil
		}
	}
	return services.PoolEntry{}, "", fmt.Errorf("%w: %s -> %s", types.ErrPoolNotFound, inputType, outputType)
}

// constantProductOut 扣费后的恒定乘积输出估算
func constantProductOut(amountIn, reserveIn, reserveOut, feeBps uint64) uint64 {
	in := new(big.Int).SetUint64(amountIn)
	in.Mul(in, big.NewInt(int64(feeScale-feeBps)))
	in.Div(in, big.NewInt(feeScale))

	rIn := new(big.Int).SetUint64(reserveIn)
	rOut := new(big.Int).SetUint64(reserveOut)

	numerator := new(big.Int).Mul(rOut, in)
	denominator := new(big.Int).Add(rIn, in)
	out := numerator.Div(numerator, denominator)
	return out.Uint64()
}

// fieldU64 从对象字段中取出 u64 值（节点可能给字符串或数字）
func fieldU64(fields map[string]interface{}, name string) (uint64, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, client.NewInvalidResponseError(fmt.Sprintf("pool object missing field %q", name))
	}
	switch v := raw.(type) {
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, client.NewInvalidResponseError(fmt.Sprintf("pool field %q = %q is not a u64", name, v))
		}
		return parsed, nil
	case float64:
		return uint64(v), nil
	default:
		return 0, client.NewInvalidResponseError(fmt.Sprintf("pool field %q has unexpected type %T", name, raw))
	}
}
