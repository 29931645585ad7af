package compiler

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/otterhq/intent-sdk-go/bundle"
	"github.com/otterhq/intent-sdk-go/client"
	"github.com/otterhq/intent-sdk-go/services"
	"github.com/otterhq/intent-sdk-go/services/authorization"
	"github.com/otterhq/intent-sdk-go/services/coinselect"
	"github.com/otterhq/intent-sdk-go/services/quote"
	"github.com/otterhq/intent-sdk-go/services/validator"
	"github.com/otterhq/intent-sdk-go/token"
	"github.com/otterhq/intent-sdk-go/types"
	"github.com/otterhq/intent-sdk-go/utils"
)

// venueModule 交易场所合约的模块名
const venueModule = "spot_dex"

// slippageScale 滑点基点刻度
const slippageScale = 10000

// AuthContext 委托执行上下文
//
// 存在时编译器会尝试对符合条件的转账走委托路径；
// 不符合条件的情况降级为直接模式，不使整批失败。
type AuthContext struct {
	// AuthorizationID 授权对象 ID
	AuthorizationID string
}

// Service 交易编译服务接口
//
// 核心编排器：把校验过的有序意图列表编译为单个原子操作捆绑。
// 整个编译是同步流水线：校验 → 选币 →（可选）询价 → 产出命令；
// 每次调用构建自己的捆绑，编译之间不共享可变状态。
type Service interface {
	// Compile 把意图批次编译为操作捆绑
	Compile(ctx context.Context, intents []*types.Intent, sender string, auth *AuthContext) (*bundle.Bundle, error)
}

// service 编译服务实现
type service struct {
	cfg       *services.Config
	validator validator.Service
	selector  coinselect.Service
	quoter    quote.Service
	auth      authorization.Service
	logger    client.Logger
	// now 可注入的时钟，委托资格预判使用
	now func() time.Time
}

// NewService 创建编译服务（内部装配全部子服务）
func NewService(c client.Client, cfg *services.Config, logger client.Logger) Service {
	limits := cfg.LimitsOrDefault()
	return &service{
		cfg:       cfg,
		validator: validator.NewService(limits),
		selector:  coinselect.NewService(c, logger),
		quoter:    quote.NewService(c, cfg.Pools),
		auth:      authorization.NewService(c, cfg.AuthPackageID, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// Compile 编译意图批次
//
// **流程**：
//  1. 发送者地址必须存在且合法
//  2. 整批校验（本地，零 I/O）
//  3. 含 Swap 的混合批次直接拒绝；意图按列表顺序逐个编译
//  4. 没有任何命令被产出时，退化为 gas 自转（保证可审计的链上回执）
//
// 任何错误都使整批失败：宁可什么都不编译，也不编译出部分错误的捆绑。
func (s *service) Compile(ctx context.Context, intents []*types.Intent, sender string, auth *AuthContext) (*bundle.Bundle, error) {
	if strings.TrimSpace(sender) == "" {
		return nil, types.ErrSenderRequired
	}
	normalized, err := utils.NormalizeAddress(sender)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSenderRequired, err)
	}
	sender = normalized

	if err := s.validator.ValidateBatch(intents); err != nil {
		return nil, err
	}

	// 一个捆绑只允许一种策略：Swap 不与其他动作混批
	swaps := 0
	for _, intent := range intents {
		if intent.Action == types.ActionSwap {
			swaps++
		}
	}
	if swaps > 0 && len(intents) > 1 {
		return nil, types.ErrMixedBatchUnsupported
	}

	b := bundle.New(sender)

	for i, intent := range intents {
		if s.logger != nil {
			s.logger.Debug("compiling intent", "index", i, "action", string(intent.Action))
		}
		switch intent.Action {
		case types.ActionSwap:
			err = s.compileSwap(ctx, b, sender, intent.Swap)
		case types.ActionTransfer:
			err = s.compileTransfer(ctx, b, sender, intent.Transfer, auth, len(intents))
		case types.ActionSplit:
			err = s.compileSplit(ctx, b, sender, intent.Split)
		default:
			err = fmt.Errorf("%w: %q", types.ErrUnknownAction, string(intent.Action))
		}
		if err != nil {
			return nil, fmt.Errorf("intent %d (%s): %w", i, intent.Action, err)
		}
	}

	// 空捆绑兜底：自转 gas，保证真实、安全、可审计的回执
	if b.IsEmpty() {
		b.TransferObjects([]bundle.Argument{b.Gas()}, b.PureAddress(sender))
	}

	return b, nil
}

// compileTransfer 编译转账
//
// 委托路径仅在以下条件同时成立时进入：上下文携带授权对象、批次只有
// 这一个意图、代币与授权作用域一致、本地策略预判通过。任何一条不
// 满足都降级为直接模式并记录原因。
func (s *service) compileTransfer(ctx context.Context, b *bundle.Bundle, sender string, p *types.TransferParams, auth *AuthContext, batchSize int) error {
	info, err := token.Resolve(p.Token)
	if err != nil {
		return err
	}
	amount, err := token.ParseAmount(p.Amount, info)
	if err != nil {
		return err
	}

	if auth != nil && auth.AuthorizationID != "" && batchSize == 1 {
		delegated, err := s.tryDelegatedTransfer(ctx, b, auth.AuthorizationID, info, p.Recipient, amount)
		if err != nil {
			return err
		}
		if delegated {
			return nil
		}
	}

	payment, err := s.selector.SelectPayment(ctx, b, sender, info, amount)
	if err != nil {
		return err
	}
	b.TransferObjects([]bundle.Argument{payment}, b.PureAddress(p.Recipient))
	return nil
}

// tryDelegatedTransfer 尝试委托转账，返回是否已走委托路径
//
// 资格不满足时返回 (false, nil) 让调用方降级直接模式；
// 只有授权状态读取失败才返回错误。
func (s *service) tryDelegatedTransfer(ctx context.Context, b *bundle.Bundle, authID string, info token.Info, recipient string, amount uint64) (bool, error) {
	state, err := s.auth.GetState(ctx, authID)
	if err != nil {
		return false, fmt.Errorf("fetch authorization %s failed: %w", authID, err)
	}

	if state.TokenType != info.TypeTag {
		if s.logger != nil {
			s.logger.Info("authorization scoped to different token, falling back to direct mode",
				"authorized", state.TokenType, "requested", info.TypeTag)
		}
		return false, nil
	}
	if err := authorization.CheckDelegate(state, amount, s.now()); err != nil {
		if s.logger != nil {
			s.logger.Info("delegation ineligible, falling back to direct mode", "reason", err.Error())
		}
		return false, nil
	}

	// 委托支付从 gas 拆出（授权作用域代币为原生币时成立；
	// 非原生币授权由合约侧从托管余额扣付，这里仍传拆分支付作为费用来源）
	payment := b.SplitCoins(b.Gas(), []bundle.Argument{b.PureU64(amount)})[0]
	s.auth.BuildExecute(b, authID, state.TokenType, recipient, amount, payment)
	return true, nil
}

// compileSplit 编译拆分
//
// 每个拆分串（去掉百分号后）经金额编解码按绝对金额解析，
// 其总和即需筹措的总量；各份拆出后发给对应接收人，
// 未提供接收人时全部回到发送者。
func (s *service) compileSplit(ctx context.Context, b *bundle.Bundle, sender string, p *types.SplitParams) error {
	info, err := token.Resolve(p.Token)
	if err != nil {
		return err
	}

	shares := make([]uint64, len(p.Splits))
	var total uint64
	for i, raw := range p.Splits {
		v := strings.TrimSuffix(strings.TrimSpace(raw), "%")
		share, err := token.ParseAmount(v, info)
		if err != nil {
			return fmt.Errorf("split %q: %w", raw, err)
		}
		shares[i] = share
		total += share
	}
	if total == 0 {
		return fmt.Errorf("%w: split total is zero", types.ErrMalformedAmount)
	}

	payment, err := s.selector.SelectPayment(ctx, b, sender, info, total)
	if err != nil {
		return err
	}

	amounts := make([]bundle.Argument, len(shares))
	for i, share := range shares {
		amounts[i] = b.PureU64(share)
	}
	parts := b.SplitCoins(payment, amounts)

	for i, part := range parts {
		recipient := sender
		if len(p.Recipients) == len(parts) {
			recipient = p.Recipients[i]
		}
		b.TransferObjects([]bundle.Argument{part}, b.PureAddress(recipient))
	}
	return nil
}

// compileSwap 编译兑换
//
// minOut = estimatedOutput × (10000 − slippageBps) / 10000，全程整数。
// 估价只是建议值，链上以 minOut 为硬下界。
func (s *service) compileSwap(ctx context.Context, b *bundle.Bundle, sender string, p *types.SwapParams) error {
	inInfo, err := token.Resolve(p.InputToken)
	if err != nil {
		return err
	}
	outInfo, err := token.Resolve(p.OutputToken)
	if err != nil {
		return err
	}
	amountIn, err := token.ParseAmount(p.Amount, inInfo)
	if err != nil {
		return err
	}
	slipBps, err := token.ParseSlippageBps(p.Slippage)
	if err != nil {
		return err
	}

	result, err := s.quoter.Quote(ctx, inInfo.TypeTag, outInfo.TypeTag, amountIn)
	if err != nil {
		return err
	}

	minOut := new(big.Int).SetUint64(result.EstimatedOutput)
	minOut.Mul(minOut, big.NewInt(int64(slippageScale-slipBps)))
	minOut.Div(minOut, big.NewInt(slippageScale))

	payment, err := s.selector.SelectPayment(ctx, b, sender, inInfo, amountIn)
	if err != nil {
		return err
	}

	// 方向决定调用池的哪个入口；类型参数始终按池的 X/Y 槽位顺序
	function := "swap_token_x"
	if result.Direction == quote.DirectionYToX {
		function = "swap_token_y"
	}
	target := fmt.Sprintf("%s::%s::%s", s.cfg.VenuePackageID, venueModule, function)

	out := b.MoveCall(target, []string{result.XType, result.YType}, []bundle.Argument{
		b.SharedObject(result.PoolID, true),
		payment,
		b.PureU64(minOut.Uint64()),
	})
	b.TransferObjects([]bundle.Argument{out}, b.PureAddress(sender))

	if s.logger != nil {
		s.logger.Info("swap compiled",
			"pool", result.PoolID, "direction", string(result.Direction),
			"amountIn", amountIn, "estimatedOut", result.EstimatedOutput, "minOut", minOut.Uint64())
	}
	return nil
}
