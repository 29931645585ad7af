package authorization

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/otterhq/intent-sdk-go/bundle"
	"github.com/otterhq/intent-sdk-go/client"
	"github.com/otterhq/intent-sdk-go/types"
)

// authModule 授权合约的模块名
const authModule = "delegated_auth"

// Service 授权合约表面：状态读取与调用构建
//
// 所有 Build* 方法只向捆绑追加命令，不做任何 I/O；
// GetState 与 ExtractAuthorizationID 是仅有的两个读路径。
type Service interface {
	// GetState 读取授权对象的链上快照
	GetState(ctx context.Context, authObjectID string) (*types.AuthorizationState, error)

	// BuildCreate 追加 create_authorization 调用
	BuildCreate(b *bundle.Bundle, agent, tokenType string, params *SetupParams)

	// BuildExecute 追加 execute_with_authorization 调用
	BuildExecute(b *bundle.Bundle, authObjectID, tokenType, recipient string, amount uint64, payment bundle.Argument)

	// BuildRevoke / BuildDisable / BuildEnable 追加对应的管理调用
	BuildRevoke(b *bundle.Bundle, authObjectID, tokenType string)
	BuildDisable(b *bundle.Bundle, authObjectID, tokenType string)
	BuildEnable(b *bundle.Bundle, authObjectID, tokenType string)

	// BuildCanExecute 追加 can_execute 只读探针调用
	BuildCanExecute(b *bundle.Bundle, authObjectID, tokenType string, amount uint64)

	// ExtractAuthorizationID 从创建交易中提取新授权对象的 ID（带重试）
	ExtractAuthorizationID(ctx context.Context, digest string) (string, error)
}

// RetryPolicy 对象提取的重试策略
//
// 新对象可能尚未被节点索引，需要有界轮询。测试可注入零延迟变体。
type RetryPolicy struct {
	// MaxAttempts 最大尝试次数
	MaxAttempts int
	// Delay 两次尝试间的固定延迟
	Delay time.Duration
}

// DefaultRetryPolicy 返回默认重试策略（5 次，每次间隔 2 秒）
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, Delay: 2 * time.Second}
}

// service 授权服务实现
type service struct {
	client    client.Client
	packageID string
	retry     RetryPolicy
	logger    client.Logger
}

// NewService 创建授权服务
func NewService(c client.Client, packageID string, logger client.Logger) Service {
	return NewServiceWithRetry(c, packageID, DefaultRetryPolicy(), logger)
}

// NewServiceWithRetry 创建授权服务并指定对象提取重试策略
func NewServiceWithRetry(c client.Client, packageID string, retry RetryPolicy, logger client.Logger) Service {
	return &service{client: c, packageID: packageID, retry: retry, logger: logger}
}

// target 拼装完整调用目标
func (s *service) target(function string) string {
	return fmt.Sprintf("%s::%s::%s", s.packageID, authModule, function)
}

// GetState 读取授权对象快照
func (s *service) GetState(ctx context.Context, authObjectID string) (*types.AuthorizationState, error) {
	snapshot, err := client.GetObject(ctx, s.client, authObjectID)
	if err != nil {
		return nil, fmt.Errorf("read authorization object failed: %w", err)
	}
	return parseAuthorizationFields(authObjectID, snapshot.Fields)
}

// parseAuthorizationFields 把对象字段解析为授权快照
func parseAuthorizationFields(objectID string, fields map[string]interface{}) (*types.AuthorizationState, error) {
	state := &types.AuthorizationState{ObjectID: objectID}

	var err error
	if state.Owner, err = fieldString(fields, "owner"); err != nil {
		return nil, err
	}
	if state.Agent, err = fieldString(fields, "agent"); err != nil {
		return nil, err
	}
	if state.TokenType, err = fieldString(fields, "token_type"); err != nil {
		return nil, err
	}
	if state.DailyLimit, err = fieldU64(fields, "daily_limit"); err != nil {
		return nil, err
	}
	if state.PerTxLimit, err = fieldU64(fields, "per_tx_limit"); err != nil {
		return nil, err
	}
	if state.UsedToday, err = fieldU64(fields, "used_today"); err != nil {
		return nil, err
	}
	if state.LastReset, err = fieldU64(fields, "last_reset"); err != nil {
		return nil, err
	}
	if state.Expiry, err = fieldU64(fields, "expiry"); err != nil {
		return nil, err
	}

	enabled, ok := fields["enabled"].(bool)
	if !ok {
		return nil, client.NewInvalidResponseError("authorization field \"enabled\" is not a bool")
	}
	state.Enabled = enabled
	return state, nil
}

func fieldString(fields map[string]interface{}, name string) (string, error) {
	v, ok := fields[name].(string)
	if !ok {
		return "", client.NewInvalidResponseError(fmt.Sprintf("authorization field %q is not a string", name))
	}
	return v, nil
}

func fieldU64(fields map[string]interface{}, name string) (uint64, error) {
	switch v := fields[name].(type) {
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, client.NewInvalidResponseError(fmt.Sprintf("authorization field %q = %q is not a u64", name, v))
		}
		return parsed, nil
	case float64:
		return uint64(v), nil
	default:
		return 0, client.NewInvalidResponseError(fmt.Sprintf("authorization field %q has unexpected type %T", name, fields[name]))
	}
}

// BuildCreate 追加创建授权的调用
func (s *service) BuildCreate(b *bundle.Bundle, agent, tokenType string, params *SetupParams) {
	b.MoveCall(s.target("create_authorization"), []string{tokenType}, []bundle.Argument{
		b.PureAddress(agent),
		b.PureU64(params.DailyLimit),
		b.PureU64(params.PerTxLimit),
		b.PureU64(params.ValidityDays),
		b.Clock(),
	})
}

// BuildExecute 追加委托执行调用
//
// 合约需要共享时钟对象来对照链上时间评估过期与每日重置。
func (s *service) BuildExecute(b *bundle.Bundle, authObjectID, tokenType, recipient string, amount uint64, payment bundle.Argument) {
	b.MoveCall(s.target("execute_with_authorization"), []string{tokenType}, []bundle.Argument{
		b.Object(authObjectID),
		b.PureAddress(recipient),
		b.PureU64(amount),
		payment,
		b.Clock(),
	})
}

// BuildRevoke 追加撤销调用
func (s *service) BuildRevoke(b *bundle.Bundle, authObjectID, tokenType string) {
	b.MoveCall(s.target("revoke_authorization"), []string{tokenType}, []bundle.Argument{
		b.Object(authObjectID),
	})
}

// BuildDisable 追加停用调用
func (s *service) BuildDisable(b *bundle.Bundle, authObjectID, tokenType string) {
	b.MoveCall(s.target("disable_authorization"), []string{tokenType}, []bundle.Argument{
		b.Object(authObjectID),
	})
}

// BuildEnable 追加启用调用
func (s *service) BuildEnable(b *bundle.Bundle, authObjectID, tokenType string) {
	b.MoveCall(s.target("enable_authorization"), []string{tokenType}, []bundle.Argument{
		b.Object(authObjectID),
	})
}

// BuildCanExecute 追加链上资格探针调用
//
// 与本地 CheckDelegate 预判互补：探针以链上状态和链上时钟为准，
// 适合在提交前做 dev-inspect 演练。
func (s *service) BuildCanExecute(b *bundle.Bundle, authObjectID, tokenType string, amount uint64) {
	b.MoveCall(s.target("can_execute"), []string{tokenType}, []bundle.Argument{
		b.Object(authObjectID),
		b.PureU64(amount),
		b.Clock(),
	})
}

// ExtractAuthorizationID 从创建交易的效果中提取授权对象 ID
//
// 节点可能尚未索引到该交易，按重试策略有界轮询；
// 耗尽后返回 types.ErrNotFound。
func (s *service) ExtractAuthorizationID(ctx context.Context, digest string) (string, error) {
	attempts := s.retry.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		details, err := client.GetTransactionBlock(ctx, s.client, digest)
		if err == nil {
			for _, created := range details.Created {
				if strings.Contains(created.ObjectType, "::"+authModule+"::Authorization") {
					return created.ObjectID, nil
				}
			}
			lastErr = fmt.Errorf("transaction %s created no authorization object", digest)
		} else {
			lastErr = err
		}

		if attempt == attempts {
			break
		}
		if s.logger != nil {
			s.logger.Debug("authorization object not indexed yet, retrying",
				"digest", digest, "attempt", attempt)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.retry.Delay):
		}
	}
	return "", fmt.Errorf("%w: authorization object from %s: %v", types.ErrNotFound, digest, lastErr)
}
