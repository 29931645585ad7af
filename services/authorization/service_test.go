package authorization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/otterhq/intent-sdk-go/bundle"
	"github.com/otterhq/intent-sdk-go/client"
	"github.com/otterhq/intent-sdk-go/logging"
	"github.com/otterhq/intent-sdk-go/token"
	"github.com/otterhq/intent-sdk-go/types"
)

const (
	testPackage = "0xpkg"
	testAuthID  = "0xauth1"
)

var testAgent = "0x" + strings.Repeat("ef", 32)

// fakeClient 返回预置对象与交易详情的假客户端
type fakeClient struct {
	authFields map[string]interface{}
	// txCreated 按调用次序返回的 objectChanges（模拟索引延迟）
	txCreated [][]map[string]interface{}
	txCalls   int
}

func (f *fakeClient) Call(ctx context.Context, method string, params interface{}) (interface{}, error) {
	switch method {
	case "sui_getObject":
		if f.authFields == nil {
			return map[string]interface{}{"error": map[string]interface{}{"code": "notExists"}}, nil
		}
		return map[string]interface{}{
			"data": map[string]interface{}{
				"objectId": testAuthID,
				"version":  "3",
				"content":  map[string]interface{}{"fields": f.authFields},
			},
		}, nil
	case "sui_getTransactionBlock":
		var created []map[string]interface{}
		if f.txCalls < len(f.txCreated) {
			created = f.txCreated[f.txCalls]
		} else if len(f.txCreated) > 0 {
			created = f.txCreated[len(f.txCreated)-1]
		}
		f.txCalls++
		changes := make([]interface{}, 0, len(created))
		for _, c := range created {
			changes = append(changes, c)
		}
		return map[string]interface{}{
			"digest":        "0xd1",
			"effects":       map[string]interface{}{"status": map[string]interface{}{"status": "success"}},
			"objectChanges": changes,
		}, nil
	}
	return nil, fmt.Errorf("unexpected method %s", method)
}

func (f *fakeClient) ExecuteTransactionBlock(ctx context.Context, draftJSON []byte, signatures []string) (*client.ExecuteResult, error) {
	return nil, fmt.Errorf("not supported in fake")
}

func (f *fakeClient) Subscribe(ctx context.Context, filter *client.EventFilter) (<-chan *client.Event, error) {
	return nil, fmt.Errorf("not supported in fake")
}

func (f *fakeClient) Close() error { return nil }

func TestGetState(t *testing.T) {
	fake := &fakeClient{authFields: map[string]interface{}{
		"owner":        testAgent,
		"agent":        testAgent,
		"token_type":   token.SuiTypeTag,
		"daily_limit":  "100000000000",
		"per_tx_limit": "10000000000",
		"used_today":   "500",
		"last_reset":   "1700000000000",
		"expiry":       "1800000000000",
		"enabled":      true,
	}}
	s := NewService(fake, testPackage, logging.NewNop())

	state, err := s.GetState(context.Background(), testAuthID)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.DailyLimit != 100_000_000_000 || state.PerTxLimit != 10_000_000_000 {
		t.Errorf("limits = %d/%d", state.DailyLimit, state.PerTxLimit)
	}
	if state.UsedToday != 500 || !state.Enabled {
		t.Errorf("used/enabled = %d/%v", state.UsedToday, state.Enabled)
	}
	if state.TokenType != token.SuiTypeTag {
		t.Errorf("token type = %s", state.TokenType)
	}
}

func TestGetStateNotFound(t *testing.T) {
	s := NewService(&fakeClient{}, testPackage, logging.NewNop())
	if _, err := s.GetState(context.Background(), testAuthID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestBuildExecute(t *testing.T) {
	s := NewService(&fakeClient{}, testPackage, logging.NewNop())
	b := bundle.New(testAgent)

	payment := b.SplitCoins(b.Gas(), []bundle.Argument{b.PureU64(1000)})[0]
	s.BuildExecute(b, testAuthID, token.SuiTypeTag, testAgent, 1000, payment)

	cmds := b.Commands()
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
	call := cmds[1]
	if call.Type != "MoveCall" {
		t.Fatalf("command type = %s", call.Type)
	}
	if call.Target != testPackage+"::delegated_auth::execute_with_authorization" {
		t.Errorf("target = %s", call.Target)
	}
	if len(call.TypeArguments) != 1 || call.TypeArguments[0] != token.SuiTypeTag {
		t.Errorf("type arguments = %v", call.TypeArguments)
	}
	// 参数顺序：授权对象、接收地址、金额、支付 coin、时钟
	if len(call.Arguments) != 5 {
		t.Fatalf("expected 5 arguments, got %d", len(call.Arguments))
	}
	clock := b.Inputs()[call.Arguments[4].Index]
	if clock.ObjectID != bundle.ClockObjectID {
		t.Errorf("last argument should be the clock, got %+v", clock)
	}
}

func TestBuildCreate(t *testing.T) {
	s := NewService(&fakeClient{}, testPackage, logging.NewNop())
	b := bundle.New(testAgent)

	sui, _ := token.Resolve("SUI")
	params, err := FormatSetupParams(sui, "100", "10", 30)
	if err != nil {
		t.Fatalf("FormatSetupParams failed: %v", err)
	}
	s.BuildCreate(b, testAgent, token.SuiTypeTag, params)

	cmds := b.Commands()
	if len(cmds) != 1 || cmds[0].Target != testPackage+"::delegated_auth::create_authorization" {
		t.Fatalf("unexpected commands: %+v", cmds)
	}
}

func TestBuildManagementCalls(t *testing.T) {
	s := NewService(&fakeClient{}, testPackage, logging.NewNop())

	tests := []struct {
		name   string
		build  func(b *bundle.Bundle)
		target string
		args   int
	}{
		{
			name:   "revoke",
			build:  func(b *bundle.Bundle) { s.BuildRevoke(b, testAuthID, token.SuiTypeTag) },
			target: testPackage + "::delegated_auth::revoke_authorization",
			args:   1,
		},
		{
			name:   "disable",
			build:  func(b *bundle.Bundle) { s.BuildDisable(b, testAuthID, token.SuiTypeTag) },
			target: testPackage + "::delegated_auth::disable_authorization",
			args:   1,
		},
		{
			name:   "enable",
			build:  func(b *bundle.Bundle) { s.BuildEnable(b, testAuthID, token.SuiTypeTag) },
			target: testPackage + "::delegated_auth::enable_authorization",
			args:   1,
		},
		{
			name:   "can execute",
			build:  func(b *bundle.Bundle) { s.BuildCanExecute(b, testAuthID, token.SuiTypeTag, 1000) },
			target: testPackage + "::delegated_auth::can_execute",
			args:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bundle.New(testAgent)
			tt.build(b)

			cmds := b.Commands()
			if len(cmds) != 1 {
				t.Fatalf("expected 1 command, got %d", len(cmds))
			}
			call := cmds[0]
			if call.Type != "MoveCall" || call.Target != tt.target {
				t.Errorf("call = %s %s, want MoveCall %s", call.Type, call.Target, tt.target)
			}
			if len(call.TypeArguments) != 1 || call.TypeArguments[0] != token.SuiTypeTag {
				t.Errorf("type arguments = %v", call.TypeArguments)
			}
			if len(call.Arguments) != tt.args {
				t.Errorf("arguments = %d, want %d", len(call.Arguments), tt.args)
			}
			auth := b.Inputs()[call.Arguments[0].Index]
			if auth.ObjectID != testAuthID {
				t.Errorf("first argument should be the authorization object, got %+v", auth)
			}
		})
	}
}

func TestExtractAuthorizationID(t *testing.T) {
	authType := testPackage + "::delegated_auth::Authorization<" + token.SuiTypeTag + ">"
	fake := &fakeClient{txCreated: [][]map[string]interface{}{
		nil, // 第一次轮询还没索引到
		{{"type": "created", "objectId": testAuthID, "objectType": authType}},
	}}
	s := NewServiceWithRetry(fake, testPackage, RetryPolicy{MaxAttempts: 3, Delay: 0}, logging.NewNop())

	id, err := s.ExtractAuthorizationID(context.Background(), "0xd1")
	if err != nil {
		t.Fatalf("ExtractAuthorizationID failed: %v", err)
	}
	if id != testAuthID {
		t.Errorf("id = %s, want %s", id, testAuthID)
	}
	if fake.txCalls != 2 {
		t.Errorf("expected 2 polls, got %d", fake.txCalls)
	}
}

func TestExtractAuthorizationIDExhausted(t *testing.T) {
	fake := &fakeClient{} // 永远没有创建记录
	s := NewServiceWithRetry(fake, testPackage, RetryPolicy{MaxAttempts: 2, Delay: 0}, logging.NewNop())

	_, err := s.ExtractAuthorizationID(context.Background(), "0xd1")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if fake.txCalls != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", fake.txCalls)
	}
}
