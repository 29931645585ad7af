package coinselect

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/otterhq/intent-sdk-go/bundle"
	"github.com/otterhq/intent-sdk-go/client"
	"github.com/otterhq/intent-sdk-go/logging"
	"github.com/otterhq/intent-sdk-go/token"
	"github.com/otterhq/intent-sdk-go/types"
)

var testOwner = "0x" + strings.Repeat("cd", 32)

// fakeClient 按代币类型返回预置 coin 页的假客户端
type fakeClient struct {
	coins map[string][]map[string]interface{}
	calls int
	err   error
}

func (f *fakeClient) Call(ctx context.Context, method string, params interface{}) (interface{}, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if method != "suix_getCoins" {
		return nil, fmt.Errorf("unexpected method %s", method)
	}
	coinType := params.([]interface{})[1].(string)
	return map[string]interface{}{
		"data":        f.coins[coinType],
		"hasNextPage": false,
	}, nil
}

func (f *fakeClient) ExecuteTransactionBlock(ctx context.Context, draftJSON []byte, signatures []string) (*client.ExecuteResult, error) {
	return nil, fmt.Errorf("not supported in fake")
}

func (f *fakeClient) Subscribe(ctx context.Context, filter *client.EventFilter) (<-chan *client.Event, error) {
	return nil, fmt.Errorf("not supported in fake")
}

func (f *fakeClient) Close() error { return nil }

func coinItem(id string, balance uint64, coinType string) map[string]interface{} {
	return map[string]interface{}{
		"coinType":     coinType,
		"coinObjectId": id,
		"version":      "1",
		"digest":       "d",
		"balance":      fmt.Sprintf("%d", balance),
	}
}

func usdcCoins(balances ...uint64) *fakeClient {
	usdc, _ := token.Resolve("USDC")
	items := make([]map[string]interface{}, len(balances))
	for i, bal := range balances {
		items[i] = coinItem(fmt.Sprintf("0xc%d", i), bal, usdc.TypeTag)
	}
	return &fakeClient{coins: map[string][]map[string]interface{}{usdc.TypeTag: items}}
}

func TestSelectPaymentFastPath(t *testing.T) {
	usdc, _ := token.Resolve("USDC")
	fake := usdcCoins(3, 5, 12)
	s := NewService(fake, logging.NewNop())

	b := bundle.New(testOwner)
	arg, err := s.SelectPayment(context.Background(), b, testOwner, usdc, 10)
	if err != nil {
		t.Fatalf("SelectPayment failed: %v", err)
	}
	if arg.Kind != bundle.KindNestedResult {
		t.Errorf("payment arg = %+v, want nested result", arg)
	}

	cmds := b.Commands()
	if len(cmds) != 1 || cmds[0].Type != "SplitCoins" {
		t.Fatalf("expected single SplitCoins, got %+v", cmds)
	}
	// 快路径必须拆余额为 12 的那个 coin，绝不合并
	in := b.Inputs()[cmds[0].Coin.Index]
	if in.ObjectID != "0xc2" {
		t.Errorf("split source = %s, want 0xc2", in.ObjectID)
	}
}

func TestSelectPaymentMergePath(t *testing.T) {
	usdc, _ := token.Resolve("USDC")
	fake := usdcCoins(3, 5, 4)
	s := NewService(fake, logging.NewNop())

	b := bundle.New(testOwner)
	if _, err := s.SelectPayment(context.Background(), b, testOwner, usdc, 10); err != nil {
		t.Fatalf("SelectPayment failed: %v", err)
	}

	cmds := b.Commands()
	if len(cmds) != 2 || cmds[0].Type != "MergeCoins" || cmds[1].Type != "SplitCoins" {
		t.Fatalf("expected MergeCoins then SplitCoins, got %+v", cmds)
	}
	// 合并目标是余额最大的 coin（0xc1，余额 5）
	target := b.Inputs()[cmds[0].Coin.Index]
	if target.ObjectID != "0xc1" {
		t.Errorf("merge target = %s, want 0xc1", target.ObjectID)
	}
	if len(cmds[0].Sources) != 2 {
		t.Errorf("expected 2 merge sources, got %d", len(cmds[0].Sources))
	}
}

func TestSelectPaymentInsufficient(t *testing.T) {
	usdc, _ := token.Resolve("USDC")
	fake := usdcCoins(3, 5)
	s := NewService(fake, logging.NewNop())

	b := bundle.New(testOwner)
	_, err := s.SelectPayment(context.Background(), b, testOwner, usdc, 10)
	insufficient, ok := types.IsInsufficientBalance(err)
	if !ok {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if insufficient.Required != 10 || insufficient.Available != 8 {
		t.Errorf("required/available = %d/%d, want 10/8", insufficient.Required, insufficient.Available)
	}
	if !b.IsEmpty() {
		t.Error("failed selection must not stage commands")
	}
}

func TestSelectPaymentNativeBypass(t *testing.T) {
	fake := &fakeClient{}
	s := NewService(fake, logging.NewNop())

	b := bundle.New(testOwner)
	arg, err := s.SelectPayment(context.Background(), b, testOwner, token.Native(), 500)
	if err != nil {
		t.Fatalf("SelectPayment failed: %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("native token must bypass coin queries, got %d calls", fake.calls)
	}
	cmds := b.Commands()
	if len(cmds) != 1 || cmds[0].Type != "SplitCoins" || cmds[0].Coin.Kind != bundle.KindGas {
		t.Fatalf("expected split from gas, got %+v", cmds)
	}
	if arg.Kind != bundle.KindNestedResult {
		t.Errorf("payment arg = %+v", arg)
	}
}

func TestSelectPaymentQueryError(t *testing.T) {
	usdc, _ := token.Resolve("USDC")
	fake := &fakeClient{err: fmt.Errorf("node unavailable")}
	s := NewService(fake, logging.NewNop())

	b := bundle.New(testOwner)
	if _, err := s.SelectPayment(context.Background(), b, testOwner, usdc, 10); err == nil {
		t.Error("query failure must propagate")
	}
}

func TestBalances(t *testing.T) {
	sui, _ := token.Resolve("SUI")
	usdc, _ := token.Resolve("USDC")
	fake := &fakeClient{coins: map[string][]map[string]interface{}{
		sui.TypeTag: {
			coinItem("0xa1", 1_000_000_000, sui.TypeTag),
			coinItem("0xa2", 500_000_000, sui.TypeTag),
		},
		usdc.TypeTag: {
			coinItem("0xb1", 42, usdc.TypeTag),
		},
	}}
	s := NewService(fake, logging.NewNop())

	balances, err := s.Balances(context.Background(), testOwner)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if balances["SUI"] != 1_500_000_000 {
		t.Errorf("SUI balance = %d, want 1500000000", balances["SUI"])
	}
	if balances["USDC"] != 42 {
		t.Errorf("USDC balance = %d, want 42", balances["USDC"])
	}
	if balances["USDT"] != 0 {
		t.Errorf("USDT balance = %d, want 0", balances["USDT"])
	}
}
