package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otterhq/intent-sdk-go/client"
	"github.com/otterhq/intent-sdk-go/services"
	"github.com/otterhq/intent-sdk-go/services/coinselect"
	"github.com/otterhq/intent-sdk-go/services/compiler"
	"github.com/otterhq/intent-sdk-go/types"
)

// TestBalancesAgainstNode 对真实节点做白名单余额查询
func TestBalancesAgainstNode(t *testing.T) {
	c := SetupTestClient(t)
	defer TeardownTestClient(t, c)
	sender := TestSender(t)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	selector := coinselect.NewService(c, nil)
	balances, err := selector.Balances(ctx, sender)
	require.NoError(t, err)
	assert.Contains(t, balances, "SUI")
	t.Logf("balances: %v", balances)
}

// TestCompileTransferAgainstNode 针对真实节点编译一笔原生币转账草稿
//
// 只编译并序列化，不签名不提交。
func TestCompileTransferAgainstNode(t *testing.T) {
	c := SetupTestClient(t)
	defer TeardownTestClient(t, c)
	sender := TestSender(t)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	svc := compiler.NewService(c, &services.Config{}, nil)
	intents := []*types.Intent{{
		Action: types.ActionTransfer,
		Transfer: &types.TransferParams{
			Token:     "SUI",
			Amount:    "0.001",
			Recipient: sender, // 自转，避免真实资金去向
		},
		Confidence: 0.99,
	}}

	start := time.Now()
	b, err := svc.Compile(ctx, intents, sender, nil)
	require.NoError(t, err)
	t.Logf("compiled in %s", time.Since(start))

	draft, err := b.MarshalDraft()
	require.NoError(t, err)
	assert.NotEmpty(t, draft)
	assert.False(t, b.IsEmpty())
}

// TestReadTransactionAgainstNode 任选一个方法验证读路径连通
func TestReadTransactionAgainstNode(t *testing.T) {
	c := SetupTestClient(t)
	defer TeardownTestClient(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 不存在的摘要应返回 NotFound 而不是传输错误
	_, err := client.GetTransactionBlock(ctx, c, "11111111111111111111111111111111")
	assert.Error(t, err)
}
