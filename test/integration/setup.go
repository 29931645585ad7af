package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/otterhq/intent-sdk-go/client"
)

const (
	// EndpointEnv 指定集成测试节点端点的环境变量
	EndpointEnv = "OTTER_NODE_ENDPOINT"
	// SenderEnv 指定已充值测试地址的环境变量
	SenderEnv = "OTTER_TEST_SENDER"
	// DefaultTimeout 默认超时时间
	DefaultTimeout = 30 * time.Second
)

// SetupTestClient 连接环境变量指定的全节点
//
// 未设置 OTTER_NODE_ENDPOINT 时跳过测试：集成测试只在
// 显式提供节点的环境里运行。
func SetupTestClient(t *testing.T) client.Client {
	endpoint := os.Getenv(EndpointEnv)
	if endpoint == "" {
		t.Skipf("set %s to run integration tests", EndpointEnv)
	}

	c, err := client.NewClient(&client.Config{
		Endpoint: endpoint,
		Protocol: client.ProtocolHTTP,
		Timeout:  int(DefaultTimeout.Seconds()),
	})
	require.NoError(t, err, "create client failed")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = c.Call(ctx, "rpc.discover", []interface{}{})
	require.NoError(t, err, "node is not reachable at %s", endpoint)

	return c
}

// TeardownTestClient 关闭测试客户端
func TeardownTestClient(t *testing.T, c client.Client) {
	if c != nil {
		if err := c.Close(); err != nil {
			t.Logf("close client warning: %v", err)
		}
	}
}

// TestSender 返回环境变量指定的测试地址，未设置时跳过
func TestSender(t *testing.T) string {
	sender := os.Getenv(SenderEnv)
	if sender == "" {
		t.Skipf("set %s to run integration tests that need a funded address", SenderEnv)
	}
	return sender
}
