package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"
)

// RetryConfig 重试配置
type RetryConfig struct {
	// MaxRetries 最大重试次数
	MaxRetries int
	// InitialDelay 初始延迟（毫秒）
	InitialDelay int
	// MaxDelay 最大延迟（毫秒）
	MaxDelay int
	// BackoffMultiplier 退避倍数
	BackoffMultiplier float64
	// Retryable 判断错误是否可重试的函数
	Retryable func(error) bool
	// OnRetry 重试前的回调函数
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig 返回默认重试配置
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        3,
		InitialDelay:      1000,
		MaxDelay:          10000,
		BackoffMultiplier: 2.0,
		Retryable:         isRetryableError,
		OnRetry:           nil,
	}
}

// httpStatusError 传输层返回的非 200 状态
//
// 用类型而不是错误消息承载状态码，让可重试性判断走 errors.As
// 而不是字符串匹配。
type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.status)
}

// isRetryableError 判断错误是否可重试
//
// 可重试的类别：
//   - 5xx / 429 状态码（节点过载或暂时不可用）
//   - 本客户端的网络/超时错误码
//   - 连接层错误（拒绝连接、DNS 解析失败、读写超时）
//
// JSON-RPC 层的错误（方法不存在、参数非法）永远不重试。
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return isRetryableHTTPError(statusErr.status)
	}

	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr.Code == ErrCodeNetwork || clientErr.Code == ErrCodeTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// isRetryableHTTPError 判断 HTTP 状态码是否可重试
func isRetryableHTTPError(statusCode int) bool {
	// 5xx：服务器错误
	if statusCode >= 500 && statusCode < 600 {
		return true
	}
	// 429：请求过多
	return statusCode == 429
}

// backoffDelay 计算第 attempt 次重试前的退避延迟
func backoffDelay(attempt int, config *RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiplier, float64(attempt))
	if maxDelay := float64(config.MaxDelay); delay > maxDelay {
		delay = maxDelay
	}
	return time.Duration(delay) * time.Millisecond
}

// withRetry 带重试的函数执行器
//
// 不可重试的错误原样返回；重试耗尽后返回包装了最后一次错误的失败。
func withRetry(ctx context.Context, fn func() error, config *RetryConfig) error {
	if config == nil {
		return fn()
	}

	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= config.MaxRetries {
			break
		}

		retryable := config.Retryable
		if retryable == nil {
			retryable = isRetryableError
		}
		if !retryable(err) {
			return err
		}

		if config.OnRetry != nil {
			config.OnRetry(attempt+1, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffDelay(attempt, config)):
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}
