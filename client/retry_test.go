package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "http 503", err: &httpStatusError{status: 503}, want: true},
		{name: "http 429", err: &httpStatusError{status: 429}, want: true},
		{name: "http 404", err: &httpStatusError{status: 404}, want: false},
		{name: "wrapped http 500", err: fmt.Errorf("send: %w", &httpStatusError{status: 500}), want: true},
		{name: "network error code", err: NewNetworkError(errors.New("broken pipe")), want: true},
		{name: "timeout error code", err: NewTimeoutError(), want: true},
		{name: "rpc error code", err: NewRPCError(-32601, "method not found", nil), want: false},
		{name: "dns failure", err: &net.DNSError{Err: "no such host", Name: "node.invalid"}, want: true},
		{name: "connection refused", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: true},
		{name: "plain error", err: errors.New("something else"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBackoffDelay(t *testing.T) {
	config := &RetryConfig{InitialDelay: 100, MaxDelay: 350, BackoffMultiplier: 2.0}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 350 * time.Millisecond}, // 400ms 被 MaxDelay 封顶
	}
	for _, tt := range tests {
		if got := backoffDelay(tt.attempt, config); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		return NewRPCError(-32602, "invalid params", nil)
	}, &RetryConfig{MaxRetries: 3, InitialDelay: 1, MaxDelay: 10, BackoffMultiplier: 2.0})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (non-retryable errors must not be retried)", calls)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		return &httpStatusError{status: 503}
	}, &RetryConfig{MaxRetries: 2, InitialDelay: 1, MaxDelay: 10, BackoffMultiplier: 2.0})

	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) {
		t.Errorf("exhaustion error should wrap the last failure, got %v", err)
	}
}
