package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/otterhq/intent-sdk-go/client"
	"github.com/otterhq/intent-sdk-go/types"
)

// 分类服务边界：自由文本 → 结构化意图列表
//
// 分类器是不透明的外部服务，这里只定义请求/响应契约。
// 响应格式不合法时按"零意图、无法理解"处理，绝不让整条流水线硬失败。

// Outcome 一次分类的结果
type Outcome struct {
	// Intents 解析出的意图列表
	Intents []*types.Intent
	// Summary 分类器给出的人类可读摘要
	Summary string
	// Confidence 整体置信度
	Confidence float64
	// Understood 分类器是否理解了输入（响应不合法时为 false）
	Understood bool
}

// Service 分类服务接口
type Service interface {
	// Classify 把自由文本交给分类器解析
	Classify(ctx context.Context, text string) (*Outcome, error)
}

// httpService 基于 HTTP 的分类客户端
type httpService struct {
	endpoint string
	client   *http.Client
	logger   client.Logger
}

// NewService 创建分类客户端
func NewService(endpoint string, timeoutSeconds int, logger client.Logger) Service {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return &httpService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		logger:   logger,
	}
}

// classifyRequest 分类请求体
type classifyRequest struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

// notUnderstood 构造"无法理解"的结果
func notUnderstood() *Outcome {
	return &Outcome{
		Intents:    nil,
		Summary:    "could not understand the request",
		Understood: false,
	}
}

// Classify 调用分类服务
//
// 网络/HTTP 层失败返回错误；响应体不是合法 JSON 或不符合 schema
// 时返回 Understood=false 的结果而非错误。
func (s *httpService) Classify(ctx context.Context, text string) (*Outcome, error) {
	reqID := uuid.NewString()
	body, err := json.Marshal(classifyRequest{Message: text, RequestID: reqID})
	if err != nil {
		return nil, fmt.Errorf("marshal classify request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create classify request failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("classify request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read classify response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned HTTP %d", resp.StatusCode)
	}

	var parsed types.ClassifierResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if s.logger != nil {
			s.logger.Warn("classifier response is not valid JSON, treating as not understood",
				"requestId", reqID, "error", err)
		}
		return notUnderstood(), nil
	}
	if len(parsed.Intents) == 0 {
		return notUnderstood(), nil
	}

	return &Outcome{
		Intents:    parsed.Intents,
		Summary:    parsed.Summary,
		Confidence: parsed.Confidence,
		Understood: true,
	}, nil
}
