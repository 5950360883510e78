package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront-recipes/internal/core/ai/provider"
	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/metrics"
	"storefront-recipes/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenRouterService OpenRouter chat completions 用戶端
type OpenRouterService struct {
	config config.OpenRouterConfig
	client *resty.Client
}

// NewOpenRouterService 創建 OpenRouter 服務
func NewOpenRouterService(cfg config.OpenRouterConfig) *OpenRouterService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("HTTP-Referer", "https://storefront-recipes.app").
		SetHeader("X-Title", "Storefront Recipes")

	return &OpenRouterService{
		config: cfg,
		client: client,
	}
}

// Model 目前使用的模型
func (s *OpenRouterService) Model() string {
	return s.config.Model
}

// Complete 發送一輪 chat completions 請求
func (s *OpenRouterService) Complete(ctx context.Context, p provider.Prompt) (*provider.Completion, error) {
	req := chatRequest{
		Model:     s.config.Model,
		MaxTokens: p.MaxTokens,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = s.config.MaxTokens
	}
	if p.System != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: p.System})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: p.User})
	if p.JSON {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	start := time.Now()
	var result chatResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/chat/completions")
	metrics.RecordUpstreamCall("openrouter", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogDebug("OpenRouter 回應錯誤",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", common.TruncateRunes(resp.String(), 300)),
		)
		return nil, fmt.Errorf("OpenRouter API returned status %d", resp.StatusCode())
	}

	if result.Error != nil {
		return nil, fmt.Errorf("OpenRouter API error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	model := result.Model
	if model == "" {
		model = s.config.Model
	}
	return &provider.Completion{
		Content:     result.Choices[0].Message.Content,
		Model:       model,
		TotalTokens: result.Usage.TotalTokens,
	}, nil
}
