package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-recipes/internal/core/ai/cache"
	"storefront-recipes/internal/core/ai/provider"
	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// 兩個呼叫端（翻譯與隨選生成）都只接受 JSON 物件
const jsonSystemPrompt = "Eres un asistente culinario. Responde únicamente con un objeto JSON válido, sin texto adicional."

// Response AI 回應結構
type Response struct {
	Content  string
	CacheHit bool
}

// Service AI 服務
type Service struct {
	provider  provider.Provider
	cache     cache.PromptCache
	limiter   *rate.Limiter
	maxTokens int
}

// NewService 創建 AI 服務；promptCache 可為 nil
func NewService(cfg *config.Config, p provider.Provider, promptCache cache.PromptCache) *Service {
	rps := cfg.OpenRouter.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &Service{
		provider:  p,
		cache:     promptCache,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		maxTokens: cfg.OpenRouter.MaxTokens,
	}
}

// ProcessRequest 統一對外方法
func (s *Service) ProcessRequest(ctx context.Context, prompt string) (*Response, error) {
	prompt = normalizePrompt(prompt)
	if prompt == "" {
		return nil, common.NewValidationError("empty prompt")
	}

	if s.cache != nil {
		if val, err := s.cache.Get(ctx, prompt); err == nil && val != "" {
			return &Response{Content: val, CacheHit: true}, nil
		} else if err != nil && !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("快取讀取失敗", zap.Error(err))
		}
	}

	// 依設定的速率排隊等待，而非直接拒絕
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for AI rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := s.provider.Complete(ctx, provider.Prompt{
		System:    jsonSystemPrompt,
		User:      prompt,
		MaxTokens: s.maxTokens,
		JSON:      true,
	})
	common.LogAICall(s.provider.Model(), time.Since(start), err)
	if err != nil {
		return nil, common.ErrAIServiceError.Wrap(err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return nil, common.ErrAIServiceError.Wrap(errors.New("empty AI response"))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, prompt, content); err != nil {
			common.LogWarn("快取寫入失敗", zap.Error(err))
		}
	}

	return &Response{Content: content}, nil
}

// normalizePrompt 統一 prompt 格式，合併空白確保快取 key 一致
func normalizePrompt(prompt string) string {
	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
