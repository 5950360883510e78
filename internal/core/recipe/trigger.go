package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-recipes/internal/metrics"
	"storefront-recipes/internal/pkg/common"

	"go.uber.org/zap"
)

// 生成結果來源
const (
	SourceDelegated     = "delegated"
	SourceLocalFallback = "local-fallback"
)

// GenerationResult 批次生成端點的回應
type GenerationResult struct {
	Success     bool      `json:"success"`
	Count       int       `json:"count"`
	GeneratedAt string    `json:"generatedAt"`
	Source      string    `json:"source"`
	Warnings    []Warning `json:"warnings,omitempty"`

	// 遠端回傳的原始內容，原樣轉發
	delegated map[string]interface{}
}

// Payload 回應內容：遠端結果原樣轉發（附上來源），否則為本地結果
func (r *GenerationResult) Payload() interface{} {
	if r.delegated != nil {
		return r.delegated
	}
	return r
}

// Generator 批次生成策略
type Generator interface {
	Name() string
	Generate(ctx context.Context) (*GenerationResult, error)
}

// DelegateClient 遠端生成端點
type DelegateClient interface {
	Generate(ctx context.Context) ([]byte, error)
}

// RemoteDelegate 交由後端的生成器執行
type RemoteDelegate struct {
	client DelegateClient
}

// NewRemoteDelegate 創建遠端生成策略
func NewRemoteDelegate(client DelegateClient) *RemoteDelegate {
	return &RemoteDelegate{client: client}
}

// Name 策略名稱
func (d *RemoteDelegate) Name() string { return SourceDelegated }

// Generate 呼叫遠端端點；回應必須是 success 為 true 的 JSON 物件
func (d *RemoteDelegate) Generate(ctx context.Context) (*GenerationResult, error) {
	if d.client == nil {
		return nil, common.ErrDelegateUnavailable
	}

	body, err := d.client.Generate(ctx)
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := common.ParseJSONBytes(body, &payload); err != nil {
		return nil, common.ErrDelegateUnavailable.Wrap(fmt.Errorf("decode delegate payload: %w", err))
	}
	if ok, _ := payload["success"].(bool); !ok {
		return nil, common.ErrDelegateUnavailable.Wrap(errors.New("delegate reported failure"))
	}

	payload["source"] = SourceDelegated
	res := &GenerationResult{
		Success:   true,
		Source:    SourceDelegated,
		delegated: payload,
	}
	if at, ok := payload["generatedAt"].(string); ok {
		res.GeneratedAt = at
	}
	if n, err := numberField(payload["count"]); err == nil {
		res.Count = n
	}
	return res, nil
}

func numberField(v interface{}) (int, error) {
	switch n := v.(type) {
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		return int(i), err
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

// LocalPipeline 本地批次管線
type LocalPipeline struct {
	pipeline *Pipeline
}

// NewLocalPipeline 創建本地生成策略
func NewLocalPipeline(p *Pipeline) *LocalPipeline {
	return &LocalPipeline{pipeline: p}
}

// Name 策略名稱
func (l *LocalPipeline) Name() string { return SourceLocalFallback }

// Generate 執行本地管線
func (l *LocalPipeline) Generate(ctx context.Context) (*GenerationResult, error) {
	report, err := l.pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &GenerationResult{
		Success:     true,
		Count:       len(report.Snapshot.Recipes),
		GeneratedAt: report.Snapshot.GeneratedAt,
		Source:      SourceLocalFallback,
		Warnings:    report.Warnings,
	}, nil
}

// GenerateWithFallback 先嘗試 primary，任何失敗都改用 fallback
func GenerateWithFallback(ctx context.Context, primary, fallback Generator) (*GenerationResult, error) {
	if primary != nil {
		start := time.Now()
		res, err := primary.Generate(ctx)
		if err == nil && res != nil && res.Success {
			metrics.RecordGenerationRun(primary.Name(), time.Since(start), nil)
			common.LogInfo("遠端生成成功", zap.String("source", primary.Name()), zap.Int("count", res.Count))
			return res, nil
		}
		if err == nil {
			err = errors.New("unsuccessful result")
		}
		metrics.RecordGenerationRun(primary.Name(), time.Since(start), err)
		common.LogWarn("遠端生成不可用，改用本地管線",
			zap.String("primary", primary.Name()),
			zap.Error(err),
		)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	start := time.Now()
	res, err := fallback.Generate(ctx)
	metrics.RecordGenerationRun(fallback.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}
