// Package delegate calls the backend-side "admin generate" endpoint.
package delegate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/metrics"
	"storefront-recipes/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const breakerName = "delegate-generate"

// Client 遠端生成客戶端，外層包一個斷路器
type Client struct {
	client *resty.Client
	url    string
	secret string
	cb     *gobreaker.CircuitBreaker[[]byte]
}

// NewClient 創建遠端生成客戶端；secret 與觸發端點共用
func NewClient(cfg config.DelegateConfig, secret string) *Client {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     5 * time.Minute,
		// 觸發頻率很低，連續三次失敗即開路
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			common.LogWarn("斷路器狀態變更",
				zap.String("breaker", name),
				zap.String("from", fromStr),
				zap.String("to", toStr),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Client{
		client: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		url:    cfg.URL,
		secret: secret,
		cb:     cb,
	}
}

// Generate 呼叫遠端端點並回傳原始回應內容
func (c *Client) Generate(ctx context.Context) ([]byte, error) {
	if c.url == "" {
		return nil, common.ErrDelegateUnavailable
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.post(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			return nil, common.ErrDelegateUnavailable.Wrap(err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return body, nil
}

func (c *Client) post(ctx context.Context) ([]byte, error) {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.secret).
		Post(c.url)
	metrics.RecordUpstreamCall("delegate", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("delegate request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("delegate returned status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// State 目前的斷路器狀態
func (c *Client) State() string {
	return stateToString(c.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
