// Package spoonacular is the third-party recipe source client.
package spoonacular

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-recipes/internal/core/recipe"
	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/metrics"
	"storefront-recipes/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const upstreamName = "spoonacular"

// ErrNotConfigured 未設定 API key
var ErrNotConfigured = errors.New("spoonacular api key is not configured")

// Client 食譜來源客戶端
type Client struct {
	client *resty.Client
	apiKey string
}

// NewClient 創建食譜來源客戶端
func NewClient(cfg config.SpoonacularConfig) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		apiKey: cfg.APIKey,
	}
}

type randomResponse struct {
	Recipes []common.ExternalRecipe `json:"recipes"`
}

type searchResponse struct {
	Results []struct {
		ID int64 `json:"id"`
	} `json:"results"`
	TotalResults int `json:"totalResults"`
}

// Random 取得一批隨機食譜（含營養資訊）
func (c *Client) Random(ctx context.Context, count int) ([]common.ExternalRecipe, error) {
	if count <= 0 {
		return nil, nil
	}

	var out randomResponse
	if err := c.get(ctx, "/recipes/random", map[string]string{
		"number":           strconv.Itoa(count),
		"includeNutrition": "true",
	}, &out); err != nil {
		return nil, err
	}
	return out.Recipes, nil
}

// SearchByDiet 依飲食條件搜尋，再以 id 批次取得完整資料
func (c *Client) SearchByDiet(ctx context.Context, diet recipe.Diet, count int) ([]common.ExternalRecipe, error) {
	if !diet.Searchable() {
		return nil, nil
	}

	var search searchResponse
	if err := c.get(ctx, "/recipes/complexSearch", map[string]string{
		diet.SearchParam: diet.SearchValue,
		"number":         strconv.Itoa(count),
	}, &search); err != nil {
		return nil, err
	}
	if len(search.Results) == 0 {
		common.LogDebug("分類搜尋沒有結果", zap.String("diet", diet.ID))
		return nil, nil
	}

	ids := make([]string, 0, len(search.Results))
	for _, r := range search.Results {
		ids = append(ids, strconv.FormatInt(r.ID, 10))
	}

	var recipes []common.ExternalRecipe
	if err := c.get(ctx, "/recipes/informationBulk", map[string]string{
		"ids":              strings.Join(ids, ","),
		"includeNutrition": "true",
	}, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("apiKey", c.apiKey).
		SetResult(result).
		Get(path)
	metrics.RecordUpstreamCall(upstreamName, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("%s request %s failed: %w", upstreamName, path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%s %s returned status %d", upstreamName, path, resp.StatusCode())
	}
	return nil
}
