// Package catalog reads the storefront product catalog from the commerce backend.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/metrics"
	"storefront-recipes/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	productsPath = "/store/products"
	// 需要的欄位：標籤、規格、計算後價格與庫存
	productFields = "id,title,handle,thumbnail,*tags,*variants,*variants.calculated_price,+variants.inventory_quantity"
	// 避免後端回傳錯誤的 count 造成無限翻頁
	maxPages = 200
)

// Client 商品目錄客戶端
type Client struct {
	client   *resty.Client
	regionID string
	pageSize int
}

// NewClient 創建商品目錄客戶端
func NewClient(cfg config.CatalogConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.PublishableKey != "" {
		client.SetHeader("x-publishable-api-key", cfg.PublishableKey)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	return &Client{
		client:   client,
		regionID: cfg.RegionID,
		pageSize: pageSize,
	}
}

type productPage struct {
	Products []storeProduct `json:"products"`
	Count    int            `json:"count"`
	Offset   int            `json:"offset"`
	Limit    int            `json:"limit"`
}

type storeProduct struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Handle    string `json:"handle"`
	Thumbnail string `json:"thumbnail"`
	Tags      []struct {
		Value string `json:"value"`
	} `json:"tags"`
	Variants []storeVariant `json:"variants"`
}

type storeVariant struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	InventoryQuantity *int   `json:"inventory_quantity"`
	CalculatedPrice   *struct {
		CalculatedAmount *float64 `json:"calculated_amount"`
	} `json:"calculated_price"`
}

// ListProducts 逐頁讀取完整商品目錄
func (c *Client) ListProducts(ctx context.Context) ([]common.Product, error) {
	var products []common.Product

	for page, offset := 0, 0; page < maxPages; page++ {
		batch, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		for _, p := range batch.Products {
			products = append(products, p.toProduct())
		}

		offset += len(batch.Products)
		if len(batch.Products) == 0 || offset >= batch.Count {
			break
		}
	}

	common.LogDebug("商品目錄讀取完成", zap.Int("products", len(products)))
	return products, nil
}

func (c *Client) fetchPage(ctx context.Context, offset int) (*productPage, error) {
	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"limit":  strconv.Itoa(c.pageSize),
			"offset": strconv.Itoa(offset),
			"fields": productFields,
		})
	if c.regionID != "" {
		req.SetQueryParam("region_id", c.regionID)
	}

	var page productPage
	start := time.Now()
	resp, err := req.SetResult(&page).Get(productsPath)
	metrics.RecordUpstreamCall("catalog", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode())
	}
	return &page, nil
}

func (p storeProduct) toProduct() common.Product {
	out := common.Product{
		ID:        p.ID,
		Title:     p.Title,
		Handle:    p.Handle,
		Thumbnail: p.Thumbnail,
	}
	for _, t := range p.Tags {
		if t.Value != "" {
			out.Tags = append(out.Tags, t.Value)
		}
	}
	for _, v := range p.Variants {
		variant := common.ProductVariant{
			ID:                v.ID,
			Title:             v.Title,
			InventoryQuantity: v.InventoryQuantity,
		}
		if v.CalculatedPrice != nil {
			variant.Price = v.CalculatedPrice.CalculatedAmount
		}
		out.Variants = append(out.Variants, variant)
	}
	return out
}
