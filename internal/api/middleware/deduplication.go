package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"storefront-recipes/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultDedupWindow = time.Second

// Deduplicator 在時間窗內拒絕相同指紋的請求
type Deduplicator struct {
	mu       sync.Mutex
	window   time.Duration
	requests map[string]time.Time
	lastScan time.Time
	now      func() time.Time
}

// NewDeduplicator window 為 0 時使用一秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Deduplicator{
		window:   window,
		requests: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Middleware 指紋為方法、路徑與請求體雜湊（查詢參數不列入，避免密鑰成為指紋的一部分）
func (d *Deduplicator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		fingerprint := c.Request.Method + ":" + c.Request.URL.Path

		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				abortWithError(c, common.ErrInvalidRequest)
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))

			if len(body) > 0 {
				hash := sha256.Sum256(body)
				fingerprint += ":" + hex.EncodeToString(hash[:])
			}
		}

		if !d.admit(fingerprint) {
			common.LogWarn("重複請求已拒絕", zap.String("path", c.Request.URL.Path))
			abortWithError(c, common.ErrDuplicate)
			return
		}

		c.Next()
	}
}

// admit 記錄指紋；時間窗內重複出現時回傳 false
func (d *Deduplicator) admit(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return false
	}
	d.requests[fingerprint] = now

	if now.Sub(d.lastScan) > 10*d.window {
		for k, t := range d.requests {
			if now.Sub(t) > d.window {
				delete(d.requests, k)
			}
		}
		d.lastScan = now
	}
	return true
}
