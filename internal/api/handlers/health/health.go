package health

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Features  FeatureStatus          `json:"features"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// FeatureStatus 可選外部服務的設定狀態
type FeatureStatus struct {
	Translation    bool   `json:"translation"`
	RecipeSource   bool   `json:"recipe_source"`
	Delegate       bool   `json:"delegate"`
	StorageBackend string `json:"storage_backend"`
}

// SnapshotLoader 就緒檢查用的快照讀取
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (*common.RecipesSnapshot, error)
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	value, exists := c.Get("config")
	if !exists {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{Code: common.ErrCodeInternalError, Error: "configuration not found"})
		return
	}
	cfg, ok := value.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{Code: common.ErrCodeInternalError, Error: "invalid configuration type"})
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Features: FeatureStatus{
			Translation:    cfg.OpenRouter.Enabled(),
			RecipeSource:   cfg.Spoonacular.APIKey != "",
			Delegate:       cfg.Delegate.URL != "",
			StorageBackend: cfg.Storage.Backend,
		},
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：快照儲存可讀（尚未生成也算就緒）
func ReadinessCheck(store SnapshotLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		_, err := store.LoadSnapshot(ctx)
		if err != nil && !errors.Is(err, common.ErrSnapshotNotFound) {
			common.LogWarn("快照儲存無法讀取", zap.Error(err))
			c.JSON(common.ErrServiceUnavailable.Status, common.ErrorResponse{
				Code:  common.ErrServiceUnavailable.Code,
				Error: common.ErrServiceUnavailable.Message,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"snapshot": err == nil,
		})
	}
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
