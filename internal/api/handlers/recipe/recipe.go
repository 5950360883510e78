package recipe

import (
	"context"
	"net/http"
	"strings"

	recipeService "storefront-recipes/internal/core/recipe"
	"storefront-recipes/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OnDemand 隨選生成
type OnDemand interface {
	Generate(ctx context.Context, req recipeService.OnDemandRequest) (*common.Recipe, error)
}

// Handler 食譜端點
type Handler struct {
	primary   recipeService.Generator
	fallback  recipeService.Generator
	onDemand  OnDemand
	snapshots recipeService.SnapshotStore
}

// NewHandler 創建食譜處理器；primary 可為 nil（直接使用本地管線）
func NewHandler(primary, fallback recipeService.Generator, onDemand OnDemand, snapshots recipeService.SnapshotStore) *Handler {
	return &Handler{
		primary:   primary,
		fallback:  fallback,
		onDemand:  onDemand,
		snapshots: snapshots,
	}
}

// OnDemandResponse 隨選生成回應
type OnDemandResponse struct {
	Success bool           `json:"success"`
	Recipe  *common.Recipe `json:"recipe"`
}

// ListResponse 快照查詢回應
type ListResponse struct {
	Success     bool            `json:"success"`
	GeneratedAt string          `json:"generatedAt"`
	Count       int             `json:"count"`
	Recipes     []common.Recipe `json:"recipes"`
}

// HandleGenerateDaily 批次生成：先交給遠端，失敗時執行本地管線
func (h *Handler) HandleGenerateDaily(c *gin.Context) {
	requestID := requestid.Get(c)
	common.LogInfo("開始批次生成",
		zap.String("request_id", requestID),
		zap.String("trigger", triggerName(c)),
	)

	res, err := recipeService.GenerateWithFallback(c.Request.Context(), h.primary, h.fallback)
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("批次生成完成",
		zap.String("request_id", requestID),
		zap.String("source", res.Source),
		zap.Int("count", res.Count),
		zap.Int("warnings", len(res.Warnings)),
	)
	c.JSON(http.StatusOK, res.Payload())
}

// HandleGenerate 依飲食分類與商品清單即時生成一道食譜
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req recipeService.OnDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogDebug("隨選請求格式錯誤",
			zap.String("request_id", requestid.Get(c)),
			zap.Error(err),
		)
		respondError(c, common.NewValidationError("invalid request format"))
		return
	}

	recipe, err := h.onDemand.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, OnDemandResponse{Success: true, Recipe: recipe})
}

// HandleList 回傳最近一次的快照，可用 ?diet= 篩選
func (h *Handler) HandleList(c *gin.Context) {
	snapshot, err := h.snapshots.LoadSnapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	recipes := snapshot.Recipes
	if diet := strings.TrimSpace(c.Query("diet")); diet != "" {
		recipes = snapshot.FilterByDiet(diet)
	}
	if recipes == nil {
		recipes = []common.Recipe{}
	}

	c.JSON(http.StatusOK, ListResponse{
		Success:     true,
		GeneratedAt: snapshot.GeneratedAt,
		Count:       len(recipes),
		Recipes:     recipes,
	})
}

// HandleGet 依識別碼回傳快照中的一道食譜
func (h *Handler) HandleGet(c *gin.Context) {
	snapshot, err := h.snapshots.LoadSnapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, ok := snapshot.Find(c.Param("id"))
	if !ok {
		respondError(c, common.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recipe": recipe})
}

// triggerName 排程或手動觸發（僅用於日誌）
func triggerName(c *gin.Context) string {
	if strings.HasSuffix(c.FullPath(), "/manual") {
		return "manual"
	}
	return "scheduled"
}
