package recipe

import (
	"errors"
	"net/http"

	"storefront-recipes/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 將錯誤映射為狀態碼並以統一格式回應
func respondError(c *gin.Context, err error) {
	status, code := common.StatusFromError(err)

	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogDebug("請求被拒絕", fields...)
	}

	c.JSON(status, common.ErrorResponse{
		Success: false,
		Code:    code,
		Error:   errorMessage(err),
	})
}

// errorMessage 對外訊息：驗證錯誤與已知錯誤使用其訊息，其餘不外洩細節
func errorMessage(err error) string {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return "internal server error"
}
