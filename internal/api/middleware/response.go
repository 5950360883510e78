package middleware

import (
	"storefront-recipes/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// abortWithError 以統一格式中止請求
func abortWithError(c *gin.Context, err *common.CustomError) {
	c.AbortWithStatusJSON(err.Status, common.ErrorResponse{
		Success: false,
		Code:    err.Code,
		Error:   err.Message,
	})
}
