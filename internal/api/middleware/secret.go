package middleware

import (
	"crypto/subtle"
	"strings"

	"storefront-recipes/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireSecret 觸發端點的共用密鑰驗證。
// 密鑰可放在 Authorization: Bearer 標頭或 secret 查詢參數；未設定密鑰時一律拒絕。
func RequireSecret(secret string) gin.HandlerFunc {
	if secret == "" {
		common.LogWarn("未設定觸發密鑰，觸發端點將拒絕所有請求")
	}

	return func(c *gin.Context) {
		if secret == "" || !secretMatches(c, secret) {
			common.LogWarn("觸發端點驗證失敗",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			abortWithError(c, common.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func secretMatches(c *gin.Context, secret string) bool {
	if token, ok := bearerToken(c.GetHeader("Authorization")); ok && constantTimeEqual(token, secret) {
		return true
	}
	if q := c.Query("secret"); q != "" && constantTimeEqual(q, secret) {
		return true
	}
	return false
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
