package middleware

import (
	"ManadaBook/internal/api/config"
	"ManadaBook/internal/pkg/response"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CleanupSecretMiddleware 校验清理端点的共享密钥
// 该端点由外部调度器触发，密钥不匹配时返回 HTTP 401
func CleanupSecretMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := config.Cfg.Cleanup.Secret

		authHeader := c.GetHeader("Authorization")
		if secret == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.FailWithStatus(c, http.StatusUnauthorized, response.Unauthorized, "unauthorized")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			response.FailWithStatus(c, http.StatusUnauthorized, response.Unauthorized, "unauthorized")
			c.Abort()
			return
		}

		c.Next()
	}
}
