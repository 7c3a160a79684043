package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminTokenHeader — заголовок с токеном административного доступа.
const AdminTokenHeader = "X-Admin-Token"

// AdminOnly пускает дальше только запросы с корректным административным токеном.
// Пустой сконфигурированный токен полностью закрывает административные маршруты.
func AdminOnly(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(AdminTokenHeader)
		if token == "" || presented == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "Admin access required",
				"error_type": "admin_forbidden",
			})
			return
		}
		c.Next()
	}
}
