package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader — заголовок с идентификатором запроса.
const RequestIDHeader = "X-Request-ID"

// ContextRequestID — ключ контекста Gin с идентификатором запроса.
const ContextRequestID = "request_id"

// RequestID присваивает каждому запросу идентификатор и возвращает его
// в ответе. Клиентский идентификатор, если прислан, сохраняется.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
