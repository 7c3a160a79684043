package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
	"github.com/teamturing/competition-api/internal/service"
)

// respondError мапит доменные ошибки на HTTP-статусы и стабильные error_type.
// Текст ошибки уходит клиенту как есть: сервисы формулируют сообщения
// так, чтобы их можно было показывать пользователю.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidOrExpiredCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification code", "error_type": "invalid_or_expired_code"})
	case errors.Is(err, service.ErrVerificationAttemptsExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many incorrect attempts. Please request a new code.", "error_type": "verification_attempts_exceeded"})
	case errors.Is(err, service.ErrVerificationResendCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Please wait before requesting another code", "error_type": "verification_resend_cooldown"})
	case errors.Is(err, service.ErrNotRegistered):
		c.JSON(http.StatusForbidden, gin.H{"error": "This email is not registered. Please sign up for the competition first.", "error_type": "not_registered"})
	case errors.Is(err, service.ErrFileTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is too large. Maximum size is 20MB.", "error_type": "file_too_large"})
	case errors.Is(err, service.ErrFileTypeNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF, PPT and PPTX files are allowed", "error_type": "file_type_not_allowed"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "error_type": "forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrUpstream):
		log.Printf("[Handler] Upstream error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream service unavailable. Please try again.", "error_type": "upstream_error"})
	default:
		log.Printf("[Handler] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
	}
}

// currentUserID достает ID пользователя, положенный SessionMiddleware.
func currentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "context_missing_user"})
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "context_missing_user"})
		return "", false
	}
	return id, true
}
