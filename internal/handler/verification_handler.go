package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamturing/competition-api/internal/service"
)

// VerificationHandler обрабатывает подтверждение школьной почты.
type VerificationHandler struct {
	verification *service.VerificationService
}

// NewVerificationHandler создает новый обработчик верификации
func NewVerificationHandler(verification *service.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

// SendCodeRequest представляет запрос на отправку кода подтверждения
type SendCodeRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyCodeRequest представляет запрос на проверку кода
type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// SendCode выпускает код подтверждения для школьной почты.
// Для email из whitelist верификация проходит сразу, без письма.
func (h *VerificationHandler) SendCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required", "error_type": "invalid_request"})
		return
	}

	outcome, err := h.verification.IssueCode(c.Request.Context(), userID, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	if outcome.AutoVerified {
		c.JSON(http.StatusOK, gin.H{"success": true, "auto_verified": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code sent"})
}

// VerifyCode проверяет введенный код и отмечает почту подтвержденной.
func (h *VerificationHandler) VerifyCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and code are required", "error_type": "invalid_request"})
		return
	}

	if err := h.verification.RedeemCode(c.Request.Context(), userID, req.Email, req.Code); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "verified": true})
}

// Status возвращает статус верификации текущего пользователя.
func (h *VerificationHandler) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	status, err := h.verification.Status(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"verified":     status.Verified,
		"school_email": status.SchoolEmail,
	})
}
