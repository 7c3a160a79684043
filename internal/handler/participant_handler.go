package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamturing/competition-api/internal/service"
)

// ParticipantHandler обрабатывает шаги онбординга: выбор площадки,
// анкету и вычисление следующего шага.
type ParticipantHandler struct {
	onboarding *service.OnboardingService
}

// NewParticipantHandler создает новый обработчик онбординга
func NewParticipantHandler(onboarding *service.OnboardingService) *ParticipantHandler {
	return &ParticipantHandler{onboarding: onboarding}
}

// StageLocationRequest представляет запрос на выбор площадки
type StageLocationRequest struct {
	Location string `json:"location" binding:"required"`
}

// StageLocation сохраняет выбранную площадку (первый шаг онбординга).
func (h *ParticipantHandler) StageLocation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req StageLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location is required", "error_type": "invalid_request"})
		return
	}

	if err := h.onboarding.StageLocation(c.Request.Context(), userID, req.Location); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetParticipantInfo возвращает анкету текущего пользователя.
// Для новых пользователей — exists=false, это не ошибка.
func (h *ParticipantHandler) GetParticipantInfo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	info, err := h.onboarding.ParticipantInfo(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if info == nil {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": true, "info": info})
}

// SaveParticipantInfo сохраняет анкету (второй шаг онбординга).
func (h *ParticipantHandler) SaveParticipantInfo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input service.ParticipantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid participant info payload", "error_type": "invalid_request"})
		return
	}

	if err := h.onboarding.SaveParticipantInfo(c.Request.Context(), userID, input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// NextStep возвращает текущее состояние онбординга и маршрут следующего шага.
func (h *ParticipantHandler) NextStep(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	step, err := h.onboarding.ComputeNextStep(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, step)
}
