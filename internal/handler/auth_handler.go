package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamturing/competition-api/internal/gpai"
	"github.com/teamturing/competition-api/internal/service"
)

// AuthHandler обрабатывает вход, выход и who-am-I поверх провайдерской сессии.
// Локальных учетных записей нет: вход — это проксирование пароля провайдеру
// и ретрансляция его сессионной куки в браузер.
type AuthHandler struct {
	client   *gpai.Client
	registry *service.RegistryService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(client *gpai.Client, registry *service.RegistryService) *AuthHandler {
	return &AuthHandler{client: client, registry: registry}
}

// Структуры запросов и ответов

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyUserRequest представляет запрос проверки регистрации email
type VerifyUserRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Login проксирует парольный вход провайдеру и ставит его сессионную куку.
// "Аккаунт не найден" и "неверный пароль" возвращаются одним и тем же ответом.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required", "error_type": "invalid_request"})
		return
	}

	result, err := h.client.LoginPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, gpai.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password", "error_type": "invalid_credentials"})
			return
		}
		respondError(c, err)
		return
	}

	// Ретранслируем провайдерскую куку как есть: имя, значение и срок жизни
	// принадлежат провайдеру, локально меняются только Path и флаги безопасности.
	relayed := *result.SessionCookie
	relayed.Path = "/"
	relayed.HttpOnly = true
	relayed.SameSite = http.SameSiteLaxMode
	http.SetCookie(c.Writer, &relayed)

	c.JSON(http.StatusOK, gin.H{"user": result.Identity})
}

// Logout завершает сессию у провайдера и гасит куку в браузере.
// Ответ всегда успешный: выход из уже мертвой сессии — не ошибка.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, _ := c.Cookie(gpai.SessionCookieName)
	if sessionID != "" {
		// Ошибку провайдера не транслируем: кука в браузере гасится в любом случае.
		_ = h.client.Logout(c.Request.Context(), sessionID)
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     gpai.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me возвращает identity текущей сессии.
func (h *AuthHandler) Me(c *gin.Context) {
	sessionID, _ := c.Cookie(gpai.SessionCookieName)
	identity, err := h.client.Me(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "session_invalid"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": identity})
}

// VerifyUser проверяет, зарегистрирован ли email в базе соревнования,
// до того как пользователь пойдет на форму входа провайдера.
func (h *AuthHandler) VerifyUser(c *gin.Context) {
	var req VerifyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required", "error_type": "invalid_request"})
		return
	}

	user, err := h.registry.VerifyRegistered(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registered": true, "user": user})
}
