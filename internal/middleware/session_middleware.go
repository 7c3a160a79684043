package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamturing/competition-api/internal/gpai"
	"github.com/teamturing/competition-api/internal/service"
)

// Ключи контекста Gin, устанавливаемые SessionMiddleware.
const (
	ContextUserID  = "user_id"
	ContextEmail   = "email"
	ContextIsGuest = "is_guest"
)

// Маршруты редиректов для страничных (не-API) запросов.
const (
	SignInRoute            = "/sign-in"
	VerifySchoolEmailRoute = service.RouteVerifyEmail
)

// SessionMiddleware проверяет провайдерскую сессию на каждом запросе.
// Единственный источник истины — ответ провайдера на /api/auth/me:
// никаких локальных токенов не выпускается, любой сбой трактуется
// как отсутствие сессии (fail-closed).
type SessionMiddleware struct {
	client       *gpai.Client
	verification *service.VerificationService
}

// NewSessionMiddleware создает middleware сессий и возвращает ошибку при проблемах
func NewSessionMiddleware(client *gpai.Client, verification *service.VerificationService) (*SessionMiddleware, error) {
	if client == nil {
		return nil, errors.New("gpai client is required")
	}
	if verification == nil {
		return nil, errors.New("verification service is required")
	}
	return &SessionMiddleware{client: client, verification: verification}, nil
}

// RequireSession проверяет сессию и кладет identity в контекст.
// API-запросы получают JSON 401, страничные — редирект на /sign-in.
func (m *SessionMiddleware) RequireSession(api bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, _ := c.Cookie(gpai.SessionCookieName)

		identity, err := m.client.Me(c.Request.Context(), sessionID)
		if err != nil {
			if !errors.Is(err, gpai.ErrUnauthenticated) {
				log.Printf("[SessionMiddleware] Ошибка проверки сессии: %v", err)
			}
			m.rejectUnauthenticated(c, api)
			return
		}

		c.Set(ContextUserID, identity.ID)
		c.Set(ContextEmail, identity.Email)
		c.Set(ContextIsGuest, identity.IsGuest)
		c.Next()
	}
}

// RequireVerified пускает дальше только пользователей с подтвержденной
// школьной почтой. Применяется ПОСЛЕ RequireSession.
func (m *SessionMiddleware) RequireVerified(api bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(ContextUserID)
		if !exists {
			m.rejectUnauthenticated(c, api)
			return
		}

		status, err := m.verification.Status(c.Request.Context(), userID.(string))
		if err != nil {
			log.Printf("[SessionMiddleware] Ошибка проверки верификации user=%v: %v", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "Failed to check verification status",
				"error_type": "internal_server_error",
			})
			return
		}
		if !status.Verified {
			if api {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":      "School email verification required",
					"error_type": "verification_required",
				})
				return
			}
			c.Redirect(http.StatusFound, VerifySchoolEmailRoute)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *SessionMiddleware) rejectUnauthenticated(c *gin.Context, api bool) {
	if api {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":      "Unauthorized",
			"error_type": "session_invalid",
		})
		return
	}
	c.Redirect(http.StatusFound, SignInRoute)
	c.Abort()
}
