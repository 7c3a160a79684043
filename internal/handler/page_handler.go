package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamturing/competition-api/internal/service"
)

// PageHandler — шлюз страничных маршрутов мастера /dashboard/*.
// Пройденные шаги остаются доступными (Edit/Replace), а перепрыгнуть
// вперед мимо актуального шага прямым переходом по URL нельзя:
// такой запрос отвечает редиректом на актуальный шаг.
type PageHandler struct {
	onboarding   *service.OnboardingService
	verification *service.VerificationService
}

// NewPageHandler создает новый шлюз страниц онбординга
func NewPageHandler(onboarding *service.OnboardingService, verification *service.VerificationService) *PageHandler {
	return &PageHandler{onboarding: onboarding, verification: verification}
}

// Gate возвращает обработчик страницы шага: пускает на актуальный шаг
// и на все уже пройденные, иначе — 302 на актуальный.
func (h *PageHandler) Gate(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		step, err := h.onboarding.ComputeNextStep(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}

		if !service.RouteAccessible(route, step) {
			c.Redirect(http.StatusFound, step.Route)
			return
		}
		c.JSON(http.StatusOK, step)
	}
}

// DashboardRedirect отправляет с корня /dashboard на актуальный шаг.
func (h *PageHandler) DashboardRedirect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	step, err := h.onboarding.ComputeNextStep(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, step.Route)
}

// VerifySchoolEmail — страница подтверждения школьной почты. Требует
// только сессию: на нее приходят именно неверифицированные пользователи.
// Уже верифицированных отправляет в мастер онбординга.
func (h *PageHandler) VerifySchoolEmail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	status, err := h.verification.Status(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if status.Verified {
		c.Redirect(http.StatusFound, service.RouteDashboard)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state": "email_unverified",
		"route": service.RouteVerifyEmail,
	})
}
