package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamturing/competition-api/internal/domain/entity"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
	"github.com/teamturing/competition-api/internal/service"
)

// ============================================================================
// Стабы зависимостей OnboardingService и VerificationService
// ============================================================================

type stubParticipantRepo struct {
	info *entity.ParticipantInfo
}

func (s *stubParticipantRepo) GetByUserID(userID string) (*entity.ParticipantInfo, error) {
	if s.info == nil {
		return nil, apperrors.ErrNotFound
	}
	return s.info, nil
}

func (s *stubParticipantRepo) Upsert(info *entity.ParticipantInfo) error { return nil }

func (s *stubParticipantRepo) List(limit, offset int) ([]entity.ParticipantInfo, error) {
	return nil, nil
}

type stubCache struct {
	staged string
}

func (s *stubCache) Set(key string, value interface{}, expiration time.Duration) error { return nil }
func (s *stubCache) Get(key string) (string, error) {
	if s.staged == "" {
		return "", apperrors.ErrNotFound
	}
	return s.staged, nil
}
func (s *stubCache) Delete(key string) error { return nil }

type stubStore struct {
	files []string
}

func (s *stubStore) List(ctx context.Context, userID string) ([]string, error) {
	return s.files, nil
}

func (s *stubStore) Put(ctx context.Context, userID, name, contentType string, body io.Reader, size int64) error {
	return nil
}

func (s *stubStore) Delete(ctx context.Context, userID string, names []string) error { return nil }

type stubProfileRepo struct {
	profile *entity.UserProfile
}

func (s *stubProfileRepo) GetByUserAndMethod(userID, authMethod string) (*entity.UserProfile, error) {
	if s.profile == nil {
		return nil, apperrors.ErrNotFound
	}
	return s.profile, nil
}

func (s *stubProfileRepo) UpsertVerified(userID, authMethod, schoolEmail string) error { return nil }

type stubCodeRepo struct{}

func (s *stubCodeRepo) Create(code *entity.VerificationCode) error { return nil }
func (s *stubCodeRepo) GetLatestActive(userID, email string) (*entity.VerificationCode, error) {
	return nil, apperrors.ErrNotFound
}
func (s *stubCodeRepo) IncrementAttempts(id uint) error { return nil }
func (s *stubCodeRepo) MarkConsumed(id uint) error      { return nil }

type stubWhitelistRepo struct{}

func (s *stubWhitelistRepo) GetByEmail(email string) (*entity.WhitelistEntry, error) {
	return nil, apperrors.ErrNotFound
}
func (s *stubWhitelistRepo) Claim(email, userID string) error          { return nil }
func (s *stubWhitelistRepo) Create(entry *entity.WhitelistEntry) error { return nil }
func (s *stubWhitelistRepo) Delete(email string) error                 { return nil }
func (s *stubWhitelistRepo) List() ([]entity.WhitelistEntry, error)    { return nil, nil }

func newGatedRouter(t *testing.T, info *entity.ParticipantInfo, staged string, files []string, verified bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	onboarding, err := service.NewOnboardingService(
		&stubParticipantRepo{info: info},
		&stubCache{staged: staged},
		&stubStore{files: files},
	)
	require.NoError(t, err)

	profileRepo := &stubProfileRepo{}
	if verified {
		profileRepo.profile = &entity.UserProfile{
			UserID:              "u1",
			AuthMethod:          entity.AuthMethodGpai,
			SchoolEmail:         "student@college.edu",
			SchoolEmailVerified: true,
		}
	}
	verification, err := service.NewVerificationService(
		profileRepo, &stubCodeRepo{}, &stubWhitelistRepo{}, &service.NoopEmailService{},
		15*time.Minute, time.Minute, 5, "pepper", false,
	)
	require.NoError(t, err)

	pageHandler := NewPageHandler(onboarding, verification)

	router := gin.New()
	// user_id кладется напрямую: сессионный слой проверяется отдельно
	router.Use(func(c *gin.Context) { c.Set("user_id", "u1") })
	router.GET(service.RouteVerifyEmail, pageHandler.VerifySchoolEmail)
	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("", pageHandler.DashboardRedirect)
		dashboard.GET("/location", pageHandler.Gate(service.RouteLocation))
		dashboard.GET("/information", pageHandler.Gate(service.RouteInformation))
		dashboard.GET("/upload", pageHandler.Gate(service.RouteUpload))
		dashboard.GET("/submission-complete", pageHandler.Gate(service.RouteSubmissionComplete))
	}
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPageGate_NewUserCannotSkipAhead(t *testing.T) {
	router := newGatedRouter(t, nil, "", nil, true)

	w := get(router, "/dashboard/upload")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, service.RouteLocation, w.Header().Get("Location"))
}

func TestPageGate_CurrentStepAllowed(t *testing.T) {
	router := newGatedRouter(t, nil, "chennai", nil, true)

	w := get(router, "/dashboard/information")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "location_selected")
}

func TestPageGate_EarlierStepsStayOpenAfterInfo(t *testing.T) {
	info := &entity.ParticipantInfo{UserID: "u1", Location: "chennai"}
	router := newGatedRouter(t, info, "", nil, true)

	// Возврат на пройденные шаги разрешен: через него работает Edit,
	// данные более поздних шагов при этом не сбрасываются
	for _, route := range []string{service.RouteLocation, service.RouteInformation} {
		w := get(router, route)

		assert.Equal(t, http.StatusOK, w.Code, route)
		assert.Contains(t, w.Body.String(), "info_complete", route)
	}
}

func TestPageGate_EditAndReplaceAfterUpload(t *testing.T) {
	info := &entity.ParticipantInfo{UserID: "u1", Location: "chennai"}
	router := newGatedRouter(t, info, "", []string{"1700000000000-deck.pdf"}, true)

	// После загрузки файла страницы Edit (анкета) и Replace (загрузка)
	// остаются доступными, а не отбрасывают на submission-complete
	for _, route := range []string{service.RouteInformation, service.RouteUpload} {
		w := get(router, route)

		assert.Equal(t, http.StatusOK, w.Code, route)
	}
}

func TestPageGate_SubmissionCompleteClosedBeforeUpload(t *testing.T) {
	info := &entity.ParticipantInfo{UserID: "u1", Location: "chennai"}
	router := newGatedRouter(t, info, "", nil, true)

	w := get(router, "/dashboard/submission-complete")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, service.RouteUpload, w.Header().Get("Location"))
}

func TestPageGate_SubmissionCompleteAfterUpload(t *testing.T) {
	info := &entity.ParticipantInfo{UserID: "u1", Location: "chennai"}
	router := newGatedRouter(t, info, "", []string{"1700000000000-deck.pdf"}, true)

	w := get(router, "/dashboard/submission-complete")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "file_uploaded")
}

func TestDashboardRedirect(t *testing.T) {
	router := newGatedRouter(t, nil, "", nil, true)

	w := get(router, "/dashboard")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, service.RouteLocation, w.Header().Get("Location"))
}

func TestVerifySchoolEmailPage_UnverifiedAllowed(t *testing.T) {
	router := newGatedRouter(t, nil, "", nil, false)

	w := get(router, service.RouteVerifyEmail)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "email_unverified")
}

func TestVerifySchoolEmailPage_VerifiedRedirectsToDashboard(t *testing.T) {
	router := newGatedRouter(t, nil, "", nil, true)

	w := get(router, service.RouteVerifyEmail)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, service.RouteDashboard, w.Header().Get("Location"))
}
