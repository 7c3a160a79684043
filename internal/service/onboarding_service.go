package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/teamturing/competition-api/internal/domain/entity"
	"github.com/teamturing/competition-api/internal/domain/repository"
	"github.com/teamturing/competition-api/internal/pkg/emailrules"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// Маршруты шагов онбординга.
const (
	RouteDashboard          = "/dashboard"
	RouteVerifyEmail        = "/verify-school-email"
	RouteLocation           = "/dashboard/location"
	RouteInformation        = "/dashboard/information"
	RouteUpload             = "/dashboard/upload"
	RouteSubmissionComplete = "/dashboard/submission-complete"
)

// stepOrder — позиция каждого шага в последовательности мастера.
var stepOrder = map[string]int{
	RouteLocation:           0,
	RouteInformation:        1,
	RouteUpload:             2,
	RouteSubmissionComplete: 3,
}

// RouteAccessible сообщает, доступен ли маршрут route при вычисленном шаге
// next. Пройденные шаги остаются открытыми: пользователь возвращается к ним
// через Edit/Replace, и это не сбрасывает данные более поздних шагов.
// Закрыт только переход вперед мимо актуального шага.
func RouteAccessible(route string, next *NextStep) bool {
	ri, ok := stepOrder[route]
	if !ok {
		return false
	}
	ni, ok := stepOrder[next.Route]
	if !ok {
		return false
	}
	return ri <= ni
}

// OnboardingState — состояние мастера онбординга.
// Порядок строгий: вперед по happy path, назад — только через явный Edit,
// который никогда не стирает данные более поздних шагов.
type OnboardingState string

const (
	StateNoLocation       OnboardingState = "no_location"
	StateLocationSelected OnboardingState = "location_selected"
	StateInfoComplete     OnboardingState = "info_complete"
	StateFileUploaded     OnboardingState = "file_uploaded"
)

// NextStep — ответ на вопрос "куда дальше": состояние и маршрут.
type NextStep struct {
	State OnboardingState `json:"state"`
	Route string          `json:"route"`
}

// ParticipantInput — данные формы второго шага.
type ParticipantInput struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	RewardEmail  string `json:"reward_email"`
	Location     string `json:"location"`
	College      string `json:"college"`
	CollegeOther string `json:"college_other"`
}

const stagedLocationTTL = 24 * time.Hour

// OnboardingService вычисляет состояние мастера и управляет переходами.
// Выбранная площадка хранится на сервере (Redis, TTL сутки), а не в браузере:
// состояние машины полностью server-authoritative и переживает смену вкладки/устройства.
type OnboardingService struct {
	participantRepo repository.ParticipantInfoRepository
	cache           repository.CacheRepository
	store           repository.SubmissionStore
}

// NewOnboardingService создает сервис онбординга и возвращает ошибку при проблемах
func NewOnboardingService(
	participantRepo repository.ParticipantInfoRepository,
	cache repository.CacheRepository,
	store repository.SubmissionStore,
) (*OnboardingService, error) {
	if participantRepo == nil {
		return nil, fmt.Errorf("participant info repository is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache repository is required")
	}
	if store == nil {
		return nil, fmt.Errorf("submission store is required")
	}
	return &OnboardingService{
		participantRepo: participantRepo,
		cache:           cache,
		store:           store,
	}, nil
}

func stagedLocationKey(userID string) string {
	return "onboarding:location:" + userID
}

// StageLocation сохраняет выбранную площадку как промежуточное состояние
// между первым и вторым шагом.
func (s *OnboardingService) StageLocation(ctx context.Context, userID, location string) error {
	location = strings.ToLower(strings.TrimSpace(location))
	if !entity.IsValidLocation(location) {
		return fmt.Errorf("%w: unknown location '%s'", apperrors.ErrValidation, location)
	}
	return s.cache.Set(stagedLocationKey(userID), location, stagedLocationTTL)
}

// StagedLocation возвращает выбранную площадку или пустую строку, если выбора не было.
func (s *OnboardingService) StagedLocation(ctx context.Context, userID string) (string, error) {
	location, err := s.cache.Get(stagedLocationKey(userID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return location, nil
}

// ParticipantInfo возвращает анкету или nil для новых пользователей.
func (s *OnboardingService) ParticipantInfo(ctx context.Context, userID string) (*entity.ParticipantInfo, error) {
	info, err := s.participantRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return info, nil
}

// SaveParticipantInfo валидирует и сохраняет анкету (upsert по user_id),
// после чего промежуточный выбор площадки больше не нужен и удаляется.
// Перезапись анкеты не трогает загруженный файл.
func (s *OnboardingService) SaveParticipantInfo(ctx context.Context, userID string, input ParticipantInput) error {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.RewardEmail = emailrules.Normalize(input.RewardEmail)
	input.Location = strings.ToLower(strings.TrimSpace(input.Location))
	input.College = strings.TrimSpace(input.College)
	input.CollegeOther = strings.TrimSpace(input.CollegeOther)

	if input.FirstName == "" || input.LastName == "" || input.RewardEmail == "" ||
		input.Location == "" || input.College == "" {
		return fmt.Errorf("%w: missing required fields", apperrors.ErrValidation)
	}
	if !entity.IsValidLocation(input.Location) {
		return fmt.Errorf("%w: unknown location '%s'", apperrors.ErrValidation, input.Location)
	}
	if input.College == "Other" && input.CollegeOther == "" {
		return fmt.Errorf("%w: college name is required when selecting Other", apperrors.ErrValidation)
	}

	info := &entity.ParticipantInfo{
		UserID:       userID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		RewardEmail:  input.RewardEmail,
		Location:     input.Location,
		College:      input.College,
		CollegeOther: input.CollegeOther,
	}
	if err := s.participantRepo.Upsert(info); err != nil {
		return err
	}

	if err := s.cache.Delete(stagedLocationKey(userID)); err != nil {
		// Ключ с TTL истечет сам, на состояние машины это не влияет.
		log.Printf("[OnboardingService] Не удалось удалить staged location для user=%s: %v", userID, err)
	}
	return nil
}

// ComputeNextStep определяет текущее состояние и следующий шаг мастера.
// Чистое чтение без побочных эффектов: повторный вызов без записей между
// вызовами дает тот же маршрут. Анкета доминирует над staged-выбором —
// после ее создания маршрут выбора площадки больше не возвращается.
func (s *OnboardingService) ComputeNextStep(ctx context.Context, userID string) (*NextStep, error) {
	info, err := s.ParticipantInfo(ctx, userID)
	if err != nil {
		return nil, err
	}

	if info != nil {
		files, err := s.store.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			return &NextStep{State: StateFileUploaded, Route: RouteSubmissionComplete}, nil
		}
		return &NextStep{State: StateInfoComplete, Route: RouteUpload}, nil
	}

	staged, err := s.StagedLocation(ctx, userID)
	if err != nil {
		return nil, err
	}
	if staged != "" {
		return &NextStep{State: StateLocationSelected, Route: RouteInformation}, nil
	}
	return &NextStep{State: StateNoLocation, Route: RouteLocation}, nil
}
