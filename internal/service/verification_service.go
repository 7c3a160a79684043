package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/teamturing/competition-api/internal/domain/entity"
	"github.com/teamturing/competition-api/internal/domain/repository"
	"github.com/teamturing/competition-api/internal/pkg/emailrules"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// BypassCode — фиксированный код для локального тестирования.
// Принимается ТОЛЬКО при включенном bypassEnabled (не production):
// в production-конфигурации флаг обязан быть выключен.
const BypassCode = "999999"

// IssueOutcome — результат запроса кода верификации.
type IssueOutcome struct {
	// AutoVerified — true для whitelist-пути: код не создавался, письмо не отправлялось.
	AutoVerified bool `json:"auto_verified"`
}

// SchoolEmailStatus — текущее состояние верификации школьной почты.
type SchoolEmailStatus struct {
	Verified    bool   `json:"verified"`
	SchoolEmail string `json:"school_email,omitempty"`
}

// VerificationService управляет жизненным циклом кодов верификации школьной почты:
// выдача, whitelist-автоверификация, погашение.
type VerificationService struct {
	profileRepo   repository.UserProfileRepository
	codeRepo      repository.VerificationCodeRepository
	whitelistRepo repository.WhitelistRepository
	emailService  EmailService

	verificationTTL time.Duration
	resendCooldown  time.Duration
	maxAttempts     int
	codePepper      string
	bypassEnabled   bool
}

// NewVerificationService создает сервис верификации и возвращает ошибку при проблемах
func NewVerificationService(
	profileRepo repository.UserProfileRepository,
	codeRepo repository.VerificationCodeRepository,
	whitelistRepo repository.WhitelistRepository,
	emailService EmailService,
	verificationTTL time.Duration,
	resendCooldown time.Duration,
	maxAttempts int,
	codePepper string,
	bypassEnabled bool,
) (*VerificationService, error) {
	if profileRepo == nil {
		return nil, fmt.Errorf("user profile repository is required")
	}
	if codeRepo == nil {
		return nil, fmt.Errorf("verification code repository is required")
	}
	if whitelistRepo == nil {
		return nil, fmt.Errorf("whitelist repository is required")
	}
	if emailService == nil {
		return nil, fmt.Errorf("email service is required")
	}
	if verificationTTL <= 0 {
		verificationTTL = 15 * time.Minute
	}
	if resendCooldown <= 0 {
		resendCooldown = 60 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	return &VerificationService{
		profileRepo:     profileRepo,
		codeRepo:        codeRepo,
		whitelistRepo:   whitelistRepo,
		emailService:    emailService,
		verificationTTL: verificationTTL,
		resendCooldown:  resendCooldown,
		maxAttempts:     maxAttempts,
		codePepper:      codePepper,
		bypassEnabled:   bypassEnabled,
	}, nil
}

// Status возвращает состояние верификации для пары (user, auth_method).
// Отсутствие профиля — штатный ответ "не верифицирован", не ошибка.
func (s *VerificationService) Status(ctx context.Context, userID string) (*SchoolEmailStatus, error) {
	profile, err := s.profileRepo.GetByUserAndMethod(userID, entity.AuthMethodGpai)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &SchoolEmailStatus{Verified: false}, nil
		}
		return nil, err
	}
	return &SchoolEmailStatus{
		Verified:    profile.SchoolEmailVerified,
		SchoolEmail: profile.SchoolEmail,
	}, nil
}

// IssueCode выдает код верификации или автоверифицирует whitelist-email.
// Whitelist-путь имеет приоритет над форматной валидацией.
func (s *VerificationService) IssueCode(ctx context.Context, userID, schoolEmail string) (*IssueOutcome, error) {
	schoolEmail = emailrules.Normalize(schoolEmail)
	if schoolEmail == "" {
		return nil, fmt.Errorf("%w: school email is required", apperrors.ErrValidation)
	}

	// Whitelist: закрепляем email за пользователем и верифицируем без кода и письма.
	_, err := s.whitelistRepo.GetByEmail(schoolEmail)
	switch {
	case err == nil:
		if err := s.whitelistRepo.Claim(schoolEmail, userID); err != nil {
			// Конфликт (email занят другим аккаунтом) уходит наверх без изменений профиля.
			return nil, err
		}
		if err := s.profileRepo.UpsertVerified(userID, entity.AuthMethodGpai, schoolEmail); err != nil {
			return nil, fmt.Errorf("failed to auto-verify whitelisted email: %w", err)
		}
		log.Printf("[VerificationService] Whitelist-автоверификация для user=%s", userID)
		return &IssueOutcome{AutoVerified: true}, nil
	case errors.Is(err, apperrors.ErrNotFound):
		// Обычный поток ниже.
	default:
		return nil, err
	}

	if err := emailrules.ValidateSchoolEmail(schoolEmail); err != nil {
		return nil, err
	}

	now := time.Now()
	latest, err := s.codeRepo.GetLatestActive(userID, schoolEmail)
	if err == nil && latest != nil {
		if now.Before(latest.LastSentAt.Add(s.resendCooldown)) {
			return nil, fmt.Errorf("%w: please wait before requesting a new code", ErrVerificationResendCooldown)
		}
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}
	salt, err := generateVerificationSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification salt: %w", err)
	}

	record := &entity.VerificationCode{
		UserID:      userID,
		Email:       schoolEmail,
		CodeHash:    hashVerificationCode(code, salt, s.codePepper),
		CodeSalt:    salt,
		ExpiresAt:   now.Add(s.verificationTTL),
		MaxAttempts: s.maxAttempts,
		LastSentAt:  now,
	}
	if err := s.codeRepo.Create(record); err != nil {
		return nil, fmt.Errorf("failed to create verification record: %w", err)
	}

	if s.bypassEnabled {
		log.Printf("[VerificationService] [DEV] Код верификации для %s: %s (bypass: %s)", schoolEmail, code, BypassCode)
	}

	// Ошибка отправки письма — ошибка запроса: пользователь должен знать,
	// что код НЕ ушел, а не ждать письмо, которого не будет.
	idempotencyKey := fmt.Sprintf("email-verify:%s:%d", userID, record.ID)
	if err := s.emailService.SendVerificationCode(ctx, schoolEmail, code, idempotencyKey); err != nil {
		return nil, fmt.Errorf("%w: failed to send verification email: %v", apperrors.ErrUpstream, err)
	}

	return &IssueOutcome{AutoVerified: false}, nil
}

// RedeemCode погашает код и помечает школьную почту верифицированной.
// Любой неподходящий код (неверный, истекший, использованный, для другого
// email) сводится к одному ответу ErrInvalidOrExpiredCode.
func (s *VerificationService) RedeemCode(ctx context.Context, userID, schoolEmail, code string) error {
	schoolEmail = emailrules.Normalize(schoolEmail)
	code = strings.TrimSpace(code)
	if schoolEmail == "" || code == "" {
		return fmt.Errorf("%w: code and email are required", apperrors.ErrValidation)
	}

	if s.bypassEnabled && code == BypassCode {
		log.Printf("[VerificationService] [DEV] Использован bypass-код для user=%s", userID)
		return s.profileRepo.UpsertVerified(userID, entity.AuthMethodGpai, schoolEmail)
	}

	record, err := s.codeRepo.GetLatestActive(userID, schoolEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrInvalidOrExpiredCode
		}
		return err
	}

	now := time.Now()
	if record.IsConsumed() || record.IsExpired(now) {
		return ErrInvalidOrExpiredCode
	}
	if record.AttemptCount >= record.MaxAttempts {
		return ErrVerificationAttemptsExceeded
	}

	expectedHash := hashVerificationCode(code, record.CodeSalt, s.codePepper)
	if subtle.ConstantTimeCompare([]byte(expectedHash), []byte(record.CodeHash)) != 1 {
		if err := s.codeRepo.IncrementAttempts(record.ID); err != nil {
			log.Printf("[VerificationService] Не удалось увеличить счетчик попыток id=%d: %v", record.ID, err)
		}
		if record.AttemptCount+1 >= record.MaxAttempts {
			return ErrVerificationAttemptsExceeded
		}
		return ErrInvalidOrExpiredCode
	}

	// Сначала профиль, потом погашение кода: если упадет вторая запись,
	// код останется активным, но верификация уже состоялась — повторное
	// погашение безвредно. Обратный порядок съедал бы код без эффекта.
	if err := s.profileRepo.UpsertVerified(userID, entity.AuthMethodGpai, schoolEmail); err != nil {
		return fmt.Errorf("failed to mark school email verified: %w", err)
	}
	if err := s.codeRepo.MarkConsumed(record.ID); err != nil {
		log.Printf("[VerificationService] Код id=%d не помечен использованным: %v", record.ID, err)
	}
	return nil
}

func generateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func generateVerificationSalt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashVerificationCode(code, salt, pepper string) string {
	sum := sha256.Sum256([]byte(pepper + ":" + salt + ":" + code))
	return hex.EncodeToString(sum[:])
}
