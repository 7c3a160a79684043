package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teamturing/competition-api/internal/domain/entity"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// ============================================================================
// Моки для тестирования VerificationService
// ============================================================================

// MockUserProfileRepository реализует repository.UserProfileRepository
type MockUserProfileRepository struct {
	mock.Mock
}

func (m *MockUserProfileRepository) GetByUserAndMethod(userID, authMethod string) (*entity.UserProfile, error) {
	args := m.Called(userID, authMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *MockUserProfileRepository) UpsertVerified(userID, authMethod, schoolEmail string) error {
	args := m.Called(userID, authMethod, schoolEmail)
	return args.Error(0)
}

// MockVerificationCodeRepository реализует repository.VerificationCodeRepository
type MockVerificationCodeRepository struct {
	mock.Mock
}

func (m *MockVerificationCodeRepository) Create(code *entity.VerificationCode) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) GetLatestActive(userID, email string) (*entity.VerificationCode, error) {
	args := m.Called(userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VerificationCode), args.Error(1)
}

func (m *MockVerificationCodeRepository) IncrementAttempts(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) MarkConsumed(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockWhitelistRepository реализует repository.WhitelistRepository
type MockWhitelistRepository struct {
	mock.Mock
}

func (m *MockWhitelistRepository) GetByEmail(email string) (*entity.WhitelistEntry, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WhitelistEntry), args.Error(1)
}

func (m *MockWhitelistRepository) Claim(email, userID string) error {
	args := m.Called(email, userID)
	return args.Error(0)
}

func (m *MockWhitelistRepository) Create(entry *entity.WhitelistEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockWhitelistRepository) Delete(email string) error {
	args := m.Called(email)
	return args.Error(0)
}

func (m *MockWhitelistRepository) List() ([]entity.WhitelistEntry, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.WhitelistEntry), args.Error(1)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendVerificationCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	args := m.Called(ctx, toEmail, code, idempotencyKey)
	return args.Error(0)
}

const testPepper = "test-pepper"

func createTestVerificationService(
	t *testing.T,
	profileRepo *MockUserProfileRepository,
	codeRepo *MockVerificationCodeRepository,
	whitelistRepo *MockWhitelistRepository,
	emailService *MockEmailService,
	bypassEnabled bool,
) *VerificationService {
	t.Helper()
	svc, err := NewVerificationService(
		profileRepo, codeRepo, whitelistRepo, emailService,
		15*time.Minute, 60*time.Second, 5, testPepper, bypassEnabled,
	)
	require.NoError(t, err)
	return svc
}

// ============================================================================
// Status
// ============================================================================

func TestVerificationService_Status_NoProfile(t *testing.T) {
	profileRepo := new(MockUserProfileRepository)
	profileRepo.On("GetByUserAndMethod", "u1", entity.AuthMethodGpai).Return(nil, apperrors.ErrNotFound)

	svc := createTestVerificationService(t, profileRepo, new(MockVerificationCodeRepository), new(MockWhitelistRepository), new(MockEmailService), false)

	status, err := svc.Status(context.Background(), "u1")

	require.NoError(t, err, "Отсутствие профиля — не ошибка")
	assert.False(t, status.Verified)
	assert.Empty(t, status.SchoolEmail)
}

func TestVerificationService_Status_Verified(t *testing.T) {
	profileRepo := new(MockUserProfileRepository)
	profileRepo.On("GetByUserAndMethod", "u1", entity.AuthMethodGpai).Return(&entity.UserProfile{
		UserID:              "u1",
		AuthMethod:          entity.AuthMethodGpai,
		SchoolEmail:         "student@college.edu",
		SchoolEmailVerified: true,
	}, nil)

	svc := createTestVerificationService(t, profileRepo, new(MockVerificationCodeRepository), new(MockWhitelistRepository), new(MockEmailService), false)

	status, err := svc.Status(context.Background(), "u1")

	require.NoError(t, err)
	assert.True(t, status.Verified)
	assert.Equal(t, "student@college.edu", status.SchoolEmail)
}

// ============================================================================
// IssueCode
// ============================================================================

func TestVerificationService_IssueCode_WhitelistAutoVerify(t *testing.T) {
	profileRepo := new(MockUserProfileRepository)
	whitelistRepo := new(MockWhitelistRepository)
	emailService := new(MockEmailService)

	// Whitelist-путь: даже личный gmail проходит без кода и письма
	whitelistRepo.On("GetByEmail", "special@gmail.com").Return(&entity.WhitelistEntry{Email: "special@gmail.com"}, nil)
	whitelistRepo.On("Claim", "special@gmail.com", "u1").Return(nil)
	profileRepo.On("UpsertVerified", "u1", entity.AuthMethodGpai, "special@gmail.com").Return(nil)

	svc := createTestVerificationService(t, profileRepo, new(MockVerificationCodeRepository), whitelistRepo, emailService, false)

	outcome, err := svc.IssueCode(context.Background(), "u1", "Special@Gmail.com")

	require.NoError(t, err)
	assert.True(t, outcome.AutoVerified)
	emailService.AssertNotCalled(t, "SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	profileRepo.AssertExpectations(t)
	whitelistRepo.AssertExpectations(t)
}

func TestVerificationService_IssueCode_WhitelistClaimedByAnother(t *testing.T) {
	profileRepo := new(MockUserProfileRepository)
	whitelistRepo := new(MockWhitelistRepository)

	whitelistRepo.On("GetByEmail", "shared@college.edu").Return(&entity.WhitelistEntry{Email: "shared@college.edu", ClaimedBy: "other"}, nil)
	whitelistRepo.On("Claim", "shared@college.edu", "u1").Return(apperrors.ErrConflict)

	svc := createTestVerificationService(t, profileRepo, new(MockVerificationCodeRepository), whitelistRepo, new(MockEmailService), false)

	outcome, err := svc.IssueCode(context.Background(), "u1", "shared@college.edu")

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	// Конфликт claim не должен трогать профиль
	profileRepo.AssertNotCalled(t, "UpsertVerified", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerificationService_IssueCode_PersonalEmailRejected(t *testing.T) {
	whitelistRepo := new(MockWhitelistRepository)
	codeRepo := new(MockVerificationCodeRepository)
	whitelistRepo.On("GetByEmail", "user@gmail.com").Return(nil, apperrors.ErrNotFound)

	svc := createTestVerificationService(t, new(MockUserProfileRepository), codeRepo, whitelistRepo, new(MockEmailService), false)

	outcome, err := svc.IssueCode(context.Background(), "u1", "user@gmail.com")

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	codeRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestVerificationService_IssueCode_SendsCode(t *testing.T) {
	whitelistRepo := new(MockWhitelistRepository)
	codeRepo := new(MockVerificationCodeRepository)
	emailService := new(MockEmailService)

	whitelistRepo.On("GetByEmail", "student@college.edu").Return(nil, apperrors.ErrNotFound)
	codeRepo.On("GetLatestActive", "u1", "student@college.edu").Return(nil, apperrors.ErrNotFound)
	codeRepo.On("Create", mock.AnythingOfType("*entity.VerificationCode")).Run(func(args mock.Arguments) {
		record := args.Get(0).(*entity.VerificationCode)
		record.ID = 42
		assert.NotEmpty(t, record.CodeHash, "Код должен храниться в виде хеша")
		assert.NotEmpty(t, record.CodeSalt)
		assert.Equal(t, 5, record.MaxAttempts)
	}).Return(nil)
	emailService.On("SendVerificationCode", mock.Anything, "student@college.edu", mock.AnythingOfType("string"), "email-verify:u1:42").Return(nil)

	svc := createTestVerificationService(t, new(MockUserProfileRepository), codeRepo, whitelistRepo, emailService, false)

	outcome, err := svc.IssueCode(context.Background(), "u1", "student@college.edu")

	require.NoError(t, err)
	assert.False(t, outcome.AutoVerified)
	codeRepo.AssertExpectations(t)
	emailService.AssertExpectations(t)
}

func TestVerificationService_IssueCode_ResendCooldown(t *testing.T) {
	whitelistRepo := new(MockWhitelistRepository)
	codeRepo := new(MockVerificationCodeRepository)

	whitelistRepo.On("GetByEmail", "student@college.edu").Return(nil, apperrors.ErrNotFound)
	codeRepo.On("GetLatestActive", "u1", "student@college.edu").Return(&entity.VerificationCode{
		ID:         7,
		LastSentAt: time.Now().Add(-10 * time.Second),
		ExpiresAt:  time.Now().Add(10 * time.Minute),
	}, nil)

	svc := createTestVerificationService(t, new(MockUserProfileRepository), codeRepo, whitelistRepo, new(MockEmailService), false)

	outcome, err := svc.IssueCode(context.Background(), "u1", "student@college.edu")

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, ErrVerificationResendCooldown)
	codeRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestVerificationService_IssueCode_EmailSendFailure(t *testing.T) {
	whitelistRepo := new(MockWhitelistRepository)
	codeRepo := new(MockVerificationCodeRepository)
	emailService := new(MockEmailService)

	whitelistRepo.On("GetByEmail", "student@college.edu").Return(nil, apperrors.ErrNotFound)
	codeRepo.On("GetLatestActive", "u1", "student@college.edu").Return(nil, apperrors.ErrNotFound)
	codeRepo.On("Create", mock.AnythingOfType("*entity.VerificationCode")).Return(nil)
	emailService.On("SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	svc := createTestVerificationService(t, new(MockUserProfileRepository), codeRepo, whitelistRepo, emailService, false)

	outcome, err := svc.IssueCode(context.Background(), "u1", "student@college.edu")

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, apperrors.ErrUpstream, "Сбой отправки письма должен быть виден клиенту")
}

// ============================================================================
// RedeemCode
// ============================================================================

func activeCodeRecord(code string) *entity.VerificationCode {
	salt := "0123456789abcdef"
	return &entity.VerificationCode{
		ID:          11,
		UserID:      "u1",
		Email:       "student@college.edu",
		CodeHash:    hashVerificationCode(code, salt, testPepper),
		CodeSalt:    salt,
		ExpiresAt:   time.Now().Add(10 * time.Minute),
		MaxAttempts: 5,
		LastSentAt:  time.Now(),
	}
}

func TestVerificationService_RedeemCode_Success(t *testing.T) {
	profileRepo := new(MockUserProfileRepository)
	codeRepo := new(MockVerificationCodeRepository)

	codeRepo.On("GetLatestActive", "u1", "student@college.edu").Return(activeCodeRecord("123456"), nil)
	profileRepo.On("UpsertVerified", "u1", entity.AuthMethodGpai, "student@college.edu").Return(nil)
	codeRepo.On("MarkConsumed", uint(11)).Return(nil)

	svc := createTestVerificationService(t, profileRepo, codeRepo, new(MockWhitelistRepository), new(MockEmailService), false)

	err := svc.RedeemCode(context.Background(), "u1", "student@college.edu", "123456")

	require.NoError(t, err)
	profileRepo.AssertExpectations(t)
	codeRepo.AssertExpectations(t)
}

func TestVerificationService_RedeemCode_WrongCode(t *testing.T) {
	profileRepo := new(MockUserProfileRepository)
	codeRepo := new(MockVerificationCodeRepository)

	codeRepo.On("GetLatestActive", "u1", "student@college.edu").Return(activeCodeRecord("123456"), nil)
	codeRepo.On("IncrementAttempts", uint(11)).Return(nil)

	svc := createTestVerificationService(t, profileRepo, codeRepo, new(MockWhitelistRepository), new(MockEmailService), false)

	err := svc.RedeemCode(context.Background(), "u1", "student@college.edu", "654321")

	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
	profileRepo.AssertNotCalled(t, "UpsertVerified", mock.Anything, mock.Anything, mock.Anything)
	codeRepo.AssertExpectations(t)
}

func TestVerificationService_RedeemCode_Expired(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	record := activeCodeRecord("123456")
	record.ExpiresAt = time.Now().Add(-time.Minute)
	codeRepo.On("GetLatestActive", "u1", "student@college.edu").Return(record, nil)

	svc := createTestVerificationService(t, new(MockUserProfileRepository), codeRepo, new(MockWhitelistRepository), new(MockEmailService), false)

	err := svc.RedeemCode(context.Background(), "u1", "student@college.edu", "123456")

	// Истечение и неверный код неразличимы для клиента
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerificationService_RedeemCode_Replay(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	// Погашенный код не возвращается как активный
	codeRepo.On("GetLatestActive", "u1", "student@college.edu").Return(nil, apperrors.ErrNotFound)

	svc := createTestVerificationService(t, new(MockUserProfileRepository), codeRepo, new(MockWhitelistRepository), new(MockEmailService), false)

	err := svc.RedeemCode(context.Background(), "u1", "student@college.edu", "123456")

	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerificationService_RedeemCode_AttemptsExceeded(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	record := activeCodeRecord("123456")
	record.AttemptCount = 5
	codeRepo.On("GetLatestActive", "u1", "student@college.edu").Return(record, nil)

	svc := createTestVerificationService(t, new(MockUserProfileRepository), codeRepo, new(MockWhitelistRepository), new(MockEmailService), false)

	err := svc.RedeemCode(context.Background(), "u1", "student@college.edu", "123456")

	assert.ErrorIs(t, err, ErrVerificationAttemptsExceeded)
}

func TestVerificationService_RedeemCode_BypassEnabled(t *testing.T) {
	profileRepo := new(MockUserProfileRepository)
	codeRepo := new(MockVerificationCodeRepository)
	profileRepo.On("UpsertVerified", "u1", entity.AuthMethodGpai, "student@college.edu").Return(nil)

	svc := createTestVerificationService(t, profileRepo, codeRepo, new(MockWhitelistRepository), new(MockEmailService), true)

	err := svc.RedeemCode(context.Background(), "u1", "student@college.edu", BypassCode)

	require.NoError(t, err)
	codeRepo.AssertNotCalled(t, "GetLatestActive", mock.Anything, mock.Anything)
	profileRepo.AssertExpectations(t)
}

func TestVerificationService_RedeemCode_BypassDisabledInProduction(t *testing.T) {
	codeRepo := new(MockVerificationCodeRepository)
	codeRepo.On("GetLatestActive", "u1", "student@college.edu").Return(nil, apperrors.ErrNotFound)

	svc := createTestVerificationService(t, new(MockUserProfileRepository), codeRepo, new(MockWhitelistRepository), new(MockEmailService), false)

	err := svc.RedeemCode(context.Background(), "u1", "student@college.edu", BypassCode)

	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode, "Обходной код не работает при выключенном bypass")
}

func TestVerificationService_RedeemCode_MarkConsumedFailureStillVerifies(t *testing.T) {
	profileRepo := new(MockUserProfileRepository)
	codeRepo := new(MockVerificationCodeRepository)

	codeRepo.On("GetLatestActive", "u1", "student@college.edu").Return(activeCodeRecord("123456"), nil)
	profileRepo.On("UpsertVerified", "u1", entity.AuthMethodGpai, "student@college.edu").Return(nil)
	codeRepo.On("MarkConsumed", uint(11)).Return(assert.AnError)

	svc := createTestVerificationService(t, profileRepo, codeRepo, new(MockWhitelistRepository), new(MockEmailService), false)

	err := svc.RedeemCode(context.Background(), "u1", "student@college.edu", "123456")

	// Верификация состоялась, сбой пометки кода не откатывает её
	require.NoError(t, err)
}
