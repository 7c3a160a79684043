package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teamturing/competition-api/internal/domain/repository"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// MockParticipantRegistry реализует repository.ParticipantRegistry
type MockParticipantRegistry struct {
	mock.Mock
}

func (m *MockParticipantRegistry) GetByEmail(email string) (*repository.RegistryUser, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.RegistryUser), args.Error(1)
}

func newTestRegistryService(t *testing.T, registry *MockParticipantRegistry) *RegistryService {
	t.Helper()
	svc, err := NewRegistryService(registry)
	require.NoError(t, err)
	return svc
}

func TestVerifyRegistered_ReturnsRegistryUser(t *testing.T) {
	registry := new(MockParticipantRegistry)
	registry.On("GetByEmail", "student@college.edu").Return(
		&repository.RegistryUser{ID: "r1", Email: "student@college.edu", IsGuest: false}, nil)
	svc := newTestRegistryService(t, registry)

	user, err := svc.VerifyRegistered(context.Background(), "  Student@College.EDU  ")

	require.NoError(t, err)
	assert.Equal(t, "r1", user.ID)
	registry.AssertExpectations(t)
}

func TestVerifyRegistered_NotFound(t *testing.T) {
	registry := new(MockParticipantRegistry)
	registry.On("GetByEmail", "unknown@college.edu").Return(nil, apperrors.ErrNotFound)
	svc := newTestRegistryService(t, registry)

	user, err := svc.VerifyRegistered(context.Background(), "unknown@college.edu")

	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Nil(t, user)
}

func TestVerifyRegistered_EmptyEmail(t *testing.T) {
	registry := new(MockParticipantRegistry)
	svc := newTestRegistryService(t, registry)

	_, err := svc.VerifyRegistered(context.Background(), "   ")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	registry.AssertNotCalled(t, "GetByEmail", mock.Anything)
}

func TestVerifyRegistered_UpstreamErrorPassesThrough(t *testing.T) {
	registry := new(MockParticipantRegistry)
	registry.On("GetByEmail", "student@college.edu").Return(nil, apperrors.ErrUpstream)
	svc := newTestRegistryService(t, registry)

	_, err := svc.VerifyRegistered(context.Background(), "student@college.edu")

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.NotErrorIs(t, err, ErrNotRegistered)
}
