package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamturing/competition-api/internal/domain/repository"
	"github.com/teamturing/competition-api/internal/pkg/emailrules"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// RegistryService отвечает на вопрос "зарегистрирован ли этот email
// в основной базе соревнования". Используется на шаге входа, чтобы
// не отправлять незарегистрированных на форму логина провайдера.
type RegistryService struct {
	registry repository.ParticipantRegistry
}

// NewRegistryService создает сервис проверки регистрации и возвращает ошибку при проблемах
func NewRegistryService(registry repository.ParticipantRegistry) (*RegistryService, error) {
	if registry == nil {
		return nil, fmt.Errorf("participant registry is required")
	}
	return &RegistryService{registry: registry}, nil
}

// VerifyRegistered проверяет email по базе соревнования и возвращает
// данные участника. Незарегистрированный email — ожидаемый исход,
// а не сбой: возвращается ErrNotRegistered с подсказкой, что делать дальше.
func (s *RegistryService) VerifyRegistered(ctx context.Context, email string) (*repository.RegistryUser, error) {
	email = emailrules.Normalize(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}

	user, err := s.registry.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return user, nil
}
