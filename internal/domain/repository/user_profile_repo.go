package repository

import (
	"github.com/teamturing/competition-api/internal/domain/entity"
)

// UserProfileRepository определяет методы для работы с профилями верификации.
type UserProfileRepository interface {
	// GetByUserAndMethod возвращает профиль по паре (user_id, auth_method).
	// Отсутствие строки — apperrors.ErrNotFound, это штатный случай для новых пользователей.
	GetByUserAndMethod(userID, authMethod string) (*entity.UserProfile, error)

	// UpsertVerified создает или обновляет профиль как верифицированный
	// (ключ конфликта — пара user_id+auth_method, дубликаты не создаются).
	UpsertVerified(userID, authMethod, schoolEmail string) error
}
