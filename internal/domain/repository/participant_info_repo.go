package repository

import "github.com/teamturing/competition-api/internal/domain/entity"

// ParticipantInfoRepository определяет методы для работы с анкетами участников.
type ParticipantInfoRepository interface {
	// GetByUserID возвращает анкету или apperrors.ErrNotFound для новых пользователей.
	GetByUserID(userID string) (*entity.ParticipantInfo, error)

	// Upsert создает или перезаписывает анкету (ключ конфликта — user_id).
	Upsert(info *entity.ParticipantInfo) error

	// List возвращает анкеты постранично (для административного экспорта).
	List(limit, offset int) ([]entity.ParticipantInfo, error)
}
