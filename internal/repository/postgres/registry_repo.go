package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/teamturing/competition-api/internal/domain/repository"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// RegistryRepo реализует repository.ParticipantRegistry поверх основной
// базы участников соревнования. Подключение отдельное и только на чтение —
// это чужая база, никаких записей в нее не делаем.
type RegistryRepo struct {
	db *gorm.DB
}

func NewRegistryRepo(db *gorm.DB) *RegistryRepo {
	return &RegistryRepo{db: db}
}

// GetByEmail возвращает данные участника из базы соревнования
func (r *RegistryRepo) GetByEmail(email string) (*repository.RegistryUser, error) {
	var user repository.RegistryUser
	err := r.db.Raw(
		`SELECT id, email, "isGuest" AS is_guest, "createdAt"::text AS created_at
		 FROM users WHERE LOWER(email) = LOWER(?) LIMIT 1`,
		email,
	).Scan(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: registry lookup failed: %v", apperrors.ErrUpstream, err)
	}
	if user.ID == "" {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}
