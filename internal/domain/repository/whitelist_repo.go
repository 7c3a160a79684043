package repository

import "github.com/teamturing/competition-api/internal/domain/entity"

// WhitelistRepository определяет методы для работы со списком авто-верифицируемых email.
type WhitelistRepository interface {
	// GetByEmail возвращает запись или apperrors.ErrNotFound, если email не в списке.
	GetByEmail(email string) (*entity.WhitelistEntry, error)

	// Claim закрепляет whitelist-email за пользователем. Атомарно: если запись уже
	// закреплена за другим пользователем, возвращает apperrors.ErrConflict.
	// Повторный claim тем же пользователем — no-op без ошибки.
	Claim(email, userID string) error

	Create(entry *entity.WhitelistEntry) error
	Delete(email string) error
	List() ([]entity.WhitelistEntry, error)
}
