package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/teamturing/competition-api/internal/domain/entity"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// WhitelistRepo реализует repository.WhitelistRepository
type WhitelistRepo struct {
	db *gorm.DB
}

func NewWhitelistRepo(db *gorm.DB) *WhitelistRepo {
	return &WhitelistRepo{db: db}
}

// GetByEmail возвращает whitelist-запись по email
func (r *WhitelistRepo) GetByEmail(email string) (*entity.WhitelistEntry, error) {
	var entry entity.WhitelistEntry
	err := r.db.Where("email = ?", email).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get whitelist entry: %w", err)
	}
	return &entry, nil
}

// Claim закрепляет whitelist-email за пользователем. Условие в UPDATE
// гарантирует атомарность: выигрывает ровно один claimant, повторный
// claim тем же пользователем проходит без ошибки.
func (r *WhitelistRepo) Claim(email, userID string) error {
	now := time.Now()
	res := r.db.Model(&entity.WhitelistEntry{}).
		Where("email = ? AND (claimed_by = '' OR claimed_by = ?)", email, userID).
		Updates(map[string]interface{}{
			"claimed_by": userID,
			"claimed_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to claim whitelist entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Либо записи нет, либо она занята другим пользователем — различаем.
		if _, err := r.GetByEmail(email); err != nil {
			return err
		}
		return fmt.Errorf("%w: whitelisted email already claimed by another account", apperrors.ErrConflict)
	}
	return nil
}

func (r *WhitelistRepo) Create(entry *entity.WhitelistEntry) error {
	return r.db.Create(entry).Error
}

func (r *WhitelistRepo) Delete(email string) error {
	return r.db.Where("email = ?", email).Delete(&entity.WhitelistEntry{}).Error
}

func (r *WhitelistRepo) List() ([]entity.WhitelistEntry, error) {
	var entries []entity.WhitelistEntry
	if err := r.db.Order("email ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list whitelist entries: %w", err)
	}
	return entries, nil
}
