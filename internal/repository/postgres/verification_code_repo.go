package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/teamturing/competition-api/internal/domain/entity"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// VerificationCodeRepo реализует repository.VerificationCodeRepository
type VerificationCodeRepo struct {
	db *gorm.DB
}

func NewVerificationCodeRepo(db *gorm.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{db: db}
}

func (r *VerificationCodeRepo) Create(code *entity.VerificationCode) error {
	return r.db.Create(code).Error
}

// GetLatestActive возвращает последний непогашенный код для пары (user, email).
func (r *VerificationCodeRepo) GetLatestActive(userID, email string) (*entity.VerificationCode, error) {
	var code entity.VerificationCode
	err := r.db.
		Where("user_id = ? AND email = ? AND consumed_at IS NULL", userID, email).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest active verification code: %w", err)
	}
	return &code, nil
}

func (r *VerificationCodeRepo) IncrementAttempts(id uint) error {
	return r.db.Model(&entity.VerificationCode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempt_count": gorm.Expr("attempt_count + 1"),
		}).Error
}

func (r *VerificationCodeRepo) MarkConsumed(id uint) error {
	now := time.Now()
	return r.db.Model(&entity.VerificationCode{}).
		Where("id = ?", id).
		Update("consumed_at", now).Error
}
