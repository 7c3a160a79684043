package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teamturing/competition-api/internal/domain/entity"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// UserProfileRepo реализует repository.UserProfileRepository
type UserProfileRepo struct {
	db *gorm.DB
}

// NewUserProfileRepo создает новый репозиторий профилей верификации
func NewUserProfileRepo(db *gorm.DB) *UserProfileRepo {
	return &UserProfileRepo{db: db}
}

// GetByUserAndMethod возвращает профиль по паре (user_id, auth_method)
func (r *UserProfileRepo) GetByUserAndMethod(userID, authMethod string) (*entity.UserProfile, error) {
	var profile entity.UserProfile
	err := r.db.
		Where("user_id = ? AND auth_method = ?", userID, authMethod).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &profile, nil
}

// UpsertVerified создает или обновляет профиль как верифицированный.
// Ключ конфликта — (user_id, auth_method), дубликаты не создаются.
func (r *UserProfileRepo) UpsertVerified(userID, authMethod, schoolEmail string) error {
	now := time.Now()
	profile := entity.UserProfile{
		UserID:                userID,
		AuthMethod:            authMethod,
		SchoolEmail:           schoolEmail,
		SchoolEmailVerified:   true,
		SchoolEmailVerifiedAt: &now,
		UpdatedAt:             now,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "auth_method"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"school_email":             schoolEmail,
			"school_email_verified":    true,
			"school_email_verified_at": now,
			"updated_at":               now,
		}),
	}).Create(&profile).Error
	if err != nil {
		return fmt.Errorf("failed to upsert verified profile: %w", err)
	}
	return nil
}
