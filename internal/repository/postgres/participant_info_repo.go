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

// ParticipantInfoRepo реализует repository.ParticipantInfoRepository
type ParticipantInfoRepo struct {
	db *gorm.DB
}

// NewParticipantInfoRepo создает новый репозиторий анкет участников
func NewParticipantInfoRepo(db *gorm.DB) *ParticipantInfoRepo {
	return &ParticipantInfoRepo{db: db}
}

// GetByUserID возвращает анкету участника по user_id
func (r *ParticipantInfoRepo) GetByUserID(userID string) (*entity.ParticipantInfo, error) {
	var info entity.ParticipantInfo
	err := r.db.Where("user_id = ?", userID).First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get participant info: %w", err)
	}
	return &info, nil
}

// Upsert создает или перезаписывает анкету участника (ключ конфликта — user_id)
func (r *ParticipantInfoRepo) Upsert(info *entity.ParticipantInfo) error {
	now := time.Now()
	info.UpdatedAt = now

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"first_name":    info.FirstName,
			"last_name":     info.LastName,
			"reward_email":  info.RewardEmail,
			"location":      info.Location,
			"college":       info.College,
			"college_other": info.CollegeOther,
			"updated_at":    now,
		}),
	}).Create(info).Error
	if err != nil {
		return fmt.Errorf("failed to upsert participant info: %w", err)
	}
	return nil
}

// List возвращает анкеты постранично, в порядке создания
func (r *ParticipantInfoRepo) List(limit, offset int) ([]entity.ParticipantInfo, error) {
	var infos []entity.ParticipantInfo
	err := r.db.Order("created_at ASC").Limit(limit).Offset(offset).Find(&infos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participant info: %w", err)
	}
	return infos, nil
}
