package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/xuri/excelize/v2"

	"github.com/teamturing/competition-api/internal/domain/entity"
	"github.com/teamturing/competition-api/internal/domain/repository"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

const exportPageSize = 500

// ExportService собирает административный выгруз участников в xlsx:
// анкета, статус верификации школьной почты и наличие файла заявки.
type ExportService struct {
	participantRepo repository.ParticipantInfoRepository
	profileRepo     repository.UserProfileRepository
	store           repository.SubmissionStore
}

// NewExportService создает сервис экспорта и возвращает ошибку при проблемах
func NewExportService(
	participantRepo repository.ParticipantInfoRepository,
	profileRepo repository.UserProfileRepository,
	store repository.SubmissionStore,
) (*ExportService, error) {
	if participantRepo == nil {
		return nil, fmt.Errorf("participant info repository is required")
	}
	if profileRepo == nil {
		return nil, fmt.Errorf("user profile repository is required")
	}
	if store == nil {
		return nil, fmt.Errorf("submission store is required")
	}
	return &ExportService{
		participantRepo: participantRepo,
		profileRepo:     profileRepo,
		store:           store,
	}, nil
}

// WriteXLSX пишет выгруз всех участников в w.
func (s *ExportService) WriteXLSX(ctx context.Context, w io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[ExportService] Ошибка закрытия xlsx: %v", err)
		}
	}()

	const sheet = "Participants"
	f.SetSheetName("Sheet1", sheet)

	header := []interface{}{
		"User ID", "First Name", "Last Name", "Reward Email",
		"Location", "College", "College (Other)",
		"School Email", "Email Verified", "Submission File", "Updated At",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	row := 2
	for offset := 0; ; offset += exportPageSize {
		page, err := s.participantRepo.List(exportPageSize, offset)
		if err != nil {
			return err
		}
		for i := range page {
			if err := s.writeParticipantRow(ctx, f, sheet, row, &page[i]); err != nil {
				return err
			}
			row++
		}
		if len(page) < exportPageSize {
			break
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func (s *ExportService) writeParticipantRow(ctx context.Context, f *excelize.File, sheet string, row int, info *entity.ParticipantInfo) error {
	schoolEmail := ""
	verified := false
	profile, err := s.profileRepo.GetByUserAndMethod(info.UserID, entity.AuthMethodGpai)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if profile != nil {
		schoolEmail = profile.SchoolEmail
		verified = profile.SchoolEmailVerified
	}

	submission := ""
	files, err := s.store.List(ctx, info.UserID)
	if err != nil {
		// Хранилище недоступно — выгруз остается полезным и без этой колонки.
		log.Printf("[ExportService] Не удалось получить файлы user=%s: %v", info.UserID, err)
	} else if len(files) > 0 {
		submission = files[0]
	}

	cells := []interface{}{
		info.UserID, info.FirstName, info.LastName, info.RewardEmail,
		info.Location, info.College, info.CollegeOther,
		schoolEmail, verified, submission,
		info.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
