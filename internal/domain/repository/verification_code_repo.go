package repository

import "github.com/teamturing/competition-api/internal/domain/entity"

// VerificationCodeRepository persists one-time code attempts.
// Записи никогда не удаляются — только помечаются использованными.
type VerificationCodeRepository interface {
	Create(code *entity.VerificationCode) error
	GetLatestActive(userID, email string) (*entity.VerificationCode, error)
	IncrementAttempts(id uint) error
	MarkConsumed(id uint) error
}
