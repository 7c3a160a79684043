package entity

import "time"

// VerificationCode stores hashed one-time codes for school email confirmation.
// Строки не удаляются — использованные коды остаются для аудита.
type VerificationCode struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       string     `gorm:"size:64;not null;index" json:"user_id"`
	Email        string     `gorm:"size:255;not null" json:"email"`
	CodeHash     string     `gorm:"size:64;not null" json:"-"`
	CodeSalt     string     `gorm:"size:64;not null" json:"-"`
	ExpiresAt    time.Time  `gorm:"not null;index" json:"expires_at"`
	AttemptCount int        `gorm:"not null;default:0" json:"attempt_count"`
	MaxAttempts  int        `gorm:"not null;default:5" json:"max_attempts"`
	LastSentAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"last_sent_at"`
	ConsumedAt   *time.Time `gorm:"index" json:"consumed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (VerificationCode) TableName() string {
	return "email_verification_codes"
}

func (c *VerificationCode) IsConsumed() bool {
	return c.ConsumedAt != nil
}

func (c *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
