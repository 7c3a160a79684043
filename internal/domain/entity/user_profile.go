package entity

import "time"

// Методы аутентификации. Провайдерская сессия и любые альтернативные способы
// входа помечаются разными тегами — профили между ними не смешиваются.
const (
	AuthMethodGpai = "gpai"
)

// UserProfile хранит статус подтверждения школьной почты.
// Одна строка на пару (user_id, auth_method); обновляется через upsert.
type UserProfile struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                string     `gorm:"size:64;not null;uniqueIndex:idx_user_profiles_user_method" json:"user_id"`
	AuthMethod            string     `gorm:"size:20;not null;uniqueIndex:idx_user_profiles_user_method" json:"auth_method"`
	SchoolEmail           string     `gorm:"size:255;not null;default:''" json:"school_email"`
	SchoolEmailVerified   bool       `gorm:"not null;default:false" json:"school_email_verified"`
	SchoolEmailVerifiedAt *time.Time `json:"school_email_verified_at,omitempty"`
	CreatedAt             time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (UserProfile) TableName() string {
	return "user_profiles"
}
