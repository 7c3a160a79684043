package entity

import "time"

// ParticipantInfo — анкета участника. Одна строка на пользователя,
// наличие строки означает завершение второго шага онбординга.
type ParticipantInfo struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	FirstName    string    `gorm:"size:100;not null" json:"first_name"`
	LastName     string    `gorm:"size:100;not null" json:"last_name"`
	RewardEmail  string    `gorm:"size:255;not null" json:"reward_email"`
	Location     string    `gorm:"size:50;not null" json:"location"`
	College      string    `gorm:"size:255;not null" json:"college"`
	CollegeOther string    `gorm:"size:255;not null;default:''" json:"college_other,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ParticipantInfo) TableName() string {
	return "participant_info"
}
