package entity

import "time"

// WhitelistEntry — email, для которого верификация проходит автоматически.
// Уникальность по email гарантирует не больше одного претендента:
// после первого claim поле ClaimedBy фиксирует владельца.
type WhitelistEntry struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	ClaimedBy string     `gorm:"size:64;not null;default:''" json:"claimed_by,omitempty"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (WhitelistEntry) TableName() string {
	return "whitelist_emails"
}

// IsClaimedBy возвращает true, если запись уже закреплена за этим пользователем.
func (w *WhitelistEntry) IsClaimedBy(userID string) bool {
	return w.ClaimedBy == userID
}
