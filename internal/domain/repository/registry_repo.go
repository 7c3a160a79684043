package repository

// RegistryUser — данные участника из базы соревнования (read-only источник).
type RegistryUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	IsGuest   bool   `json:"isGuest"`
	CreatedAt string `json:"createdAt"`
}

// ParticipantRegistry проверяет регистрацию в основной базе соревнования.
// Доступ только на чтение; подключение конфигурируется отдельным DSN.
type ParticipantRegistry interface {
	// GetByEmail возвращает данные участника (сравнение email без учета
	// регистра) или apperrors.ErrNotFound.
	GetByEmail(email string) (*RegistryUser, error)
}
