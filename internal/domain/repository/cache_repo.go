package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем (Redis).
// Используется для серверного хранения промежуточного состояния онбординга.
type CacheRepository interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string) (string, error)
	Delete(key string) error
}
