package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется, когда сессия отсутствует или не подтверждена провайдером.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, whitelist-email уже занят другим аккаунтом).
	ErrConflict = errors.New("resource state conflict")

	// ErrUpstream используется, когда внешний сервис (identity provider, хранилище, почта)
	// недоступен или ответил ошибкой. Ретраев нет — ошибка отдается наверх как "try again later".
	ErrUpstream = errors.New("upstream service unavailable")
)
