package service

import "errors"

// Ошибки доменных потоков. Хендлеры мапят их на стабильные error_type в JSON.
var (
	// ErrInvalidOrExpiredCode — единый ответ на любой неподходящий код:
	// неверный, истекший, уже использованный, для другого email.
	// Причины не различаются, чтобы не давать материала для перебора.
	ErrInvalidOrExpiredCode = errors.New("invalid_or_expired_code")

	// ErrVerificationAttemptsExceeded — исчерпан лимит попыток по текущему коду.
	ErrVerificationAttemptsExceeded = errors.New("verification_attempts_exceeded")

	// ErrVerificationResendCooldown — повторная отправка кода запрошена слишком рано.
	ErrVerificationResendCooldown = errors.New("verification_resend_cooldown")

	// ErrNotRegistered — email отсутствует в базе участников соревнования.
	ErrNotRegistered = errors.New("not_registered")

	// ErrFileTooLarge и ErrFileTypeNotAllowed — валидация файла заявки.
	ErrFileTooLarge       = errors.New("file_too_large")
	ErrFileTypeNotAllowed = errors.New("file_type_not_allowed")
)
