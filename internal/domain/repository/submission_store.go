package repository

import (
	"context"
	"io"
)

// SubmissionStore — объектное хранилище файлов заявок.
// Ключи имеют вид {user_id}/{имя файла}; одна "папка" на пользователя.
type SubmissionStore interface {
	// List возвращает имена файлов в пространстве пользователя (без префикса user_id/).
	List(ctx context.Context, userID string) ([]string, error)

	// Put загружает файл под ключ {userID}/{name}.
	Put(ctx context.Context, userID, name, contentType string, body io.Reader, size int64) error

	// Delete удаляет перечисленные файлы пользователя. Отсутствующие имена не считаются ошибкой.
	Delete(ctx context.Context, userID string, names []string) error
}
