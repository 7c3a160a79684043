package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/teamturing/competition-api/internal/domain/repository"
	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// MaxSubmissionSize — предельный размер файла заявки (20 МБ).
const MaxSubmissionSize = 20 * 1024 * 1024

var allowedSubmissionTypes = map[string]string{
	".pdf":  "application/pdf",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// SubmissionFile — описание загруженного файла.
type SubmissionFile struct {
	Name string `json:"name"`
}

// SubmissionService управляет файлом заявки пользователя.
// Инвариант: у пользователя не более одного файла — новая загрузка
// замещает предыдущую, а не добавляется к ней.
type SubmissionService struct {
	store repository.SubmissionStore
	now   func() time.Time
}

// NewSubmissionService создает сервис заявок и возвращает ошибку при проблемах
func NewSubmissionService(store repository.SubmissionStore) (*SubmissionService, error) {
	if store == nil {
		return nil, fmt.Errorf("submission store is required")
	}
	return &SubmissionService{store: store, now: time.Now}, nil
}

// List возвращает файлы пользователя (ноль или один при соблюдении инварианта).
func (s *SubmissionService) List(ctx context.Context, userID string) ([]SubmissionFile, error) {
	names, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	files := make([]SubmissionFile, 0, len(names))
	for _, n := range names {
		files = append(files, SubmissionFile{Name: n})
	}
	return files, nil
}

// Upload валидирует и сохраняет файл заявки, удаляя предыдущие версии.
// Валидация идет до любых обращений к хранилищу: невалидный запрос
// не трогает уже загруженный файл.
func (s *SubmissionService) Upload(ctx context.Context, userID, filename string, size int64, body io.Reader) (*SubmissionFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedSubmissionTypes[ext]
	if !ok {
		return nil, ErrFileTypeNotAllowed
	}
	if size <= 0 || size > MaxSubmissionSize {
		return nil, ErrFileTooLarge
	}

	existing, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if err := s.store.Delete(ctx, userID, existing); err != nil {
			return nil, err
		}
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitizeFilename(filename))
	if err := s.store.Put(ctx, userID, name, contentType, body, size); err != nil {
		return nil, err
	}
	return &SubmissionFile{Name: name}, nil
}

// Delete удаляет файл пользователя по имени.
func (s *SubmissionService) Delete(ctx context.Context, userID, name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: invalid file name", apperrors.ErrValidation)
	}
	return s.store.Delete(ctx, userID, []string{name})
}

// sanitizeFilename оставляет от клиентского имени только базовую часть
// и заменяет символы вне безопасного набора.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
