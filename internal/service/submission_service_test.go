package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestSubmissionService(t *testing.T, store *MockSubmissionStore) *SubmissionService {
	t.Helper()
	svc, err := NewSubmissionService(store)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func TestSubmissionService_Upload_ReplacesPrevious(t *testing.T) {
	store := new(MockSubmissionStore)
	store.On("List", mock.Anything, "u1").Return([]string{"1600000000000-old.pdf"}, nil)
	store.On("Delete", mock.Anything, "u1", []string{"1600000000000-old.pdf"}).Return(nil)
	store.On("Put", mock.Anything, "u1", "1700000000000-deck.pdf", "application/pdf", mock.Anything, int64(1024)).Return(nil)

	svc := createTestSubmissionService(t, store)

	saved, err := svc.Upload(context.Background(), "u1", "deck.pdf", 1024, strings.NewReader("content"))

	require.NoError(t, err)
	assert.Equal(t, "1700000000000-deck.pdf", saved.Name)
	// Старый файл удален до записи нового: файлов никогда не два
	store.AssertExpectations(t)
}

func TestSubmissionService_Upload_FirstFile(t *testing.T) {
	store := new(MockSubmissionStore)
	store.On("List", mock.Anything, "u1").Return([]string{}, nil)
	store.On("Put", mock.Anything, "u1", "1700000000000-deck.pptx",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		mock.Anything, int64(2048)).Return(nil)

	svc := createTestSubmissionService(t, store)

	saved, err := svc.Upload(context.Background(), "u1", "deck.pptx", 2048, strings.NewReader("content"))

	require.NoError(t, err)
	assert.Equal(t, "1700000000000-deck.pptx", saved.Name)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_Upload_RejectsBadExtension(t *testing.T) {
	store := new(MockSubmissionStore)

	svc := createTestSubmissionService(t, store)

	saved, err := svc.Upload(context.Background(), "u1", "malware.exe", 100, strings.NewReader("x"))

	assert.Nil(t, saved)
	assert.ErrorIs(t, err, ErrFileTypeNotAllowed)
	// Невалидный запрос не трогает хранилище
	store.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestSubmissionService_Upload_RejectsOversized(t *testing.T) {
	store := new(MockSubmissionStore)

	svc := createTestSubmissionService(t, store)

	saved, err := svc.Upload(context.Background(), "u1", "deck.pdf", MaxSubmissionSize+1, strings.NewReader("x"))

	assert.Nil(t, saved)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	store.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestSubmissionService_Upload_SanitizesFilename(t *testing.T) {
	store := new(MockSubmissionStore)
	store.On("List", mock.Anything, "u1").Return([]string{}, nil)
	store.On("Put", mock.Anything, "u1", "1700000000000-my_final_deck__v2_.pdf", "application/pdf",
		mock.Anything, int64(512)).Return(nil)

	svc := createTestSubmissionService(t, store)

	saved, err := svc.Upload(context.Background(), "u1", "my final deck (v2).pdf", 512, strings.NewReader("x"))

	require.NoError(t, err)
	assert.NotContains(t, saved.Name, " ")
	store.AssertExpectations(t)
}

func TestSubmissionService_Delete_RejectsPathTraversal(t *testing.T) {
	store := new(MockSubmissionStore)

	svc := createTestSubmissionService(t, store)

	err := svc.Delete(context.Background(), "u1", "../other-user/deck.pdf")

	assert.Error(t, err)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_List(t *testing.T) {
	store := new(MockSubmissionStore)
	store.On("List", mock.Anything, "u1").Return([]string{"1700000000000-deck.pdf"}, nil)

	svc := createTestSubmissionService(t, store)

	files, err := svc.List(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "1700000000000-deck.pdf", files[0].Name)
}
