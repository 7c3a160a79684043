package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamturing/competition-api/internal/service"
)

// UploadHandler обрабатывает файл заявки (третий шаг онбординга).
type UploadHandler struct {
	submissions *service.SubmissionService
}

// NewUploadHandler создает новый обработчик загрузки
func NewUploadHandler(submissions *service.SubmissionService) *UploadHandler {
	return &UploadHandler{submissions: submissions}
}

// DeleteFileRequest представляет запрос на удаление файла
type DeleteFileRequest struct {
	Name string `json:"name" binding:"required"`
}

// Upload принимает multipart-файл и сохраняет его как заявку пользователя,
// замещая предыдущую версию.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// Жесткий предел на размер тела: ридер обрежет запрос раньше,
	// чем файл сверх лимита окажется в памяти.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxSubmissionSize+1024*1024)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required", "error_type": "invalid_request"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file", "error_type": "invalid_request"})
		return
	}
	defer file.Close()

	saved, err := h.submissions.Upload(c.Request.Context(), userID, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "file": saved})
}

// List возвращает файлы заявки пользователя.
func (h *UploadHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	files, err := h.submissions.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// Delete удаляет файл заявки по имени.
func (h *UploadHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req DeleteFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File name is required", "error_type": "invalid_request"})
		return
	}

	if err := h.submissions.Delete(c.Request.Context(), userID, req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
