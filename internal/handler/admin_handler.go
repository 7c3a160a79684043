package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamturing/competition-api/internal/service"
)

// AdminHandler обслуживает административные операции.
type AdminHandler struct {
	export *service.ExportService
}

// NewAdminHandler создает новый административный обработчик
func NewAdminHandler(export *service.ExportService) *AdminHandler {
	return &AdminHandler{export: export}
}

// ExportParticipants выгружает всех участников в xlsx.
func (h *AdminHandler) ExportParticipants(c *gin.Context) {
	filename := fmt.Sprintf("participants-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.export.WriteXLSX(c.Request.Context(), c.Writer); err != nil {
		// Заголовки уже могли уйти клиенту, статус менять поздно.
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.Status(http.StatusOK)
}
