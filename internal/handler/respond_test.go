package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/teamturing/competition-api/internal/service"
)

func TestRespondError_NotRegisteredIsForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	// Незарегистрированный участник — отказ в доступе, а не "не найдено"
	respondError(c, service.ErrNotRegistered)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "not_registered")
}
