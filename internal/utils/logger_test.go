package utils

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/intervention-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(buf *bytes.Buffer, seen *context.Context) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), LoggerMiddleware(NewSlogLogger(NewLogger("production", buf))))
	router.GET("/plans/:id", func(c *gin.Context) {
		*seen = c.Request.Context()
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var buf bytes.Buffer
	var seen context.Context
	router := newTestRouter(&buf, &seen)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plans/7", nil))

	requestID := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(requestID)
	require.NoError(t, err)
	assert.Equal(t, requestID, seen.Value(services.RequestIDKey))
	assert.Contains(t, buf.String(), requestID)
	assert.Contains(t, buf.String(), `"path":"/plans/:id"`)
	assert.Contains(t, buf.String(), `"status_code":204`)
}

func TestRequestID_KeepsCallerValue(t *testing.T) {
	var buf bytes.Buffer
	var seen context.Context
	router := newTestRouter(&buf, &seen)

	req := httptest.NewRequest(http.MethodGet, "/plans/7", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", seen.Value(services.RequestIDKey))
}

func TestLogRequest_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(NewLogger("production", &buf))

	logger.LogRequest(http.MethodGet, "/health", http.StatusOK, 0)
	assert.Contains(t, buf.String(), `"level":"INFO"`)

	buf.Reset()
	logger.LogRequest(http.MethodGet, "/plans/1", http.StatusNotFound, 0)
	assert.Contains(t, buf.String(), `"level":"WARN"`)

	buf.Reset()
	logger.LogRequest(http.MethodPost, "/responses", http.StatusServiceUnavailable, 0)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}
