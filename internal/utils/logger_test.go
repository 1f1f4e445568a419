package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, "production", "info")

	logger.Debug("hidden")
	logger.With("component", "progress").Info("saved", "client_id", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "saved", entry["msg"])
	assert.Equal(t, "progress", entry["component"])
	assert.Equal(t, "abc", entry["client_id"])
}

func TestNewLogger_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, "development", "debug")

	logger.LogError(errors.New("boom"), "store failed")
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestLogRequest_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, "development", "info")

	logger.LogRequest("GET", "/health", 200, "1ms")
	logger.LogRequest("GET", "/missing", 404, "1ms")
	logger.LogRequest("POST", "/boom", 503, "1ms")

	out := buf.String()
	assert.Contains(t, out, "level=INFO msg=\"HTTP Request\" method=GET path=/health")
	assert.Contains(t, out, "level=WARN msg=\"HTTP Request\" method=GET path=/missing")
	assert.Contains(t, out, "level=ERROR msg=\"HTTP Request\" method=POST path=/boom")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("Debug").String())
	assert.Equal(t, "WARN", parseLevel("warning").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "INFO", parseLevel("verbose").String())
}

func TestToSlogLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.Same(t, logger.(*SlogLogger).Slog(), ToSlogLogger(logger))
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetHeader(RequestIDHeader))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	minted := w.Header().Get(RequestIDHeader)
	assert.Len(t, minted, 36)
	assert.Equal(t, minted, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-42", w.Body.String())
}
