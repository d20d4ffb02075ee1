// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the request logging middleware

package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRequestLogger_LogsLine(t *testing.T) {
	buf := captureLogs(t)

	router := gin.New()
	router.Use(RequestLogger())
	router.POST("/rag/analyze-code", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	body := strings.NewReader(`{"code": "x = 1", "api_key": "sk-secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/rag/analyze-code", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	line := buf.String()
	assert.Contains(t, line, `"path":"/rag/analyze-code"`)
	assert.Contains(t, line, `"method":"POST"`)
	assert.Contains(t, line, `"status":200`)
}

func TestRequestLogger_NeverLogsBody(t *testing.T) {
	buf := captureLogs(t)

	router := gin.New()
	router.Use(RequestLogger())
	router.POST("/rag/analyze-code", func(c *gin.Context) { c.Status(http.StatusOK) })

	body := strings.NewReader(`{"code": "secret_code_snippet", "api_key": "sk-secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/rag/analyze-code", body)
	router.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.NotContains(t, line, "secret_code_snippet")
	assert.NotContains(t, line, "sk-secret")
}

func TestRequestLogger_ServerErrorLevel(t *testing.T) {
	buf := captureLogs(t)

	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}
