// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Shared test fixtures for the handler tests

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/datatypes"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// performRequest runs a JSON request through router and returns the
// recorder.
func performRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// mockPipeline returns canned envelopes and records the requests it saw.
type mockPipeline struct {
	analyzeResp datatypes.AnalyzeCodeResponse
	metricsResp datatypes.CodeMetricsResponse
	injectResp  datatypes.InjectBugsResponse

	analyzeReqs []datatypes.AnalyzeCodeRequest
	metricsReqs []datatypes.CodeMetricsRequest
	injectReqs  []datatypes.InjectBugsRequest
}

func (m *mockPipeline) Analyze(_ context.Context, req datatypes.AnalyzeCodeRequest) datatypes.AnalyzeCodeResponse {
	m.analyzeReqs = append(m.analyzeReqs, req)
	return m.analyzeResp
}

func (m *mockPipeline) Metrics(_ context.Context, req datatypes.CodeMetricsRequest) datatypes.CodeMetricsResponse {
	m.metricsReqs = append(m.metricsReqs, req)
	return m.metricsResp
}

func (m *mockPipeline) InjectBugs(_ context.Context, req datatypes.InjectBugsRequest) datatypes.InjectBugsResponse {
	m.injectReqs = append(m.injectReqs, req)
	return m.injectResp
}

var _ Pipeline = (*mockPipeline)(nil)

func newRouter() *gin.Engine {
	return gin.New()
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
