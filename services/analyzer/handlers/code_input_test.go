// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the code-input endpoint

package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/datatypes"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/store"
)

func TestHandleCodeInput_StoresSnippets(t *testing.T) {
	snippets := store.New(16, time.Minute)
	router := newRouter()
	router.POST("/rag/code-input", HandleCodeInput(snippets, nil))

	w := performRequest(router, http.MethodPost, "/rag/code-input", datatypes.CodeInputRequest{
		CodeSnippets: []string{"def a(): pass", "def b(): pass"},
		SessionID:    "session-1",
	})

	mustStatus(t, w, http.StatusOK)
	resp := decodeBody[datatypes.CodeInputResponse](t, w)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 2, resp.SnippetsLoaded)
	assert.Equal(t, "session-1", resp.SessionID)

	stored, err := snippets.Retrieve("session-1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestHandleCodeInput_GeneratesSessionID(t *testing.T) {
	snippets := store.New(16, time.Minute)
	router := newRouter()
	router.POST("/rag/code-input", HandleCodeInput(snippets, nil))

	w := performRequest(router, http.MethodPost, "/rag/code-input", datatypes.CodeInputRequest{
		CodeSnippets: []string{"x = 1"},
	})

	mustStatus(t, w, http.StatusOK)
	resp := decodeBody[datatypes.CodeInputResponse](t, w)
	require.NotEmpty(t, resp.SessionID)
	_, err := uuid.Parse(resp.SessionID)
	assert.NoError(t, err, "generated session id is a UUID")

	_, err = snippets.Retrieve(resp.SessionID)
	assert.NoError(t, err)
}

func TestHandleCodeInput_EmptyListRejectedBeforeStore(t *testing.T) {
	snippets := store.New(16, time.Minute)
	router := newRouter()
	router.POST("/rag/code-input", HandleCodeInput(snippets, nil))

	w := performRequest(router, http.MethodPost, "/rag/code-input", map[string]any{
		"code_snippets": []string{},
		"session_id":    "session-1",
	})

	mustStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 0, snippets.Sessions(), "rejected request must not touch the store")
}

func TestHandleCodeInput_MalformedBody(t *testing.T) {
	router := newRouter()
	router.POST("/rag/code-input", HandleCodeInput(store.New(16, time.Minute), nil))

	w := performRequest(router, http.MethodPost, "/rag/code-input", map[string]any{
		"code_snippets": "not a list",
	})

	mustStatus(t, w, http.StatusBadRequest)
}

func TestHandleCodeInput_LastWriteWins(t *testing.T) {
	snippets := store.New(16, time.Minute)
	router := newRouter()
	router.POST("/rag/code-input", HandleCodeInput(snippets, nil))

	performRequest(router, http.MethodPost, "/rag/code-input", datatypes.CodeInputRequest{
		CodeSnippets: []string{"old one", "old two"},
		SessionID:    "session-1",
	})
	performRequest(router, http.MethodPost, "/rag/code-input", datatypes.CodeInputRequest{
		CodeSnippets: []string{"new"},
		SessionID:    "session-1",
	})

	stored, err := snippets.Retrieve("session-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, stored)
}
