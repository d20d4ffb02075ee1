// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/datatypes"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/observability"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/store"
)

var inputTracer = otel.Tracer("aleutian.analyzer.handlers")

// HandleCodeInput stores code snippets for later analysis. Validation
// failures (an empty snippet list included) are rejected before any
// store mutation. When the caller sends no session_id a fresh one is
// generated and returned so follow-up requests can target it.
func HandleCodeInput(snippets *store.SnippetStore, metrics *observability.AnalyzerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := inputTracer.Start(c.Request.Context(), "HandleCodeInput")
		defer span.End()

		var req datatypes.CodeInputRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to bind code-input request", "error", err)
			if metrics != nil {
				metrics.RequestsTotal.WithLabelValues("code_input", "rejected").Inc()
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "code_snippets is required and must contain at least one snippet"})
			return
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = uuid.New().String()
			slog.Info("No session_id provided, creating a new one", "session_id", sessionID)
		}
		span.SetAttributes(
			attribute.String("session_id", sessionID),
			attribute.Int("snippet_count", len(req.CodeSnippets)),
		)

		count := snippets.Store(sessionID, req.CodeSnippets)
		if metrics != nil {
			metrics.RequestsTotal.WithLabelValues("code_input", "success").Inc()
		}
		c.JSON(http.StatusOK, datatypes.CodeInputResponse{
			Status:         "success",
			Message:        fmt.Sprintf("Loaded %d code snippet(s)", count),
			SnippetsLoaded: count,
			SessionID:      sessionID,
		})
	}
}
