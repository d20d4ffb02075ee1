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
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/datatypes"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/observability"
)

var analyzeTracer = otel.Tracer("aleutian.analyzer.handlers")

// Pipeline is the review coordinator surface the handlers call. It is an
// interface so handler tests can mock the whole pipeline.
type Pipeline interface {
	Analyze(ctx context.Context, req datatypes.AnalyzeCodeRequest) datatypes.AnalyzeCodeResponse
	Metrics(ctx context.Context, req datatypes.CodeMetricsRequest) datatypes.CodeMetricsResponse
	InjectBugs(ctx context.Context, req datatypes.InjectBugsRequest) datatypes.InjectBugsResponse
}

// HandleAnalyzeCode analyzes code for issues. The response is always a
// complete envelope with HTTP 200; pipeline failures are reported in the
// envelope's status and error_message.
func HandleAnalyzeCode(pipeline Pipeline, metrics *observability.AnalyzerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := analyzeTracer.Start(c.Request.Context(), "HandleAnalyzeCode")
		defer span.End()

		var req datatypes.AnalyzeCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to bind analyze-code request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		start := time.Now()
		resp := pipeline.Analyze(ctx, req)
		if metrics != nil {
			metrics.ObserveRequest("analyze", resp.Status, time.Since(start).Seconds())
		}
		if resp.Status != "success" {
			span.SetStatus(codes.Error, resp.ErrorMessage)
			slog.Warn("analyze-code returned error envelope", "error_message", resp.ErrorMessage)
		} else {
			slog.Info("analyze-code completed", "total_issues", resp.TotalIssues)
		}
		c.JSON(http.StatusOK, resp)
	}
}
