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
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/datatypes"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/observability"
)

var metricsTracer = otel.Tracer("aleutian.analyzer.handlers")

// HandleCodeMetrics derives summary metrics and issue distribution for
// code. Same envelope rule as analyze-code: HTTP 200 with failures
// encoded in the envelope, zero-valued payloads on error.
func HandleCodeMetrics(pipeline Pipeline, metrics *observability.AnalyzerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := metricsTracer.Start(c.Request.Context(), "HandleCodeMetrics")
		defer span.End()

		var req datatypes.CodeMetricsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to bind code-metrics request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		start := time.Now()
		resp := pipeline.Metrics(ctx, req)
		if metrics != nil {
			metrics.ObserveRequest("metrics", resp.Status, time.Since(start).Seconds())
		}
		if resp.Status != "success" {
			span.SetStatus(codes.Error, resp.ErrorMessage)
			slog.Warn("code-metrics returned error envelope", "error_message", resp.ErrorMessage)
		} else {
			slog.Info("code-metrics completed",
				"code_quality_score", resp.SummaryMetrics.CodeQualityScore,
				"security_rating", resp.SummaryMetrics.SecurityRating)
		}
		c.JSON(http.StatusOK, resp)
	}
}
