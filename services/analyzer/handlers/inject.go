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
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/datatypes"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/observability"
)

var injectTracer = otel.Tracer("aleutian.analyzer.handlers")

// HandleInjectBugs injects a requested number of bugs into code.
// Out-of-range severity_level and num_bugs are clamped, not rejected;
// the achieved bug count is reported in total_bugs_injected.
func HandleInjectBugs(pipeline Pipeline, metrics *observability.AnalyzerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := injectTracer.Start(c.Request.Context(), "HandleInjectBugs")
		defer span.End()

		var req datatypes.InjectBugsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to bind inject-bugs request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		span.SetAttributes(
			attribute.String("bug_type", req.EffectiveBugType()),
			attribute.Int("num_bugs", req.EffectiveNumBugs()),
			attribute.Int("severity_level", req.EffectiveSeverityLevel()),
		)

		start := time.Now()
		resp := pipeline.InjectBugs(ctx, req)
		if metrics != nil {
			metrics.ObserveRequest("inject", resp.Status, time.Since(start).Seconds())
		}
		if resp.Status != "success" {
			span.SetStatus(codes.Error, resp.ErrorMessage)
			slog.Warn("inject-bugs returned error envelope", "error_message", resp.ErrorMessage)
		} else {
			slog.Info("inject-bugs completed",
				"requested", req.EffectiveNumBugs(),
				"total_bugs_injected", resp.TotalBugsInjected)
		}
		c.JSON(http.StatusOK, resp)
	}
}
