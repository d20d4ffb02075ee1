// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers contains the gin handlers for the analyzer endpoints.
//
// The four analysis endpoints share one rule: once a request binds, the
// transport status is 200 and every outcome (including pipeline
// failures) is reported inside the response envelope's status and
// error_message fields. Only malformed request bodies get a 4xx.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServiceName identifies this service in health responses and traces.
const ServiceName = "code-analyzer"

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
	})
}

// Root points callers at the API.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Code Reviewer and Bug Generator API",
		"docs":    "/rag",
	})
}
