// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/handlers"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/observability"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/store"
)

func SetupRoutes(router *gin.Engine, pipeline handlers.Pipeline, snippets *store.SnippetStore,
	metrics *observability.AnalyzerMetrics) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/", handlers.Root)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Analysis endpoints
	rag := router.Group("/rag")
	{
		rag.POST("/code-input", handlers.HandleCodeInput(snippets, metrics))
		rag.POST("/analyze-code", handlers.HandleAnalyzeCode(pipeline, metrics))
		rag.POST("/code-metrics", handlers.HandleCodeMetrics(pipeline, metrics))
		rag.POST("/inject-bugs", handlers.HandleInjectBugs(pipeline, metrics))
	}
}
