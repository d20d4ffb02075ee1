// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/AleutianAI/CodeAnalyzer/pkg/logging"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/middleware"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/observability"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/routes"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/store"
	"github.com/AleutianAI/CodeAnalyzer/services/llm"
	"github.com/AleutianAI/CodeAnalyzer/services/review"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "localhost:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("code-analyzer")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// snippetTTL reads SNIPPET_TTL_MINUTES with a 30 minute default.
func snippetTTL() time.Duration {
	if v := os.Getenv("SNIPPET_TTL_MINUTES"); v != "" {
		if mins, err := strconv.Atoi(v); err == nil && mins > 0 {
			return time.Duration(mins) * time.Minute
		}
		slog.Warn("invalid SNIPPET_TTL_MINUTES, using default", "value", v)
	}
	return 30 * time.Minute
}

func main() {
	// .env is optional; real deployments set the environment directly.
	loadedEnv := godotenv.Load() == nil

	logging.Setup(logging.Config{
		Service: "code-analyzer",
		Level:   logging.LevelFromEnv(),
		JSON:    true,
	})
	if loadedEnv {
		slog.Info("loaded configuration from .env")
	}

	port := os.Getenv("ANALYZER_PORT")
	if port == "" {
		port = "8000"
	}

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	defaultKey := review.NewDefaultKey(os.Getenv("API_KEY"))
	if _, ok := defaultKey.Reveal(); !ok {
		slog.Warn("API_KEY not set; requests must supply their own api_key")
	}

	gateway := llm.NewGatewayFromEnv()
	slog.Info("Configured the LLM gateway", "backend", gateway.Backend())

	snippets := store.New(1024, snippetTTL())
	metrics := observability.NewAnalyzerMetrics(prometheus.DefaultRegisterer, snippets.Sessions)
	coordinator := review.NewCoordinator(gateway, snippets, defaultKey, metrics)

	router := gin.Default()
	router.Use(otelgin.Middleware("code-analyzer"))
	router.Use(middleware.RequestLogger())

	routes.SetupRoutes(router, coordinator, snippets, metrics)

	log.Println("Starting the code-analyzer server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
