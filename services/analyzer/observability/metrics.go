// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the analyzer.
//
// # Description
//
// Metrics cover the request surface (counts and latency per operation)
// and the pipeline's repair machinery (model retries by reason, dropped
// records). They are exposed on /metrics for Prometheus scraping.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal
// locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "codeanalyzer"

// AnalyzerMetrics holds all Prometheus metrics for the analyzer service.
// Initialize once at startup via NewAnalyzerMetrics.
type AnalyzerMetrics struct {
	// RequestsTotal counts analysis requests.
	// Labels: operation (code_input, analyze, metrics, inject), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures end-to-end request latency.
	// Labels: operation, status
	RequestDurationSeconds *prometheus.HistogramVec

	// ModelRetriesTotal counts bounded pipeline retries.
	// Labels: operation, reason (upstream, parse, shortfall, no_effect)
	ModelRetriesTotal *prometheus.CounterVec

	// DroppedRecordsTotal counts model records rejected by validation.
	// Labels: operation
	DroppedRecordsTotal *prometheus.CounterVec

	// SnippetSessions tracks live snippet store sessions.
	SnippetSessions prometheus.GaugeFunc
}

// NewAnalyzerMetrics registers the analyzer metrics with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in
// tests. sessionCount may be nil when no snippet store is wired.
func NewAnalyzerMetrics(reg prometheus.Registerer, sessionCount func() int) *AnalyzerMetrics {
	factory := promauto.With(reg)

	m := &AnalyzerMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Analysis requests by operation and envelope status.",
		}, []string{"operation", "status"}),

		RequestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "End-to-end request latency by operation and status.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation", "status"}),

		ModelRetriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "model_retries_total",
			Help:      "Bounded pipeline retries by operation and reason.",
		}, []string{"operation", "reason"}),

		DroppedRecordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dropped_records_total",
			Help:      "Model records rejected by per-record validation.",
		}, []string{"operation"}),
	}

	if sessionCount != nil {
		m.SnippetSessions = factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "snippet_sessions",
			Help:      "Live snippet store sessions.",
		}, func() float64 { return float64(sessionCount()) })
	}

	return m
}

// ObserveRequest records one completed request.
func (m *AnalyzerMetrics) ObserveRequest(operation, status string, seconds float64) {
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDurationSeconds.WithLabelValues(operation, status).Observe(seconds)
}

// ModelRetry implements the review pipeline's Recorder interface.
func (m *AnalyzerMetrics) ModelRetry(operation, reason string) {
	m.ModelRetriesTotal.WithLabelValues(operation, reason).Inc()
}

// RecordsDropped implements the review pipeline's Recorder interface.
func (m *AnalyzerMetrics) RecordsDropped(operation string, count int) {
	m.DroppedRecordsTotal.WithLabelValues(operation).Add(float64(count))
}
