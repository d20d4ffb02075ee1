// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package review implements the generation-and-validation pipeline:
// deterministic prompts from arbitrary user code, a model call through
// the gateway, strict parsing of the untrusted reply, deterministic
// metric aggregation, and injection reconciliation.
//
// # Description
//
// The external model is an unreliable oracle: it may time out, wrap its
// reply in prose or fences, drift from the schema, or ignore the
// requested bug count. Each failure mode has exactly one bounded repair
// here (attempt, validate, retry once with a hint, fail), so latency and
// cost stay predictable.
//
// The Coordinator is the only entry point. Every operation returns a
// fully-populated response envelope; no error leaves this package
// unencoded.
package review

import (
	"context"
	"errors"
	"log/slog"

	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/datatypes"
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/store"
	"github.com/AleutianAI/CodeAnalyzer/services/llm"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Completer abstracts the model gateway so tests can substitute a mock.
type Completer interface {
	Complete(ctx context.Context, prompt, apiKey string) (string, error)
}

// Recorder receives pipeline observability events. A nil Recorder is
// valid and drops everything.
type Recorder interface {
	ModelRetry(operation, reason string)
	RecordsDropped(operation string, count int)
}

// Coordinator wires the pipeline components together per operation.
type Coordinator struct {
	gateway    Completer
	snippets   *store.SnippetStore
	defaultKey *DefaultKey
	recorder   Recorder
}

// NewCoordinator builds a Coordinator. recorder may be nil.
func NewCoordinator(gateway Completer, snippets *store.SnippetStore, defaultKey *DefaultKey, recorder Recorder) *Coordinator {
	return &Coordinator{
		gateway:    gateway,
		snippets:   snippets,
		defaultKey: defaultKey,
		recorder:   recorder,
	}
}

// =============================================================================
// Operations
// =============================================================================

// Analyze runs the issue analysis operation and always returns a
// complete envelope.
func (c *Coordinator) Analyze(ctx context.Context, req datatypes.AnalyzeCodeRequest) datatypes.AnalyzeCodeResponse {
	issues, err := c.generateIssues(ctx, "analyze", req.Code, req.SessionID, req.APIKey, BuildAnalyzePrompt)
	if err != nil {
		return datatypes.AnalyzeCodeResponse{
			Status:       StatusError,
			Issues:       []datatypes.Issue{},
			ErrorMessage: envelopeMessage(err),
		}
	}
	return datatypes.AnalyzeCodeResponse{
		Status:      StatusSuccess,
		Issues:      issues,
		TotalIssues: len(issues),
	}
}

// Metrics runs the metrics operation: the same validated issue set, then
// a purely local aggregation. No additional model calls happen after
// validation.
func (c *Coordinator) Metrics(ctx context.Context, req datatypes.CodeMetricsRequest) datatypes.CodeMetricsResponse {
	issues, err := c.generateIssues(ctx, "metrics", req.Code, req.SessionID, req.APIKey, BuildMetricsPrompt)
	if err != nil {
		return datatypes.CodeMetricsResponse{
			Status:       StatusError,
			ErrorMessage: envelopeMessage(err),
		}
	}
	metrics, dist := Aggregate(issues)
	return datatypes.CodeMetricsResponse{
		Status:            StatusSuccess,
		SummaryMetrics:    metrics,
		IssueDistribution: dist,
	}
}

// InjectBugs runs the bug-injection operation, reconciling the model's
// output against the requested count.
func (c *Coordinator) InjectBugs(ctx context.Context, req datatypes.InjectBugsRequest) datatypes.InjectBugsResponse {
	errEnvelope := func(err error) datatypes.InjectBugsResponse {
		return datatypes.InjectBugsResponse{
			Status:       StatusError,
			BugsInjected: []datatypes.BugRecord{},
			ErrorMessage: envelopeMessage(err),
		}
	}

	code, err := c.resolveCode(req.Code, req.SessionID)
	if err != nil {
		return errEnvelope(err)
	}
	key, err := ResolveAPIKey(req.APIKey, c.defaultKey)
	if err != nil {
		return errEnvelope(err)
	}

	bugType := req.EffectiveBugType()
	severity := req.EffectiveSeverityLevel()
	numBugs := req.EffectiveNumBugs()

	prompt, err := BuildInjectPrompt(code, bugType, severity, numBugs)
	if err != nil {
		return errEnvelope(err)
	}

	payload, err := c.injectOnce(ctx, prompt, key, true)
	if err != nil {
		return errEnvelope(err)
	}

	regenerate := func(ctx context.Context) (InjectionPayload, error) {
		c.retry("inject", "no_effect")
		return c.injectOnce(ctx, prompt, key, false)
	}
	shortfall := func(ctx context.Context, buggyCode string, missing int) (InjectionPayload, error) {
		c.retry("inject", "shortfall")
		sp, perr := BuildShortfallPrompt(buggyCode, bugType, severity, missing)
		if perr != nil {
			return InjectionPayload{}, perr
		}
		return c.injectOnce(ctx, sp, key, false)
	}

	payload, err = ReconcileInjection(ctx, payload, code, numBugs, regenerate, shortfall)
	if err != nil {
		return errEnvelope(err)
	}
	c.dropped("inject", payload.Dropped)

	if len(payload.Bugs) < numBugs {
		slog.Warn("injection completed below requested count",
			"requested", numBugs, "achieved", len(payload.Bugs))
	}
	return datatypes.InjectBugsResponse{
		Status:            StatusSuccess,
		BuggyCode:         payload.BuggyCode,
		BugsInjected:      payload.Bugs,
		TotalBugsInjected: len(payload.Bugs),
	}
}

// =============================================================================
// Pipeline internals
// =============================================================================

// resolveCode applies the code source precedence: inline code wins over
// the session's stored snippets.
func (c *Coordinator) resolveCode(inline, sessionID string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	code, err := c.snippets.Code(sessionID)
	if err != nil {
		return "", ErrNoCode
	}
	return code, nil
}

// completeOnce performs one gateway attempt with a single bounded retry
// on upstream failure.
func (c *Coordinator) completeOnce(ctx context.Context, op, prompt, key string) (string, error) {
	raw, err := c.gateway.Complete(ctx, prompt, key)
	if err == nil {
		return raw, nil
	}
	var upstream *llm.UpstreamError
	if !errors.As(err, &upstream) {
		return "", err
	}
	c.retry(op, "upstream")
	slog.Warn("model call failed, retrying once", "operation", op, "error", err)
	return c.gateway.Complete(ctx, prompt, key)
}

// generateIssues runs the analyze/metrics front half: resolve code and
// key, render the prompt, call the model, and validate the reply. On a
// structural parse failure the model is re-prompted once with a schema
// reminder.
func (c *Coordinator) generateIssues(
	ctx context.Context,
	op, inlineCode, sessionID, requestKey string,
	buildPrompt func(string) (string, error),
) ([]datatypes.Issue, error) {
	code, err := c.resolveCode(inlineCode, sessionID)
	if err != nil {
		return nil, err
	}
	key, err := ResolveAPIKey(requestKey, c.defaultKey)
	if err != nil {
		return nil, err
	}
	prompt, err := buildPrompt(code)
	if err != nil {
		return nil, err
	}

	raw, err := c.completeOnce(ctx, op, prompt, key)
	if err != nil {
		return nil, err
	}

	issues, droppedCount, perr := ParseIssues(raw)
	if perr != nil {
		c.retry(op, "parse")
		slog.Warn("structural parse failed, re-prompting with schema reminder", "operation", op)
		raw, err = c.gateway.Complete(ctx, WithSchemaReminder(prompt), key)
		if err != nil {
			return nil, err
		}
		issues, droppedCount, perr = ParseIssues(raw)
		if perr != nil {
			return nil, perr
		}
	}
	c.dropped(op, droppedCount)
	return issues, nil
}

// injectOnce performs one injection generation. When allowHint is true a
// structural parse failure triggers the single schema-reminder retry.
func (c *Coordinator) injectOnce(ctx context.Context, prompt, key string, allowHint bool) (InjectionPayload, error) {
	raw, err := c.completeOnce(ctx, "inject", prompt, key)
	if err != nil {
		return InjectionPayload{}, err
	}
	payload, perr := ParseInjection(raw)
	if perr == nil {
		return payload, nil
	}
	if !allowHint {
		return InjectionPayload{}, perr
	}
	c.retry("inject", "parse")
	slog.Warn("structural parse failed, re-prompting with schema reminder", "operation", "inject")
	raw, err = c.gateway.Complete(ctx, WithSchemaReminder(prompt), key)
	if err != nil {
		return InjectionPayload{}, err
	}
	return ParseInjection(raw)
}

func (c *Coordinator) retry(op, reason string) {
	if c.recorder != nil {
		c.recorder.ModelRetry(op, reason)
	}
}

func (c *Coordinator) dropped(op string, count int) {
	if count > 0 && c.recorder != nil {
		c.recorder.RecordsDropped(op, count)
	}
}

// envelopeMessage renders a pipeline error into the human-readable
// error_message field. Upstream details are summarized, not leaked.
func envelopeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoCode):
		return "No code provided. Please provide code in the request or load code using the code-input endpoint"
	case errors.Is(err, llm.ErrMissingAPIKey):
		return "API_KEY is required. Provide it in the request or set the API_KEY environment variable"
	case errors.Is(err, ErrInjectionNoEffect):
		return "Bug injection did not modify the code; please try again"
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return "Model returned output that could not be parsed; please try again"
	}
	var upstream *llm.UpstreamError
	if errors.As(err, &upstream) {
		return "Model request failed or timed out; please try again"
	}
	return err.Error()
}
