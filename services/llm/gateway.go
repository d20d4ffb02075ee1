// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// ErrMissingAPIKey is returned before any network call when no key is
// resolvable for a request.
var ErrMissingAPIKey = errors.New("no API key available for model call")

// UpstreamError wraps a transport failure or timeout from a backend.
// The caller owns retries; the gateway performs exactly one network call
// per Complete invocation.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("model call failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

const defaultCallTimeout = 60 * time.Second

// Gateway sends rendered prompts to the configured model backend.
//
// A fresh backend client is built per call because the API key is
// per-request state. Each call runs under its own timeout derived from
// the request context; cancelling one call never affects another.
type Gateway struct {
	backend string
	model   string
	timeout time.Duration

	// newClient is swapped out by tests.
	newClient func(ctx context.Context, apiKey string) (LLMClient, error)
}

// NewGateway builds a gateway for the named backend ("gemini" or
// "openai"). Unknown backends fall back to gemini, matching the service
// the analyzer replaced.
func NewGateway(backend, model string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	g := &Gateway{backend: backend, model: model, timeout: timeout}
	switch backend {
	case "openai":
		g.newClient = func(_ context.Context, apiKey string) (LLMClient, error) {
			return NewOpenAIClient(apiKey, model)
		}
	case "gemini", "":
		g.backend = "gemini"
		g.newClient = func(ctx context.Context, apiKey string) (LLMClient, error) {
			return NewGeminiClient(ctx, apiKey, model)
		}
	default:
		slog.Warn("LLM_BACKEND_TYPE not recognized, defaulting to gemini", "backend", backend)
		g.backend = "gemini"
		g.newClient = func(ctx context.Context, apiKey string) (LLMClient, error) {
			return NewGeminiClient(ctx, apiKey, model)
		}
	}
	return g
}

// NewGatewayFromEnv reads LLM_BACKEND_TYPE, LLM_MODEL_NAME and
// LLM_CALL_TIMEOUT_SECONDS.
func NewGatewayFromEnv() *Gateway {
	timeout := defaultCallTimeout
	if v := os.Getenv("LLM_CALL_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		} else {
			slog.Warn("invalid LLM_CALL_TIMEOUT_SECONDS, using default", "value", v)
		}
	}
	return NewGateway(os.Getenv("LLM_BACKEND_TYPE"), os.Getenv("LLM_MODEL_NAME"), timeout)
}

// Backend reports the active backend name.
func (g *Gateway) Backend() string { return g.backend }

// Complete sends prompt to the model and returns its raw text. The key
// must already be resolved; an empty key fails with ErrMissingAPIKey
// before any network activity. Transport failures and timeouts surface
// as *UpstreamError.
func (g *Gateway) Complete(ctx context.Context, prompt, apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := g.newClient(cctx, apiKey)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}

	start := time.Now()
	raw, err := client.Generate(cctx, prompt, GenerationParams{})
	if err != nil {
		slog.Error("model call failed", "backend", g.backend, "elapsed", time.Since(start), "error", err)
		return "", &UpstreamError{Err: err}
	}
	slog.Debug("model call completed", "backend", g.backend, "elapsed", time.Since(start), "bytes", len(raw))
	return raw, nil
}
