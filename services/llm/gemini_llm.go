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
	"fmt"
	"log/slog"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient builds a Gemini backend for a single request's key.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.5-pro"
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

// Generate implements the LLMClient interface. The analyzer prompts all
// demand JSON, so the response MIME type is pinned to application/json.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	slog.Debug("Generating text via Gemini", "model", g.model)
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if params.Temperature != nil {
		cfg.Temperature = params.Temperature
	}
	if params.TopP != nil {
		cfg.TopP = params.TopP
	}
	if params.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*params.MaxTokens)
	}
	if len(params.Stop) > 0 {
		cfg.StopSequences = params.Stop
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, cfg)
	if err != nil {
		slog.Error("Gemini API call failed", "error", err)
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		slog.Warn("Gemini returned no candidates or empty content")
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
