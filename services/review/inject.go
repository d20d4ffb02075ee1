// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package review

import (
	"context"
	"log/slog"
	"strings"
)

// Injection reconciliation: the model was asked for exactly N bugs, the
// reply may contain more, fewer, or a no-op. Policy:
//
//   - exact count: accept as-is.
//   - surplus: truncate to the first N in model order, never fail.
//   - shortfall: one bounded follow-up asking for the missing bugs; if
//     still short, accept the partial result and surface the achieved
//     count rather than failing the request.
//   - buggy code byte-identical to the original: one full regeneration;
//     if still identical, fail with ErrInjectionNoEffect.
//
// Line numbers are clamped into the final buggy code's line count.

// regenerateFunc runs one additional full injection attempt.
type regenerateFunc func(ctx context.Context) (InjectionPayload, error)

// shortfallFunc asks the model to add `missing` bugs to already-buggy
// code.
type shortfallFunc func(ctx context.Context, buggyCode string, missing int) (InjectionPayload, error)

// ReconcileInjection enforces the caller's requested bug count against
// what the model actually produced. Both retry callbacks are invoked at
// most once.
func ReconcileInjection(
	ctx context.Context,
	payload InjectionPayload,
	originalCode string,
	requested int,
	regenerate regenerateFunc,
	shortfall shortfallFunc,
) (InjectionPayload, error) {
	// Degenerate generation: the model changed nothing.
	if requested >= 1 && payload.BuggyCode == originalCode {
		slog.Warn("injection produced unchanged code, regenerating once")
		fresh, err := regenerate(ctx)
		if err != nil {
			return InjectionPayload{}, err
		}
		if fresh.BuggyCode == originalCode {
			return InjectionPayload{}, ErrInjectionNoEffect
		}
		payload = fresh
	}

	if len(payload.Bugs) > requested {
		slog.Debug("truncating surplus bug records",
			"produced", len(payload.Bugs), "requested", requested)
		payload.Bugs = payload.Bugs[:requested]
	}

	if len(payload.Bugs) < requested {
		missing := requested - len(payload.Bugs)
		slog.Warn("injection shortfall, requesting missing bugs",
			"produced", len(payload.Bugs), "missing", missing)
		extra, err := shortfall(ctx, payload.BuggyCode, missing)
		if err != nil {
			// Partial results are acceptable; the achieved count is
			// surfaced to the caller instead of an error.
			slog.Warn("shortfall retry failed, accepting partial result", "error", err)
		} else {
			payload = mergeShortfall(payload, extra, originalCode, requested)
		}
	}

	clampLineNumbers(&payload)
	return payload, nil
}

// mergeShortfall folds a shortfall reply into the base payload. The new
// buggy code is adopted when it is a real modification; the new bug
// records are appended and the total re-truncated to the request.
func mergeShortfall(base, extra InjectionPayload, originalCode string, requested int) InjectionPayload {
	if strings.TrimSpace(extra.BuggyCode) != "" && extra.BuggyCode != originalCode {
		base.BuggyCode = extra.BuggyCode
	}
	base.Bugs = append(base.Bugs, extra.Bugs...)
	if len(base.Bugs) > requested {
		base.Bugs = base.Bugs[:requested]
	}
	base.Dropped += extra.Dropped
	return base
}

// clampLineNumbers forces every bug record's line number into the line
// count of the buggy code it describes.
func clampLineNumbers(payload *InjectionPayload) {
	lines := lineCount(payload.BuggyCode)
	for i := range payload.Bugs {
		if payload.Bugs[i].LineNumber < 1 {
			payload.Bugs[i].LineNumber = 1
		}
		if payload.Bugs[i].LineNumber > lines {
			payload.Bugs[i].LineNumber = lines
		}
	}
}

func lineCount(code string) int {
	if code == "" {
		return 1
	}
	return strings.Count(code, "\n") + 1
}
