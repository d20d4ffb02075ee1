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
	"errors"
	"fmt"
)

// Pipeline failure taxonomy. Every error here is caught at the
// coordinator boundary and rendered into a response envelope; none of
// them ever crosses the transport unencoded.
var (
	// ErrNoCode means no code was supplied inline and none was stored
	// for the session. Detected before any network call.
	ErrNoCode = errors.New("no code provided; supply code in the request or load it via code-input first")

	// ErrInjectionNoEffect means the model returned code byte-identical
	// to the original on both the initial attempt and the retry.
	ErrInjectionNoEffect = errors.New("bug injection produced no change to the code after retry")
)

// ParseError means the model's output could not be salvaged into the
// expected structure, including after the schema-reminder retry.
type ParseError struct {
	Op      string // operation being parsed: analyze, metrics, inject
	Excerpt string // leading slice of the raw output, for logs
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable model output for %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// newParseError trims the raw output to a loggable excerpt.
func newParseError(op, raw string, err error) *ParseError {
	const maxExcerpt = 200
	if len(raw) > maxExcerpt {
		raw = raw[:maxExcerpt] + "..."
	}
	return &ParseError{Op: op, Excerpt: raw, Err: err}
}
