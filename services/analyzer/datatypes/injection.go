// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// =============================================================================
// Bug Injection Types
// =============================================================================

// Injection parameter bounds. Out-of-range values are clamped, not
// rejected, so a request never fails on a parameter the service can fix.
const (
	MinSeverityLevel = 1
	MaxSeverityLevel = 5
	MinNumBugs       = 1
	MaxNumBugs       = 10

	DefaultBugType       = "Security Vulnerability"
	DefaultSeverityLevel = 5
	DefaultNumBugs       = 2
)

// BugRecord describes one injected bug. LineNumber always falls within
// the line count of the buggy code it accompanies.
type BugRecord struct {
	Type        string `json:"type"`
	LineNumber  int    `json:"line_number"`
	Description string `json:"description"`
}

// InjectBugsRequest asks for deliberate defects in a code snippet.
//
// SeverityLevel and NumBugs are pointers so an explicit zero can be told
// apart from an absent field: absent means "use the default", while an
// out-of-range value is clamped into bounds.
type InjectBugsRequest struct {
	Code          string `json:"code"`
	BugType       string `json:"bug_type"`
	SeverityLevel *int   `json:"severity_level"`
	NumBugs       *int   `json:"num_bugs"`
	APIKey        string `json:"api_key"`
	SessionID     string `json:"session_id"`
}

// EffectiveBugType returns the requested bug type or the default.
func (r *InjectBugsRequest) EffectiveBugType() string {
	if r.BugType == "" {
		return DefaultBugType
	}
	return r.BugType
}

// EffectiveSeverityLevel returns the requested severity clamped to
// [MinSeverityLevel, MaxSeverityLevel], defaulting when absent.
func (r *InjectBugsRequest) EffectiveSeverityLevel() int {
	if r.SeverityLevel == nil {
		return DefaultSeverityLevel
	}
	return clampInt(*r.SeverityLevel, MinSeverityLevel, MaxSeverityLevel)
}

// EffectiveNumBugs returns the requested count clamped to
// [MinNumBugs, MaxNumBugs], defaulting when absent.
func (r *InjectBugsRequest) EffectiveNumBugs() int {
	if r.NumBugs == nil {
		return DefaultNumBugs
	}
	return clampInt(*r.NumBugs, MinNumBugs, MaxNumBugs)
}

// InjectBugsResponse is the inject-bugs envelope. TotalBugsInjected
// reflects the count actually achieved, which may be below the request
// after a shortfall (see the reconciler); BugsInjected is empty, never
// null, on error.
type InjectBugsResponse struct {
	Status            string      `json:"status"`
	BuggyCode         string      `json:"buggy_code"`
	BugsInjected      []BugRecord `json:"bugs_injected"`
	TotalBugsInjected int         `json:"total_bugs_injected"`
	ErrorMessage      string      `json:"error_message,omitempty"`
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
