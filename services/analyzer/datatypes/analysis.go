// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the wire and domain types for the analyzer
// service.
//
// # Description
//
// This package holds the request/response schemas of every analyzer
// endpoint plus the validated domain records (Issue, SummaryMetrics,
// IssueDistribution, BugRecord) the review pipeline produces. Field
// names are part of the external contract and must not change.
//
// Model output is untrusted free text. The closed enumerations here
// (IssueType, Severity, IssueCategory) are the contract the rest of
// the pipeline relies on: a record only becomes an Issue after its
// type and severity normalize into these sets.
package datatypes

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Enumerations
// =============================================================================

// IssueType classifies a reported code problem.
type IssueType string

const (
	IssueTypeBug          IssueType = "Bug"
	IssueTypeSecurity     IssueType = "Security"
	IssueTypeCodeSmell    IssueType = "Code Smell"
	IssueTypeBestPractice IssueType = "Best Practice"
)

// Severity grades how serious an issue is.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// IssueCategory buckets an issue for the distribution report. It is
// tracked separately from IssueType so performance findings (which have
// no IssueType of their own) land in exactly one bucket.
type IssueCategory string

const (
	CategorySecurity     IssueCategory = "Security"
	CategoryCodeSmell    IssueCategory = "Code Smell"
	CategoryBestPractice IssueCategory = "Best Practice"
	CategoryPerformance  IssueCategory = "Performance"
)

// ParseIssueType normalizes a model-supplied type string into the closed
// IssueType set. Models are inconsistent about spacing and synonyms
// ("CodeSmell", "Security Vulnerability", "best practices"), so matching
// is case- and separator-insensitive.
func ParseIssueType(raw string) (IssueType, bool) {
	switch canonical(raw) {
	case "bug", "runtimeerror", "logicerror", "error":
		return IssueTypeBug, true
	case "security", "securityvulnerability", "securityissue", "vulnerability":
		return IssueTypeSecurity, true
	case "codesmell", "codesmells", "smell":
		return IssueTypeCodeSmell, true
	case "bestpractice", "bestpractices", "bestpracticeviolation":
		return IssueTypeBestPractice, true
	}
	return "", false
}

// ParseSeverity normalizes a model-supplied severity string.
func ParseSeverity(raw string) (Severity, bool) {
	switch canonical(raw) {
	case "low", "minor", "info":
		return SeverityLow, true
	case "medium", "moderate":
		return SeverityMedium, true
	case "high", "major":
		return SeverityHigh, true
	case "critical", "severe", "extreme":
		return SeverityCritical, true
	}
	return "", false
}

// ParseIssueCategory normalizes a model-supplied category string.
func ParseIssueCategory(raw string) (IssueCategory, bool) {
	switch canonical(raw) {
	case "security", "securityvulnerability", "vulnerability":
		return CategorySecurity, true
	case "codesmell", "codesmells":
		return CategoryCodeSmell, true
	case "bestpractice", "bestpractices":
		return CategoryBestPractice, true
	case "performance", "performanceissue", "performanceissues":
		return CategoryPerformance, true
	}
	return "", false
}

// canonical lowercases and strips separators so "Code Smell", "code_smell"
// and "CodeSmell" all compare equal.
func canonical(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
	return s
}

// =============================================================================
// Domain Records
// =============================================================================

// Issue is a single validated code problem reported by the model.
// Immutable once created by the response parser.
//
// LineNumber is optional: it is nil when the model did not attach the
// issue to a specific line or supplied a non-positive value.
type Issue struct {
	Title        string        `json:"title"`
	Type         IssueType     `json:"type"`
	Severity     Severity      `json:"severity"`
	LineNumber   *int          `json:"lineNumber,omitempty"`
	Description  string        `json:"description"`
	SuggestedFix string        `json:"suggestedFix"`
	Category     IssueCategory `json:"category,omitempty"`
}

// SummaryMetrics holds the deterministic scores derived from a validated
// issue set. Never stored independently of the issues that produced it.
type SummaryMetrics struct {
	CodeQualityScore   int `json:"code_quality_score"`
	SecurityRating     int `json:"security_rating"`
	BugDensity         int `json:"bug_density"`
	CriticalIssueCount int `json:"critical_issue_count"`
}

// IssueDistribution counts issues per distribution bucket. Each issue is
// counted in at most one bucket.
type IssueDistribution struct {
	SecurityVulnerabilities int `json:"security_vulnerabilities"`
	CodeSmells              int `json:"code_smells"`
	BestPractices           int `json:"best_practices"`
	PerformanceIssues       int `json:"performance_issues"`
}

// =============================================================================
// Request / Response Types
// =============================================================================

// analyzerValidate is the validator instance for analyzer datatypes.
var analyzerValidate = validator.New()

// CodeInputRequest loads code snippets ahead of analysis.
//
// SessionID is optional. When absent the server generates one and the
// snippets land in that fresh session; clients that ignore session_id
// entirely fall back to a shared default slot, preserving the legacy
// single-store behavior.
type CodeInputRequest struct {
	CodeSnippets []string `json:"code_snippets" binding:"required,min=1" validate:"required,min=1"`
	SessionID    string   `json:"session_id"`
}

// Validate checks the request against its validation tags.
func (r *CodeInputRequest) Validate() error {
	return analyzerValidate.Struct(r)
}

// CodeInputResponse reports how many snippets were stored.
type CodeInputResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	SnippetsLoaded int    `json:"snippets_loaded"`
	SessionID      string `json:"session_id"`
}

// AnalyzeCodeRequest asks for an issue analysis. Code is optional; when
// absent the stored snippets for the session are analyzed. APIKey is
// optional and overrides the process-configured key for this request only.
type AnalyzeCodeRequest struct {
	Code      string `json:"code"`
	APIKey    string `json:"api_key"`
	SessionID string `json:"session_id"`
}

// AnalyzeCodeResponse is the analyze-code envelope. ErrorMessage is
// non-empty iff Status is "error"; on error Issues is empty (never null)
// and TotalIssues is zero.
type AnalyzeCodeResponse struct {
	Status       string  `json:"status"`
	Issues       []Issue `json:"issues"`
	TotalIssues  int     `json:"total_issues"`
	ErrorMessage string  `json:"error_message,omitempty"`
}

// CodeMetricsRequest asks for summary metrics and issue distribution.
type CodeMetricsRequest struct {
	Code      string `json:"code"`
	APIKey    string `json:"api_key"`
	SessionID string `json:"session_id"`
}

// CodeMetricsResponse is the code-metrics envelope. On error both nested
// payloads carry zero values rather than being omitted.
type CodeMetricsResponse struct {
	Status            string            `json:"status"`
	SummaryMetrics    SummaryMetrics    `json:"summary_metrics"`
	IssueDistribution IssueDistribution `json:"issue_distribution"`
	ErrorMessage      string            `json:"error_message,omitempty"`
}
