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
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/datatypes"
)

// parser.go is the boundary between the model's free text and the typed
// records the rest of the pipeline trusts. Two failure levels:
//
//   - structural: the payload is not the expected JSON shape at all.
//     Surfaced as an error so the coordinator can retry once with a
//     schema reminder.
//   - record: one candidate record is malformed. The record is dropped
//     and counted; never fatal. An analysis with zero valid issues is a
//     valid, if uninteresting, success.

// extractJSON strips markdown fences or surrounding prose from raw model
// output and returns the best JSON candidate.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	startMarkers := []string{"```json\n", "```json\r\n", "```\n", "```\r\n"}
	const endMarker = "```"
	for _, startMarker := range startMarkers {
		startIdx := strings.Index(raw, startMarker)
		if startIdx == -1 {
			continue
		}
		contentStart := startIdx + len(startMarker)
		remaining := raw[contentStart:]
		endIdx := strings.Index(remaining, endMarker)
		if endIdx == -1 {
			continue
		}
		return strings.TrimSpace(remaining[:endIdx])
	}

	// No fences: look for the outermost object, then array.
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start != -1 && end > start {
		return raw[start : end+1]
	}
	if start, end := strings.Index(raw, "["), strings.LastIndex(raw, "]"); start != -1 && end > start {
		return raw[start : end+1]
	}
	return raw
}

// flexInt tolerates the number-vs-string drift models exhibit for line
// numbers ("10" instead of 10).
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Some models emit floats for line numbers.
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("not an integer: %s", s)
		}
		n = int(fl)
	}
	*f = flexInt(n)
	return nil
}

type rawIssue struct {
	Title        string   `json:"title"`
	Type         string   `json:"type"`
	Severity     string   `json:"severity"`
	LineNumber   *flexInt `json:"lineNumber"`
	Description  string   `json:"description"`
	SuggestedFix string   `json:"suggestedFix"`
	Category     string   `json:"category"`
}

type issueEnvelope struct {
	Issues []json.RawMessage `json:"issues"`
}

// ParseIssues converts raw model text into validated issues. The dropped
// count reports records that failed validation individually. A non-nil
// error means the structural parse failed and the caller may retry.
func ParseIssues(raw string) (issues []datatypes.Issue, dropped int, err error) {
	cleaned := extractJSON(raw)

	var envelope issueEnvelope
	if uerr := json.Unmarshal([]byte(cleaned), &envelope); uerr != nil {
		// Some models return the bare array without the wrapper object.
		var bare []json.RawMessage
		if aerr := json.Unmarshal([]byte(cleaned), &bare); aerr != nil {
			return nil, 0, newParseError("analyze", raw, uerr)
		}
		envelope.Issues = bare
	}

	issues = make([]datatypes.Issue, 0, len(envelope.Issues))
	for _, rec := range envelope.Issues {
		issue, ok := validateIssue(rec)
		if !ok {
			dropped++
			continue
		}
		issues = append(issues, issue)
	}
	if dropped > 0 {
		slog.Warn("dropped malformed issue records", "dropped", dropped, "kept", len(issues))
	}
	return issues, dropped, nil
}

// validateIssue checks one candidate record against the closed
// enumerations. Records missing required fields or carrying unknown
// enum values are rejected; a bad line number only costs the location.
func validateIssue(rec json.RawMessage) (datatypes.Issue, bool) {
	var ri rawIssue
	if err := json.Unmarshal(rec, &ri); err != nil {
		return datatypes.Issue{}, false
	}
	issueType, ok := datatypes.ParseIssueType(ri.Type)
	if !ok {
		return datatypes.Issue{}, false
	}
	severity, ok := datatypes.ParseSeverity(ri.Severity)
	if !ok {
		return datatypes.Issue{}, false
	}
	if strings.TrimSpace(ri.Title) == "" {
		return datatypes.Issue{}, false
	}

	issue := datatypes.Issue{
		Title:        strings.TrimSpace(ri.Title),
		Type:         issueType,
		Severity:     severity,
		Description:  ri.Description,
		SuggestedFix: ri.SuggestedFix,
	}
	if ri.LineNumber != nil && int(*ri.LineNumber) > 0 {
		n := int(*ri.LineNumber)
		issue.LineNumber = &n
	}
	if cat, ok := datatypes.ParseIssueCategory(ri.Category); ok {
		issue.Category = cat
	}
	return issue, true
}

type rawBug struct {
	Type        string   `json:"type"`
	LineNumber  *flexInt `json:"line_number"`
	Description string   `json:"description"`
}

type injectionEnvelope struct {
	BuggyCode    string            `json:"buggy_code"`
	BugsInjected []json.RawMessage `json:"bugs_injected"`
}

// InjectionPayload is a structurally valid injection result prior to
// reconciliation against the caller's request.
type InjectionPayload struct {
	BuggyCode string
	Bugs      []datatypes.BugRecord
	Dropped   int
}

// ParseInjection converts raw model text into an injection payload.
// A missing or empty buggy_code is a structural failure: without the
// modified code there is nothing to reconcile.
func ParseInjection(raw string) (InjectionPayload, error) {
	cleaned := extractJSON(raw)

	var envelope injectionEnvelope
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return InjectionPayload{}, newParseError("inject", raw, err)
	}
	if strings.TrimSpace(envelope.BuggyCode) == "" {
		return InjectionPayload{}, newParseError("inject", raw, fmt.Errorf("missing buggy_code"))
	}

	payload := InjectionPayload{BuggyCode: envelope.BuggyCode}
	for _, rec := range envelope.BugsInjected {
		var rb rawBug
		if err := json.Unmarshal(rec, &rb); err != nil {
			payload.Dropped++
			continue
		}
		if strings.TrimSpace(rb.Description) == "" && strings.TrimSpace(rb.Type) == "" {
			payload.Dropped++
			continue
		}
		bug := datatypes.BugRecord{
			Type:        rb.Type,
			Description: rb.Description,
		}
		if rb.LineNumber != nil {
			bug.LineNumber = int(*rb.LineNumber)
		}
		payload.Bugs = append(payload.Bugs, bug)
	}
	if payload.Dropped > 0 {
		slog.Warn("dropped malformed bug records", "dropped", payload.Dropped, "kept", len(payload.Bugs))
	}
	return payload, nil
}
