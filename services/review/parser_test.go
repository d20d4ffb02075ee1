// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the response parser

package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/datatypes"
)

const validIssueJSON = `{"issues": [{"title": "Division by zero", "type": "Bug", "severity": "High", "lineNumber": 2, "description": "b may be zero", "suggestedFix": "guard the divisor"}]}`

// =============================================================================
// extractJSON Tests
// =============================================================================

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object untouched",
			input: `{"issues": []}`,
			want:  `{"issues": []}`,
		},
		{
			name:  "json fence stripped",
			input: "```json\n{\"issues\": []}\n```",
			want:  `{"issues": []}`,
		},
		{
			name:  "plain fence stripped",
			input: "```\n{\"issues\": []}\n```",
			want:  `{"issues": []}`,
		},
		{
			name:  "leading prose before fence",
			input: "Here is the analysis you asked for:\n```json\n{\"issues\": []}\n```\nLet me know if you need more.",
			want:  `{"issues": []}`,
		},
		{
			name:  "prose around bare object",
			input: "Sure! The result is {\"issues\": []} as requested.",
			want:  `{"issues": []}`,
		},
		{
			name:  "bare array",
			input: "The issues are: [1, 2]",
			want:  `[1, 2]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}

// =============================================================================
// ParseIssues Tests
// =============================================================================

func TestParseIssues_Valid(t *testing.T) {
	issues, dropped, err := ParseIssues(validIssueJSON)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, "Division by zero", issue.Title)
	assert.Equal(t, datatypes.IssueTypeBug, issue.Type)
	assert.Equal(t, datatypes.SeverityHigh, issue.Severity)
	require.NotNil(t, issue.LineNumber)
	assert.Equal(t, 2, *issue.LineNumber)
}

func TestParseIssues_Fenced(t *testing.T) {
	issues, _, err := ParseIssues("```json\n" + validIssueJSON + "\n```")
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestParseIssues_EmptyListIsSuccess(t *testing.T) {
	issues, dropped, err := ParseIssues(`{"issues": []}`)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Empty(t, issues)
	assert.NotNil(t, issues, "issues must be an empty slice, not nil")
}

func TestParseIssues_BareArrayAccepted(t *testing.T) {
	issues, _, err := ParseIssues(`[{"title": "x", "type": "Bug", "severity": "Low", "description": "", "suggestedFix": ""}]`)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestParseIssues_MalformedRecordsDroppedNotFatal(t *testing.T) {
	raw := `{"issues": [
		{"title": "kept", "type": "Bug", "severity": "High", "description": "d", "suggestedFix": "f"},
		{"title": "bad type", "type": "Banana", "severity": "High", "description": "d", "suggestedFix": "f"},
		{"title": "bad severity", "type": "Bug", "severity": "Urgent", "description": "d", "suggestedFix": "f"},
		{"title": "", "type": "Bug", "severity": "Low", "description": "no title", "suggestedFix": "f"}
	]}`

	issues, dropped, err := ParseIssues(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, dropped)
	require.Len(t, issues, 1)
	assert.Equal(t, "kept", issues[0].Title)
}

func TestParseIssues_TypeNormalization(t *testing.T) {
	raw := `{"issues": [{"title": "x", "type": "security vulnerability", "severity": "critical", "description": "d", "suggestedFix": "f"}]}`
	issues, _, err := ParseIssues(raw)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, datatypes.IssueTypeSecurity, issues[0].Type)
	assert.Equal(t, datatypes.SeverityCritical, issues[0].Severity)
}

func TestParseIssues_StringLineNumberTolerated(t *testing.T) {
	raw := `{"issues": [{"title": "x", "type": "Bug", "severity": "Low", "lineNumber": "7", "description": "d", "suggestedFix": "f"}]}`
	issues, dropped, err := ParseIssues(raw)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.NotNil(t, issues[0].LineNumber)
	assert.Equal(t, 7, *issues[0].LineNumber)
}

func TestParseIssues_NonPositiveLineNumberNulled(t *testing.T) {
	raw := `{"issues": [{"title": "x", "type": "Bug", "severity": "Low", "lineNumber": 0, "description": "d", "suggestedFix": "f"}]}`
	issues, dropped, err := ParseIssues(raw)
	require.NoError(t, err)
	assert.Zero(t, dropped, "a bad location only costs the location, not the record")
	assert.Nil(t, issues[0].LineNumber)
}

func TestParseIssues_CategoryCaptured(t *testing.T) {
	raw := `{"issues": [{"title": "x", "type": "Code Smell", "severity": "Low", "category": "Performance", "description": "d", "suggestedFix": "f"}]}`
	issues, _, err := ParseIssues(raw)
	require.NoError(t, err)
	assert.Equal(t, datatypes.CategoryPerformance, issues[0].Category)
}

func TestParseIssues_StructuralFailure(t *testing.T) {
	_, _, err := ParseIssues("I could not analyze this code, sorry.")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "analyze", parseErr.Op)
	assert.NotEmpty(t, parseErr.Excerpt)
}

// =============================================================================
// ParseInjection Tests
// =============================================================================

func TestParseInjection_Valid(t *testing.T) {
	raw := `{"buggy_code": "def f():\n    return 1/0", "bugs_injected": [{"type": "Division by Zero", "line_number": 2, "description": "divides by zero"}]}`
	payload, err := ParseInjection(raw)
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    return 1/0", payload.BuggyCode)
	require.Len(t, payload.Bugs, 1)
	assert.Equal(t, 2, payload.Bugs[0].LineNumber)
}

func TestParseInjection_MissingBuggyCodeIsStructural(t *testing.T) {
	_, err := ParseInjection(`{"bugs_injected": []}`)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "inject", parseErr.Op)
}

func TestParseInjection_MalformedBugDropped(t *testing.T) {
	raw := `{"buggy_code": "x = 1", "bugs_injected": [
		{"type": "Bug", "line_number": 1, "description": "kept"},
		{"type": "", "description": ""},
		{"type": "Bug", "line_number": "not-a-number", "description": "bad line"}
	]}`
	payload, err := ParseInjection(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, payload.Dropped)
	require.Len(t, payload.Bugs, 1)
	assert.Equal(t, "kept", payload.Bugs[0].Description)
}

func TestParseInjection_Fenced(t *testing.T) {
	raw := "```json\n{\"buggy_code\": \"x = 1\", \"bugs_injected\": []}\n```"
	payload, err := ParseInjection(raw)
	require.NoError(t, err)
	assert.Equal(t, "x = 1", payload.BuggyCode)
}
