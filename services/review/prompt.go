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
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

// Prompt construction for the three pipeline operations. Templates are
// deterministic: the same code and parameters always render the same
// prompt. Each template states the exact output schema and the closed
// enumerations, and forbids prose, because everything downstream depends
// on getting a single JSON document back. Code is inserted verbatim and
// never executed.

// severityWords maps the 1-5 injection severity level onto the words the
// prompt uses.
var severityWords = map[int]string{
	1: "Low",
	2: "Medium",
	3: "High",
	4: "Critical",
	5: "Extreme",
}

// SeverityWord returns the prompt wording for a clamped severity level.
func SeverityWord(level int) string {
	if w, ok := severityWords[level]; ok {
		return w
	}
	return severityWords[5]
}

// schemaReminder is appended to a prompt for the single retry after a
// structural parse failure.
const schemaReminder = "\n\nREMINDER: Your previous reply could not be parsed. " +
	"Respond with a single valid JSON document exactly matching the schema above. " +
	"Do not include markdown fences, commentary, or any text outside the JSON."

// Go-template format so the literal JSON braces in the schema examples
// need no escaping.
var analyzeTemplate = prompts.PromptTemplate{
	Template: `Analyze the following code snippet for potential issues.
Respond with a single JSON object of the form:
{"issues": [{"title": "Issue Title", "type": "Bug", "severity": "High", "lineNumber": 10, "description": "Detailed description of the issue.", "suggestedFix": "Recommended fix for the issue."}]}

Constraints:
- "type" must be one of: "Bug", "Security", "Code Smell", "Best Practice".
- "severity" must be one of: "Low", "Medium", "High", "Critical".
- "lineNumber" is a positive integer referring to a line of the snippet, or omitted when the issue is not tied to a line.
- Return {"issues": []} if the code has no issues.
- Output only the JSON object. No markdown fences, no prose.

Code:
{{.code_snippet}}`,
	InputVariables: []string{"code_snippet"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}

var metricsTemplate = prompts.PromptTemplate{
	Template: `Analyze the following code snippet for potential issues.
Respond with a single JSON object of the form:
{"issues": [{"title": "Issue Title", "type": "Bug", "severity": "High", "lineNumber": 10, "category": "Performance", "description": "Detailed description of the issue.", "suggestedFix": "Recommended fix for the issue."}]}

Constraints:
- "type" must be one of: "Bug", "Security", "Code Smell", "Best Practice".
- "severity" must be one of: "Low", "Medium", "High", "Critical".
- "category" must be one of: "Security", "Code Smell", "Best Practice", "Performance". Use "Performance" for issues that primarily affect runtime performance; otherwise pick the category matching the type.
- "lineNumber" is a positive integer referring to a line of the snippet, or omitted when the issue is not tied to a line.
- Return {"issues": []} if the code has no issues.
- Output only the JSON object. No markdown fences, no prose.

Code:
{{.code_snippet}}`,
	InputVariables: []string{"code_snippet"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}

var injectTemplate = prompts.PromptTemplate{
	Template: `Inject exactly {{.num_bugs}} bugs of type '{{.bug_type}}' with severity '{{.severity}}' into the following code snippet.
Respond with a single JSON object of the form:
{"buggy_code": "<the full modified code>", "bugs_injected": [{"type": "{{.bug_type}}", "line_number": 2, "description": "Description of the injected bug."}]}

Constraints:
- "buggy_code" must contain the complete modified code, not a fragment, and must differ from the original.
- "bugs_injected" must contain exactly {{.num_bugs}} entries, one per injected bug.
- "line_number" must be a line of the modified code where the bug lives.
- Output only the JSON object. No markdown fences, no prose.

Code:
{{.code_snippet}}`,
	InputVariables: []string{"code_snippet", "bug_type", "severity", "num_bugs"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}

var shortfallTemplate = prompts.PromptTemplate{
	Template: `The following code already contains injected bugs, but {{.missing}} more bug(s) of type '{{.bug_type}}' with severity '{{.severity}}' are required.
Add exactly {{.missing}} additional bug(s) without removing the existing ones.
Respond with a single JSON object of the form:
{"buggy_code": "<the full modified code>", "bugs_injected": [{"type": "{{.bug_type}}", "line_number": 2, "description": "Description of the newly injected bug."}]}

Constraints:
- "bugs_injected" must describe only the newly added bugs, exactly {{.missing}} entries.
- Output only the JSON object. No markdown fences, no prose.

Code:
{{.code_snippet}}`,
	InputVariables: []string{"code_snippet", "bug_type", "severity", "missing"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}

// BuildAnalyzePrompt renders the issue-analysis prompt for code.
func BuildAnalyzePrompt(code string) (string, error) {
	s, err := analyzeTemplate.Format(map[string]any{"code_snippet": code})
	if err != nil {
		return "", fmt.Errorf("rendering analyze prompt: %w", err)
	}
	return s, nil
}

// BuildMetricsPrompt renders the analysis prompt that also asks for a
// distribution category per issue.
func BuildMetricsPrompt(code string) (string, error) {
	s, err := metricsTemplate.Format(map[string]any{"code_snippet": code})
	if err != nil {
		return "", fmt.Errorf("rendering metrics prompt: %w", err)
	}
	return s, nil
}

// BuildInjectPrompt renders the bug-injection prompt. severityLevel and
// numBugs must already be clamped by the request datatype.
func BuildInjectPrompt(code, bugType string, severityLevel, numBugs int) (string, error) {
	s, err := injectTemplate.Format(map[string]any{
		"code_snippet": code,
		"bug_type":     bugType,
		"severity":     SeverityWord(severityLevel),
		"num_bugs":     numBugs,
	})
	if err != nil {
		return "", fmt.Errorf("rendering inject prompt: %w", err)
	}
	return s, nil
}

// BuildShortfallPrompt renders the follow-up prompt asking for the bugs
// missing from a partial injection.
func BuildShortfallPrompt(buggyCode, bugType string, severityLevel, missing int) (string, error) {
	s, err := shortfallTemplate.Format(map[string]any{
		"code_snippet": buggyCode,
		"bug_type":     bugType,
		"severity":     SeverityWord(severityLevel),
		"missing":      missing,
	})
	if err != nil {
		return "", fmt.Errorf("rendering shortfall prompt: %w", err)
	}
	return s, nil
}

// WithSchemaReminder augments a prompt for the retry-with-hint attempt.
func WithSchemaReminder(prompt string) string {
	return prompt + schemaReminder
}
