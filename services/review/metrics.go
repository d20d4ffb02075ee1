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
	"github.com/AleutianAI/CodeAnalyzer/services/analyzer/datatypes"
)

// Deterministic metric derivation. Aggregate is a pure function of the
// validated issue set: no model calls, same input always yields the same
// scores. This formula is the specification of record for the analyzer's
// quality and security scores.

// severityWeight is the deduction weight per issue severity.
var severityWeight = map[datatypes.Severity]int{
	datatypes.SeverityLow:      2,
	datatypes.SeverityMedium:   5,
	datatypes.SeverityHigh:     10,
	datatypes.SeverityCritical: 20,
}

// typeWeight scales the deduction per issue type. Bugs and security
// findings cost more than stylistic findings.
var typeWeight = map[datatypes.IssueType]int{
	datatypes.IssueTypeBug:          3,
	datatypes.IssueTypeSecurity:     3,
	datatypes.IssueTypeCodeSmell:    1,
	datatypes.IssueTypeBestPractice: 1,
}

// Aggregate derives summary metrics and the issue distribution from a
// validated issue set.
//
// codeQualityScore starts at 100 and each issue deducts
// severityWeight(severity) x typeWeight(type), floored at 0.
// securityRating applies the same formula restricted to Security-type
// issues. bugDensity counts Bug-type issues; criticalIssueCount counts
// Critical-severity issues of any type.
//
// Each issue lands in at most one distribution bucket: its category when
// the model supplied one, otherwise the bucket matching its type. Bug-
// type issues without a category belong to no bucket (they are already
// counted in bugDensity), so the distribution sums to at most the total
// issue count.
func Aggregate(issues []datatypes.Issue) (datatypes.SummaryMetrics, datatypes.IssueDistribution) {
	var metrics datatypes.SummaryMetrics
	var dist datatypes.IssueDistribution

	qualityDeduction := 0
	securityDeduction := 0

	for _, issue := range issues {
		deduction := severityWeight[issue.Severity] * typeWeight[issue.Type]
		qualityDeduction += deduction

		if issue.Type == datatypes.IssueTypeBug {
			metrics.BugDensity++
		}
		if issue.Type == datatypes.IssueTypeSecurity {
			securityDeduction += deduction
		}
		if issue.Severity == datatypes.SeverityCritical {
			metrics.CriticalIssueCount++
		}

		switch bucketFor(issue) {
		case datatypes.CategorySecurity:
			dist.SecurityVulnerabilities++
		case datatypes.CategoryCodeSmell:
			dist.CodeSmells++
		case datatypes.CategoryBestPractice:
			dist.BestPractices++
		case datatypes.CategoryPerformance:
			dist.PerformanceIssues++
		}
	}

	metrics.CodeQualityScore = floorScore(100 - qualityDeduction)
	metrics.SecurityRating = floorScore(100 - securityDeduction)
	return metrics, dist
}

// bucketFor picks the single distribution bucket for an issue, or ""
// for uncategorized bugs.
func bucketFor(issue datatypes.Issue) datatypes.IssueCategory {
	if issue.Category != "" {
		return issue.Category
	}
	switch issue.Type {
	case datatypes.IssueTypeSecurity:
		return datatypes.CategorySecurity
	case datatypes.IssueTypeCodeSmell:
		return datatypes.CategoryCodeSmell
	case datatypes.IssueTypeBestPractice:
		return datatypes.CategoryBestPractice
	}
	return ""
}

func floorScore(score int) int {
	if score < 0 {
		return 0
	}
	return score
}
