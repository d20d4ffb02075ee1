// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for injection datatypes

package datatypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestInjectBugsRequest_Defaults(t *testing.T) {
	var req InjectBugsRequest

	assert.Equal(t, "Security Vulnerability", req.EffectiveBugType())
	assert.Equal(t, 5, req.EffectiveSeverityLevel())
	assert.Equal(t, 2, req.EffectiveNumBugs())
}

func TestInjectBugsRequest_SeverityClamping(t *testing.T) {
	tests := []struct {
		name  string
		level *int
		want  int
	}{
		{"absent uses default", nil, 5},
		{"zero clamps to min", intPtr(0), 1},
		{"negative clamps to min", intPtr(-3), 1},
		{"in range passes through", intPtr(3), 3},
		{"above max clamps", intPtr(9), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := InjectBugsRequest{SeverityLevel: tt.level}
			assert.Equal(t, tt.want, req.EffectiveSeverityLevel())
		})
	}
}

func TestInjectBugsRequest_NumBugsClamping(t *testing.T) {
	tests := []struct {
		name string
		num  *int
		want int
	}{
		{"absent uses default", nil, 2},
		{"zero clamps to min", intPtr(0), 1},
		{"in range passes through", intPtr(7), 7},
		{"fifteen clamps to ten", intPtr(15), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := InjectBugsRequest{NumBugs: tt.num}
			assert.Equal(t, tt.want, req.EffectiveNumBugs())
		})
	}
}

func TestInjectBugsRequest_ExplicitBugType(t *testing.T) {
	req := InjectBugsRequest{BugType: "Division by Zero"}
	assert.Equal(t, "Division by Zero", req.EffectiveBugType())
}
