// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for API key resolution

package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/CodeAnalyzer/services/llm"
)

func TestDefaultKey_Reveal(t *testing.T) {
	key := NewDefaultKey("sk-process-default")

	got, ok := key.Reveal()
	require.True(t, ok)
	assert.Equal(t, "sk-process-default", got)

	// The enclave survives repeated reveals.
	again, ok := key.Reveal()
	require.True(t, ok)
	assert.Equal(t, got, again)
}

func TestDefaultKey_Unconfigured(t *testing.T) {
	_, ok := NewDefaultKey("   ").Reveal()
	assert.False(t, ok)

	var nilKey *DefaultKey
	_, ok = nilKey.Reveal()
	assert.False(t, ok)
}

func TestResolveAPIKey_RequestKeyWins(t *testing.T) {
	defaultKey := NewDefaultKey("sk-default")

	got, err := ResolveAPIKey("  sk-request  ", defaultKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-request", got)
}

func TestResolveAPIKey_PlaceholdersFallBack(t *testing.T) {
	defaultKey := NewDefaultKey("sk-default")

	for _, placeholder := range []string{"", "string", "String", "NONE", "null", "  string  "} {
		got, err := ResolveAPIKey(placeholder, defaultKey)
		require.NoError(t, err, "placeholder %q", placeholder)
		assert.Equal(t, "sk-default", got, "placeholder %q", placeholder)
	}
}

func TestResolveAPIKey_NoKeyAnywhere(t *testing.T) {
	_, err := ResolveAPIKey("none", NewDefaultKey(""))
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)

	_, err = ResolveAPIKey("", nil)
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}
