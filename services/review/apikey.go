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
	"strings"

	"github.com/AleutianAI/CodeAnalyzer/services/llm"
	"github.com/awnumar/memguard"
)

// keyPlaceholders are values API explorers substitute for "no key".
// They are treated as absent, not as keys.
var keyPlaceholders = map[string]bool{
	"":       true,
	"string": true,
	"none":   true,
	"null":   true,
}

// DefaultKey holds the process-configured API key in locked memory so it
// never sits in a plain heap string for the life of the process. A nil
// receiver or an unconfigured key resolves to nothing.
type DefaultKey struct {
	enclave *memguard.Enclave
}

// NewDefaultKey seals raw into an enclave. Returns a DefaultKey that
// resolves to nothing when raw is blank.
func NewDefaultKey(raw string) *DefaultKey {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &DefaultKey{}
	}
	return &DefaultKey{enclave: memguard.NewEnclave([]byte(raw))}
}

// Reveal opens the enclave and returns a copy of the key.
func (d *DefaultKey) Reveal() (string, bool) {
	if d == nil || d.enclave == nil {
		return "", false
	}
	buf, err := d.enclave.Open()
	if err != nil {
		return "", false
	}
	defer buf.Destroy()
	return strings.Clone(buf.String()), true
}

// ResolveAPIKey picks the effective key for one request: a usable
// request-supplied key always wins; otherwise the process default; if
// neither exists it fails with llm.ErrMissingAPIKey before any network
// call is made. The resolved key is never echoed back to the caller.
func ResolveAPIKey(requestKey string, defaultKey *DefaultKey) (string, error) {
	cleaned := strings.TrimSpace(requestKey)
	if !keyPlaceholders[strings.ToLower(cleaned)] {
		return cleaned, nil
	}
	if key, ok := defaultKey.Reveal(); ok {
		return key, nil
	}
	return "", llm.ErrMissingAPIKey
}
