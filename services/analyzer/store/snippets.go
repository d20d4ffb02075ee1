// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store holds code snippets submitted ahead of analysis.
//
// # Description
//
// Snippets are keyed by session so concurrent callers cannot overwrite
// each other's in-flight code. Callers that never send a session_id all
// share the DefaultSession slot, which preserves the legacy process-wide
// behavior for single-user deployments.
//
// Sessions are bounded in number and expire after a TTL; the store is an
// expirable LRU, not a database. A store for a session replaces its prior
// contents entirely (last write wins).
//
// # Thread Safety
//
// All operations are safe for concurrent use; locking lives inside the
// LRU and is never held across a network call.
package store

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSession is the shared slot used when a request carries no
// session_id.
const DefaultSession = "default"

// ErrNoSnippets is returned when nothing has been stored for a session
// (or the session has expired).
var ErrNoSnippets = errors.New("no code snippets stored for session")

// SnippetStore is a session-scoped, TTL-bounded snippet cache.
type SnippetStore struct {
	cache *expirable.LRU[string, []string]
}

// New creates a SnippetStore holding at most maxSessions sessions, each
// expiring ttl after its last store.
func New(maxSessions int, ttl time.Duration) *SnippetStore {
	return &SnippetStore{
		cache: expirable.NewLRU[string, []string](maxSessions, nil, ttl),
	}
}

// Store replaces the snippets for sessionID and returns the stored count.
// An empty sessionID targets the default slot.
func (s *SnippetStore) Store(sessionID string, snippets []string) int {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	// Copy so later caller mutations cannot reach the stored slice.
	held := make([]string, len(snippets))
	copy(held, snippets)
	s.cache.Add(sessionID, held)
	slog.Debug("stored code snippets", "session_id", sessionID, "count", len(held))
	return len(held)
}

// Retrieve returns the snippets stored for sessionID, or ErrNoSnippets.
func (s *SnippetStore) Retrieve(sessionID string) ([]string, error) {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	snippets, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, ErrNoSnippets
	}
	out := make([]string, len(snippets))
	copy(out, snippets)
	return out, nil
}

// Code returns the session's snippets joined into a single analyzable
// source text, or ErrNoSnippets.
func (s *SnippetStore) Code(sessionID string) (string, error) {
	snippets, err := s.Retrieve(sessionID)
	if err != nil {
		return "", err
	}
	return strings.Join(snippets, "\n\n"), nil
}

// Sessions returns the number of live sessions.
func (s *SnippetStore) Sessions() int {
	return s.cache.Len()
}
