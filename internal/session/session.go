// Package session owns the durable, per-named-session conversation history
// that gives tt multi-call context. Histories are stored one JSON file per
// session under the session directory, in the exact wire shape the
// generative-language API expects ({role, parts:[{text}]}), so a loaded
// history can be posted as-is.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// RoleUser tags turns authored by the human (or synthesized on their
	// behalf, like executed-command context).
	RoleUser = "user"
	// RoleModel tags turns authored by the service.
	RoleModel = "model"
)

// DefaultMaxPairs is the history window, expressed in user/model turn-pairs.
const DefaultMaxPairs = 10

// Part is one text fragment of a turn, matching the service wire format.
type Part struct {
	Text string `json:"text"`
}

// Turn is one role-tagged message in a conversation.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// NewTurn builds a single-part turn.
func NewTurn(role, text string) Turn {
	return Turn{Role: role, Parts: []Part{{Text: text}}}
}

// Text returns the concatenated text of all parts.
func (t Turn) Text() string {
	if len(t.Parts) == 1 {
		return t.Parts[0].Text
	}
	var b strings.Builder
	for _, p := range t.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// Store holds the history of one session. A Store opened without a name is
// anonymous: it keeps no state and every mutation is a no-op.
type Store struct {
	name     string
	path     string // empty = anonymous, no persistence
	maxPairs int
	turns    []Turn
}

// Open loads (or initializes empty) the session with the given name under
// dir. Open never fails: a missing, unreadable, or corrupt session file
// yields an empty history. An empty name yields an anonymous store.
func Open(dir, name string, maxPairs int) *Store {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}
	s := &Store{name: name, maxPairs: maxPairs}
	if name == "" || dir == "" {
		return s
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Debug("session dir unavailable, running without persistence", "dir", dir, "error", err)
		return s
	}
	// MkdirAll keeps existing permissions; tighten them on every open.
	if err := os.Chmod(dir, 0o700); err != nil {
		slog.Debug("tightening session dir permissions failed", "dir", dir, "error", err)
	}

	s.path = filepath.Join(dir, name+".json")
	s.load()
	return s
}

// load reads the backing file into memory. Corruption never propagates; the
// session simply starts over empty.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		slog.Debug("session file is not a turn array, starting empty", "path", s.path, "error", err)
		return
	}
	s.turns = turns
}

// Named reports whether this store persists anything.
func (s *Store) Named() bool { return s.path != "" }

// Name returns the session name, empty for anonymous stores.
func (s *Store) Name() string { return s.name }

// Len returns the number of turns currently held.
func (s *Store) Len() int { return len(s.turns) }

// History returns a copy of the turn sequence, oldest first. Callers may
// append to the copy freely without affecting the store.
func (s *Store) History() []Turn {
	if len(s.turns) == 0 {
		return nil
	}
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Append adds one turn and persists. No-op for anonymous sessions.
// Persistence failures are absorbed: the in-memory history stays usable for
// the rest of the invocation.
func (s *Store) Append(role, text string) {
	if !s.Named() {
		return
	}
	s.turns = append(s.turns, NewTurn(role, text))
	if err := s.Save(); err != nil {
		slog.Debug("saving session failed", "session", s.name, "error", err)
	}
}

// RecordExchange appends a completed user/model pair and persists. Called
// only after a confirmed service success, never speculatively.
func (s *Store) RecordExchange(prompt, reply string) {
	if !s.Named() {
		return
	}
	s.turns = append(s.turns, NewTurn(RoleUser, prompt), NewTurn(RoleModel, reply))
	if err := s.Save(); err != nil {
		slog.Debug("saving session failed", "session", s.name, "error", err)
	}
}

// RecordCommandOutput injects an executed command and its captured output as
// a synthetic turn pair, so follow-up queries can refer to the result.
func (s *Store) RecordCommandOutput(command, output string) {
	s.Append(RoleUser, "I executed: "+command+"\n\nOutput:\n"+output)
	s.Append(RoleModel, "Got it. I'll remember this output for context.")
}

// Save trims the history to the pair window and writes it atomically
// (write-then-rename) with owner-only permissions. A concurrent external
// writer racing the rename is an accepted limitation; the flock below is
// best-effort only.
func (s *Store) Save() error {
	if !s.Named() {
		return nil
	}

	// Evict the oldest turn-pairs, never single turns, until the window fits.
	for len(s.turns) > s.maxPairs*2 {
		s.turns = s.turns[2:]
	}

	data, err := json.MarshalIndent(s.turns, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", s.name, err)
	}

	return withLock(s.path, func() error {
		tmp := s.path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o600); err != nil {
			return fmt.Errorf("writing session %s: %w", s.name, err)
		}
		// WriteFile only applies perm on create; an existing tmp keeps its
		// old mode, so force it.
		if err := os.Chmod(tmp, 0o600); err != nil {
			return fmt.Errorf("restricting session %s: %w", s.name, err)
		}
		return os.Rename(tmp, s.path)
	})
}
