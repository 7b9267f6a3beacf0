package session

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s := Open(t.TempDir(), "fresh", 10)
	assert.True(t, s.Named())
	assert.Zero(t, s.Len())
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o600))

	s := Open(dir, "bad", 10)
	assert.Zero(t, s.Len())

	// Non-array JSON is corruption too.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "obj.json"), []byte(`{"role":"user"}`), 0o600))
	assert.Zero(t, Open(dir, "obj", 10).Len())
}

func TestAnonymousStoreIsNoOp(t *testing.T) {
	s := Open(t.TempDir(), "", 10)
	assert.False(t, s.Named())

	s.Append(RoleUser, "hello")
	s.RecordExchange("question", "answer")
	assert.Zero(t, s.Len())
	require.NoError(t, s.Save())
}

func TestRoundTripPreservesTurns(t *testing.T) {
	dir := t.TempDir()

	s := Open(dir, "proj", 10)
	s.RecordExchange("list files", "ls -la")
	s.RecordCommandOutput("ls -la", "total 0")

	reloaded := Open(dir, "proj", 10)
	require.Equal(t, 4, reloaded.Len())
	h := reloaded.History()
	assert.Equal(t, RoleUser, h[0].Role)
	assert.Equal(t, "list files", h[0].Text())
	assert.Equal(t, RoleModel, h[1].Role)
	assert.Equal(t, "I executed: ls -la\n\nOutput:\ntotal 0", h[2].Text())
}

func TestSaveTrimsOldestPairs(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir, "long", 3)

	for i := 0; i < 8; i++ {
		s.RecordExchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	reloaded := Open(dir, "long", 3)
	require.Equal(t, 6, reloaded.Len())
	h := reloaded.History()
	// Oldest pairs evicted, newest retained in order.
	assert.Equal(t, "q5", h[0].Text())
	assert.Equal(t, "a7", h[5].Text())
}

// Property: save followed by load returns the same turn sequence, modulo the
// trimming save itself applies to the front.
func TestSaveLoadRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dir := t.TempDir()
		maxPairs := rapid.IntRange(1, 12).Draw(rt, "maxPairs")
		pairs := rapid.IntRange(0, 25).Draw(rt, "pairs")

		s := Open(dir, "prop", maxPairs)
		var want []string
		for i := 0; i < pairs; i++ {
			q := rapid.StringMatching(`[ -~]{0,40}`).Draw(rt, "q")
			a := rapid.StringMatching(`[ -~]{0,40}`).Draw(rt, "a")
			s.RecordExchange(q, a)
			want = append(want, q, a)
		}

		if pairs > maxPairs {
			want = want[(pairs-maxPairs)*2:]
		}

		got := Open(dir, "prop", maxPairs).History()
		if len(got) != len(want) {
			rt.Fatalf("got %d turns, want %d", len(got), len(want))
		}
		for i, turn := range got {
			if turn.Text() != want[i] {
				rt.Fatalf("turn %d: got %q, want %q", i, turn.Text(), want[i])
			}
			wantRole := RoleUser
			if i%2 == 1 {
				wantRole = RoleModel
			}
			if turn.Role != wantRole {
				rt.Fatalf("turn %d: got role %q, want %q", i, turn.Role, wantRole)
			}
		}
	})
}

func TestHistoryReturnsCopy(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir, "copy", 10)
	s.RecordExchange("q", "a")

	h := s.History()
	h[0] = NewTurn(RoleUser, "mutated")
	_ = append(h, NewTurn(RoleUser, "extra"))

	assert.Equal(t, "q", s.History()[0].Text())
	assert.Equal(t, 2, s.Len())
}

func TestOwnerOnlyPermissions(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "sessions")

	s := Open(dir, "private", 10)
	s.Append(RoleUser, "secret context")

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	fileInfo, err := os.Stat(filepath.Join(dir, "private.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fileInfo.Mode().Perm())
}

func TestListAndDelete(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"beta", "alpha"} {
		s := Open(dir, name, 10)
		s.Append(RoleUser, "hi")
	}

	assert.Equal(t, []string{"alpha", "beta"}, List(dir))

	require.NoError(t, Delete(dir, "alpha"))
	assert.Equal(t, []string{"beta"}, List(dir))

	err := Delete(dir, "alpha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListMissingDir(t *testing.T) {
	assert.Nil(t, List(filepath.Join(t.TempDir(), "nope")))
}
