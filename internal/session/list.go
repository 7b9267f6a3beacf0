package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// List returns the names of all sessions stored under dir, sorted.
// A missing directory simply means no sessions.
func List(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// Delete removes the named session file.
func Delete(dir, name string) error {
	path := filepath.Join(dir, name+".json")
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("session %q not found", name)
		}
		return fmt.Errorf("deleting session %q: %w", name, err)
	}
	os.Remove(path + ".lock")
	return nil
}
