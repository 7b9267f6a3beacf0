package session

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// lockTimeout bounds how long a save waits on a sibling tt process.
const lockTimeout = 5 * time.Second

// withLock acquires an exclusive lock on path.lock, runs fn, then releases.
func withLock(path string, fn func() error) error {
	fileLock := flock.New(path + ".lock")

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring lock on %s.lock: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("timed out acquiring lock on %s.lock", path)
	}
	defer fileLock.Unlock()

	return fn()
}
