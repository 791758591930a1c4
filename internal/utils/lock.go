package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockRetry is how often a waiting writer polls the lock file.
const lockRetry = 200 * time.Millisecond

// DBLock serialises snapshot writers across processes with a "<db>.lock" file
// next to the database.
type DBLock struct {
	lock *flock.Flock
	path string
}

// NewDBLock returns the lock belonging to the database at dbPath.
func NewDBLock(dbPath string) (*DBLock, error) {
	absPath, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	return &DBLock{lock: flock.New(absPath + ".lock"), path: absPath + ".lock"}, nil
}

// Lock takes the lock, waiting for other writers until ctx is done.
func (l *DBLock) Lock(ctx context.Context) error {
	if ok, err := l.lock.TryLock(); err != nil {
		return fmt.Errorf("lock %s: %w", l.path, err)
	} else if ok {
		return nil
	}

	Log.WithField("lock", l.path).Info("Waiting for another snapshot writer")
	ok, err := l.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("lock %s: %w", l.path, err)
	}
	if !ok {
		return fmt.Errorf("lock %s: %w", l.path, ctx.Err())
	}
	return nil
}

// Unlock releases the lock. Releasing a lock that is not held is a no-op.
func (l *DBLock) Unlock() error {
	if !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	return nil
}

// GetAbsDBPath resolves the database path. An empty path means
// ~/.config/covidboard/covidboard.sqlite.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "covidboard", "covidboard.sqlite"), nil
	}
	return filepath.Abs(dbPath)
}
