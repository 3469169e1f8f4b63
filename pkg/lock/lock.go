// Package lock provides an advisory, inter-process file lock used to keep
// two sync cycles from running at the same time.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// ErrLocked is returned by TryAcquire when another holder owns the lock.
var ErrLocked = errors.New("lock: held by another process")

// FileLock is an exclusive advisory lock on a file. The lock is released
// automatically by the OS if the process dies.
type FileLock struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// New returns an unlocked FileLock for path.
func New(path string) *FileLock {
	return &FileLock{path: path}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// TryAcquire takes the lock without blocking. It returns ErrLocked when the
// lock is already held, including by another FileLock in this process.
func (l *FileLock) TryAcquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("lock: create directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("lock: open %s: %w", l.path, err)
	}

	if err := flock(f); err != nil {
		_ = f.Close()
		return err
	}

	// The pid is informational only.
	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}

	l.file = f
	return nil
}

// Release drops the lock. Calling it on an unheld lock is a no-op.
func (l *FileLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil

	unlockErr := funlock(f)
	closeErr := f.Close()
	if unlockErr != nil {
		return fmt.Errorf("lock: release: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("lock: close: %w", closeErr)
	}
	return nil
}
