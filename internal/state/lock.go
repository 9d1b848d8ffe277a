package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrLocked is returned when another process holds a snapshot lock.
var ErrLocked = errors.New("snapshot is locked")

// staleLockAge is how old a local lock file may get before it is ignored.
const staleLockAge = 10 * time.Minute

// Lock takes a file lock on a component's snapshot.
func (m *Manager) Lock(_ context.Context, component string) error {
	lockPath := m.lockPath(component)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	if info, err := os.Stat(lockPath); err == nil {
		if time.Since(info.ModTime()) <= staleLockAge {
			return fmt.Errorf("%w (lock file: %s); remove it manually if no other run is active", ErrLocked, lockPath)
		}
		os.Remove(lockPath)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w (lock file: %s)", ErrLocked, lockPath)
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "pid=%d\ntime=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	return nil
}

// Unlock releases a component's snapshot lock.
func (m *Manager) Unlock(_ context.Context, component string) error {
	if err := os.Remove(m.lockPath(component)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

func (m *Manager) lockPath(component string) string {
	return m.Path(component) + ".lock"
}
