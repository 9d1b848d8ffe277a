package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/picklr-io/clockwork/internal/eval"
	"github.com/picklr-io/clockwork/internal/ir"
	"github.com/picklr-io/clockwork/internal/logging"
)

// Backend stores snapshots keyed by component name.
type Backend interface {
	// Read loads the saved snapshot of a component.
	Read(ctx context.Context, component string) (*ir.Snapshot, error)

	// Write saves a snapshot, bumping its serial.
	Write(ctx context.Context, snap *ir.Snapshot) error

	// Lock acquires an exclusive lock on a component's snapshot.
	Lock(ctx context.Context, component string) error

	// Unlock releases the lock.
	Unlock(ctx context.Context, component string) error
}

// BackendConfig selects and configures a snapshot backend.
type BackendConfig struct {
	Type   string            `json:"type"` // "local" or "s3"
	Config map[string]string `json:"config"`
}

// ParseBackendConfig builds a config from key=value pairs, as given on the
// command line.
func ParseBackendConfig(backendType string, pairs []string) (*BackendConfig, error) {
	cfg := &BackendConfig{Type: backendType, Config: make(map[string]string)}
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid backend config %q: expected key=value", pair)
		}
		cfg.Config[k] = v
	}
	return cfg, nil
}

// NewBackend creates a snapshot backend. dir is the project state directory
// used by the local backend.
func NewBackend(ctx context.Context, cfg *BackendConfig, dir string, evaluator *eval.Evaluator) (Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("backend configuration is nil")
	}

	switch cfg.Type {
	case "local", "":
		if d := cfg.Config["dir"]; d != "" {
			dir = d
		}
		return NewManager(dir, evaluator), nil
	case "s3":
		b, err := newS3Backend(ctx, cfg.Config, evaluator)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
	}
}

// Save writes snap under the component's lock. The serial continues from the
// previously saved snapshot, if any.
func Save(ctx context.Context, b Backend, snap *ir.Snapshot) (err error) {
	if err := b.Lock(ctx, snap.Component); err != nil {
		return err
	}
	defer func() {
		if uerr := b.Unlock(ctx, snap.Component); uerr != nil && err == nil {
			err = uerr
		}
	}()

	prev, err := b.Read(ctx, snap.Component)
	switch {
	case err == nil:
		snap.Serial = prev.Serial
	case errors.Is(err, ErrSnapshotNotFound):
		snap.Serial = 0
	default:
		return fmt.Errorf("failed to read previous snapshot: %w", err)
	}

	if err := b.Write(ctx, snap); err != nil {
		return err
	}
	logging.Debug("saved snapshot", "component", snap.Component, "serial", snap.Serial+1)
	return nil
}
