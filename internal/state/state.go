package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/picklr-io/clockwork/internal/eval"
	"github.com/picklr-io/clockwork/internal/ir"
)

// SnapshotVersion is the format version written into every snapshot.
const SnapshotVersion = 1

// ErrSnapshotNotFound is returned when no snapshot was saved for a component.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Manager stores snapshots as Pkl files under <dir>/snapshots.
type Manager struct {
	dir       string
	evaluator *eval.Evaluator
}

func NewManager(dir string, evaluator *eval.Evaluator) *Manager {
	return &Manager{
		dir:       dir,
		evaluator: evaluator,
	}
}

// Path returns the snapshot file of a component.
func (m *Manager) Path(component string) string {
	return filepath.Join(m.dir, "snapshots", component+".pkl")
}

// Read loads the saved snapshot of a component. Encrypted snapshots are
// decrypted before evaluation.
func (m *Manager) Read(ctx context.Context, component string) (*ir.Snapshot, error) {
	path := m.Path(component)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, component)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file %s: %w", path, err)
	}

	if IsEncrypted(raw) {
		decrypted, err := DecryptSnapshot(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt snapshot: %w", err)
		}
		snap, err := m.evaluator.LoadSnapshotText(ctx, string(decrypted))
		if err != nil {
			return nil, fmt.Errorf("failed to load decrypted snapshot: %w", err)
		}
		return snap, nil
	}

	snap, err := m.evaluator.LoadSnapshot(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot from %s: %w", path, err)
	}
	return snap, nil
}

// Write saves a snapshot, bumping its serial. If CLOCKWORK_SNAPSHOT_KEY is
// set the file is encrypted.
func (m *Manager) Write(ctx context.Context, snap *ir.Snapshot) error {
	path := m.Path(snap.Component)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	content, err := EncryptSnapshot([]byte(SerializeSnapshot(snap)))
	if err != nil {
		return fmt.Errorf("failed to encrypt snapshot: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file %s: %w", path, err)
	}
	return nil
}

// List returns the components that have a saved snapshot, sorted by name.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(m.dir, "snapshots"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var components []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".pkl") {
			continue
		}
		components = append(components, strings.TrimSuffix(e.Name(), ".pkl"))
	}
	sort.Strings(components)
	return components, nil
}

// Remove deletes the saved snapshot of a component.
func (m *Manager) Remove(component string) error {
	err := os.Remove(m.Path(component))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, component)
	}
	if err != nil {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

// SerializeSnapshot renders a snapshot as a standalone Pkl module. The
// written serial is one past the snapshot's current serial.
func SerializeSnapshot(snap *ir.Snapshot) string {
	var b strings.Builder

	version := snap.Version
	if version == 0 {
		version = SnapshotVersion
	}

	fmt.Fprintf(&b, "// clockwork snapshot\n")
	fmt.Fprintf(&b, "version = %d\n", version)
	fmt.Fprintf(&b, "serial = %d\n", snap.Serial+1)
	fmt.Fprintf(&b, "component = %q\n\n", snap.Component)

	if len(snap.Inputs) > 0 {
		fmt.Fprintf(&b, "inputs = new Listing {\n")
		for _, in := range snap.Inputs {
			fmt.Fprintf(&b, "  %q\n", in)
		}
		fmt.Fprintf(&b, "}\n\n")
	} else {
		fmt.Fprintf(&b, "inputs = new Listing {}\n\n")
	}

	writePartStates(&b, "outputs", snap.Outputs)
	b.WriteString("\n")
	writePartStates(&b, "states", snap.States)

	return b.String()
}

func writePartStates(b *strings.Builder, name string, states []*ir.PartState) {
	if len(states) == 0 {
		fmt.Fprintf(b, "%s = new Listing {}\n", name)
		return
	}
	fmt.Fprintf(b, "%s = new Listing {\n", name)
	for _, s := range states {
		fmt.Fprintf(b, "  new Dynamic { name = %q value = %q }\n", s.Name, s.Value)
	}
	fmt.Fprintf(b, "}\n")
}
