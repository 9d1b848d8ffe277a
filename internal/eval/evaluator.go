package eval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/apple/pkl-go/pkl"
	"github.com/picklr-io/clockwork/internal/ir"
	"github.com/picklr-io/clockwork/internal/logging"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for declaration files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported declaration format")

// Evaluator loads declarations and snapshots into IR types.
type Evaluator struct {
	projectDir string
}

func NewEvaluator(projectDir string) *Evaluator {
	return &Evaluator{
		projectDir: projectDir,
	}
}

// LoadProgram reads a declaration file and validates it. The decoder is
// chosen by extension: .pkl, .yaml/.yml or .json.
func (e *Evaluator) LoadProgram(ctx context.Context, path string) (*ir.Program, error) {
	var (
		prog *ir.Program
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pkl":
		prog, err = e.loadPkl(ctx, path)
	case ".yaml", ".yml":
		prog, err = loadYAML(path)
	case ".json":
		prog, err = loadJSON(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	if err := prog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid declarations in %s: %w", path, err)
	}

	logging.Debug("loaded program", "path", path, "components", len(prog.Components))
	return prog, nil
}

func (e *Evaluator) loadPkl(ctx context.Context, path string) (*ir.Program, error) {
	evaluator, err := e.newPklEvaluator(ctx)
	if err != nil {
		return nil, err
	}
	defer evaluator.Close()

	var prog ir.Program
	if err := evaluator.EvaluateModule(ctx, pkl.FileSource(path), &prog); err != nil {
		return nil, fmt.Errorf("failed to evaluate %s: %w", path, err)
	}
	return &prog, nil
}

// newPklEvaluator uses the project evaluator when the project directory
// carries a PklProject file, so package dependencies resolve.
func (e *Evaluator) newPklEvaluator(ctx context.Context) (pkl.Evaluator, error) {
	if e.projectDir != "" {
		if _, err := os.Stat(filepath.Join(e.projectDir, "PklProject")); err == nil {
			abs, err := filepath.Abs(e.projectDir)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve project directory: %w", err)
			}
			u, err := url.Parse("file://" + filepath.ToSlash(abs) + "/")
			if err != nil {
				return nil, fmt.Errorf("failed to parse project directory URL: %w", err)
			}
			evaluator, err := pkl.NewProjectEvaluator(ctx, u, pkl.PreconfiguredOptions)
			if err != nil {
				return nil, fmt.Errorf("failed to create PKL project evaluator: %w", err)
			}
			return evaluator, nil
		}
	}

	evaluator, err := pkl.NewEvaluator(ctx, pkl.PreconfiguredOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create PKL evaluator: %w", err)
	}
	return evaluator, nil
}

func loadYAML(path string) (*ir.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var prog ir.Program
	if err := dec.Decode(&prog); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &prog, nil
}

func loadJSON(path string) (*ir.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()

	var prog ir.Program
	if err := dec.Decode(&prog); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &prog, nil
}

// LoadSnapshot evaluates a saved snapshot file.
func (e *Evaluator) LoadSnapshot(ctx context.Context, file string) (*ir.Snapshot, error) {
	return e.evaluateSnapshot(ctx, pkl.FileSource(file))
}

// LoadSnapshotText evaluates snapshot content held in memory, such as a
// decrypted or downloaded snapshot.
func (e *Evaluator) LoadSnapshotText(ctx context.Context, text string) (*ir.Snapshot, error) {
	return e.evaluateSnapshot(ctx, pkl.TextSource(text))
}

func (e *Evaluator) evaluateSnapshot(ctx context.Context, source *pkl.ModuleSource) (*ir.Snapshot, error) {
	evaluator, err := pkl.NewEvaluator(ctx, pkl.PreconfiguredOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create PKL evaluator: %w", err)
	}
	defer evaluator.Close()

	var snap ir.Snapshot
	if err := evaluator.EvaluateModule(ctx, source, &snap); err != nil {
		return nil, fmt.Errorf("failed to evaluate snapshot: %w", err)
	}
	return &snap, nil
}
