package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/picklr-io/clockwork/internal/engine"
	"github.com/picklr-io/clockwork/internal/eval"
	"github.com/picklr-io/clockwork/internal/ir"
	"github.com/picklr-io/clockwork/internal/state"
	"github.com/spf13/cobra"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorBold  = "\033[1m"
	colorReset = "\033[0m"
)

// colorize returns code unless colors are disabled.
func colorize(code string) string {
	if noColor {
		return ""
	}
	return code
}

func newEvaluator(file string) (*eval.Evaluator, string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve path %s: %w", file, err)
	}
	return eval.NewEvaluator(filepath.Dir(abs)), abs, nil
}

// loadProgram reads and validates the declarations in file.
func loadProgram(cmd *cobra.Command, file string) (*ir.Program, error) {
	evaluator, abs, err := newEvaluator(file)
	if err != nil {
		return nil, err
	}
	prog, err := evaluator.LoadProgram(cmd.Context(), abs)
	if err != nil {
		return nil, fmt.Errorf("failed to load declarations: %w", err)
	}
	return prog, nil
}

func newEngine() *engine.Engine {
	return engine.NewEngine(engine.WithMaxSteps(maxSteps))
}

// runResult is one simulated component with the values it was driven with.
type runResult struct {
	component *engine.Component
	inputs    []engine.Value
	states    *engine.Snapshot
}

// simulate parses the input tokens, resolves the component and runs it.
// Tokens are checked before resolution so malformed input never reaches it.
func simulate(prog *ir.Program, component string, tokens []string) (*runResult, error) {
	inputs, err := engine.ParseValues(tokens)
	if err != nil {
		return nil, err
	}

	comp, err := engine.NewResolver(prog).ResolveComponent(component)
	if err != nil {
		return nil, err
	}

	states, err := newEngine().Simulate(comp.Inputs, inputs)
	if err != nil {
		return nil, fmt.Errorf("simulating %s: %w", component, err)
	}

	return &runResult{component: comp, inputs: inputs, states: states}, nil
}

// snapshot converts the result into its persisted form.
func (r *runResult) snapshot() *ir.Snapshot {
	snap := &ir.Snapshot{
		Version:   state.SnapshotVersion,
		Component: r.component.Name,
		Inputs:    make([]string, 0, len(r.inputs)),
		Outputs:   make([]*ir.PartState, 0, len(r.component.Outputs)),
		States:    make([]*ir.PartState, 0, r.states.Len()),
	}
	for _, v := range r.inputs {
		snap.Inputs = append(snap.Inputs, v.String())
	}
	for _, p := range r.component.Outputs {
		snap.Outputs = append(snap.Outputs, &ir.PartState{Name: p.PartName(), Value: p.Value().String()})
	}
	for _, name := range r.states.Names() {
		v, _ := r.states.Get(name)
		snap.States = append(snap.States, &ir.PartState{Name: name, Value: v.String()})
	}
	return snap
}

// renderSnapshot prints the outputs followed by every recorded state.
func renderSnapshot(w io.Writer, snap *ir.Snapshot) {
	fmt.Fprintf(w, "%sOutputs:%s\n", colorize(colorBold), colorize(colorReset))
	if len(snap.Outputs) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, s := range snap.Outputs {
		fmt.Fprintf(w, "  %s = %s\n", s.Name, s.Value)
	}

	fmt.Fprintln(w, "After execution states were:")
	for _, s := range snap.States {
		fmt.Fprintf(w, "  %s = %s\n", s.Name, s.Value)
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// parseCall splits a console line of the form name(arg, arg) into the
// component name and its argument tokens. "name()" has no arguments.
func parseCall(line string) (string, []string, error) {
	line = strings.TrimSpace(line)
	name, rest, ok := strings.Cut(line, "(")
	if !ok || !strings.HasSuffix(rest, ")") || strings.Contains(rest, "(") {
		return "", nil, fmt.Errorf("invalid input %q: expected component(input, ...)", line)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("invalid input %q: missing component name", line)
	}

	body := strings.TrimSpace(strings.TrimSuffix(rest, ")"))
	if body == "" {
		return name, nil, nil
	}

	args := strings.Split(body, ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return name, args, nil
}
