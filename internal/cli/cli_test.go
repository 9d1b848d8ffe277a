package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/picklr-io/clockwork/internal/engine"
	"github.com/picklr-io/clockwork/internal/eval"
	"github.com/picklr-io/clockwork/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gates(t *testing.T) *ir.Program {
	t.Helper()
	prog, err := eval.NewEvaluator("testdata").LoadProgram(context.Background(), filepath.Join("testdata", "gates.yaml"))
	require.NoError(t, err)
	return prog
}

func TestParseCall(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantArgs []string
		wantErr  bool
	}{
		{line: "not(push)", wantName: "not", wantArgs: []string{"push"}},
		{line: "full_adder(push, pull,push)", wantName: "full_adder", wantArgs: []string{"push", "pull", "push"}},
		{line: "  adder ( 3 , 4 )  ", wantName: "adder", wantArgs: []string{"3", "4"}},
		{line: "clock()", wantName: "clock", wantArgs: nil},
		{line: "not push", wantErr: true},
		{line: "not(push", wantErr: true},
		{line: "not((push))", wantErr: true},
		{line: "(push)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, args, err := parseCall(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestColorize(t *testing.T) {
	noColor = false
	assert.Equal(t, colorRed, colorize(colorRed))

	noColor = true
	assert.Equal(t, "", colorize(colorRed))

	noColor = false
}

func TestSimulate_FullAdder(t *testing.T) {
	prog := gates(t)

	tests := []struct {
		cin, b, a string
		cout, sum string
	}{
		{"pull", "pull", "pull", "pull", "pull"},
		{"push", "pull", "pull", "pull", "push"},
		{"pull", "push", "push", "push", "pull"},
		{"push", "push", "push", "push", "push"},
		{"push", "pull", "push", "push", "pull"},
	}

	for _, tt := range tests {
		t.Run(strings.Join([]string{tt.cin, tt.b, tt.a}, ","), func(t *testing.T) {
			result, err := simulate(prog, "full_adder", []string{tt.cin, tt.b, tt.a})
			require.NoError(t, err)

			snap := result.snapshot()
			require.Len(t, snap.Outputs, 2)
			assert.Equal(t, "cout", snap.Outputs[0].Name)
			assert.Equal(t, tt.cout, snap.Outputs[0].Value)
			assert.Equal(t, "sum", snap.Outputs[1].Name)
			assert.Equal(t, tt.sum, snap.Outputs[1].Value)
			assert.Equal(t, []string{tt.cin, tt.b, tt.a}, snap.Inputs)
		})
	}
}

func TestSimulate_InputsParsedBeforeResolution(t *testing.T) {
	// A bad token is reported even though the component does not exist.
	_, err := simulate(gates(t), "nand", []string{"sideways"})
	assert.ErrorIs(t, err, engine.ErrInvalidInput)

	_, err = simulate(gates(t), "nand", []string{"push"})
	assert.ErrorIs(t, err, engine.ErrComponentNotFound)

	_, err = simulate(gates(t), "not", []string{"push", "pull"})
	assert.ErrorIs(t, err, engine.ErrArityMismatch)
}

func TestRenderSnapshot(t *testing.T) {
	noColor = true
	defer func() { noColor = false }()

	result, err := simulate(gates(t), "not", []string{"push"})
	require.NoError(t, err)

	var out bytes.Buffer
	renderSnapshot(&out, result.snapshot())
	assert.Equal(t, "Outputs:\n  y = pull\nAfter execution states were:\n  x = push\n  my_gear = 1\n  y = pull\n", out.String())
}

func TestWriteJSON(t *testing.T) {
	result, err := simulate(gates(t), "nor", []string{"pull", "pull"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeJSON(&out, result.snapshot()))

	var snap ir.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, "nor", snap.Component)
	require.Len(t, snap.Outputs, 1)
	assert.Equal(t, "push", snap.Outputs[0].Value)

	names := make([]string, 0, len(snap.States))
	for _, s := range snap.States {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"x", "y"}, names[:2])
	assert.Contains(t, names, "or[0].joiner")
	assert.Contains(t, names, "not[1].my_gear")
}

func TestRepl(t *testing.T) {
	noColor = true
	defer func() { noColor = false }()

	in := strings.NewReader("not(push)\n\nnot(sideways)\nnand(push)\nexit\nnot(pull)\n")
	var out bytes.Buffer
	require.NoError(t, repl(in, &out, gates(t)))

	text := out.String()
	assert.Contains(t, text, "clockwork computation\n")
	assert.Contains(t, text, "    - full_adder\n")
	assert.Contains(t, text, "Outputs:\n  y = pull\n")
	assert.Contains(t, text, "Error: invalid input")
	assert.Contains(t, text, "Error: component not found: nand")
	assert.True(t, strings.HasSuffix(text, "> Bye!\n"))
	assert.Equal(t, 1, strings.Count(text, "Outputs:"), "lines after exit are not served")
}

func TestRepl_EndOfInput(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, repl(strings.NewReader("or(push, pull)\n"), &out, gates(t)))
	assert.Contains(t, out.String(), "  joiner = push\n")
	assert.True(t, strings.HasSuffix(out.String(), "Bye!\n"))
}

func TestSignatureOf(t *testing.T) {
	prog := gates(t)
	sig := signatureOf(prog.Find("full_adder"))
	assert.Equal(t, []string{"cin", "b", "a"}, sig.Inputs)
	assert.Equal(t, []string{"cout", "sum"}, sig.Outputs)
	assert.Equal(t, []string{"half_adder", "half_adder", "xor"}, sig.Uses)
}

func TestWriteUseGraph(t *testing.T) {
	graph, err := engine.BuildUseGraph(gates(t))
	require.NoError(t, err)

	var out bytes.Buffer
	writeUseGraph(&out, graph)
	assert.Contains(t, out.String(), `"nor" -> "or";`)
	assert.Contains(t, out.String(), `"full_adder" -> "half_adder";`)
	assert.Equal(t, 1, strings.Count(out.String(), `"full_adder" -> "half_adder";`))
}

func TestRunCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--json", filepath.Join("testdata", "gates.yaml"), "half_adder", "push", "push"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		runJSON = false
	}()

	require.NoError(t, rootCmd.Execute())

	var snap ir.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, "half_adder", snap.Component)
	require.Len(t, snap.Outputs, 2)
	assert.Equal(t, "push", snap.Outputs[0].Value)
	assert.Equal(t, "pull", snap.Outputs[1].Value)
}

func TestValidateCommand_Cycle(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"validate", filepath.Join("testdata", "cycle.yaml")})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, engine.ErrComponentCycle)
}

func TestInitProject(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, initProject(&out, dir, ".clockwork"))

	assert.DirExists(t, filepath.Join(dir, ".clockwork", "snapshots"))
	assert.Contains(t, out.String(), "Created")

	prog, err := eval.NewEvaluator(dir).LoadProgram(context.Background(), filepath.Join(dir, "main.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"not", "or"}, prog.Names())

	result, err := simulate(prog, "not", []string{"pull"})
	require.NoError(t, err)
	assert.Equal(t, "push", result.snapshot().Outputs[0].Value)

	// A second run keeps the existing file.
	out.Reset()
	require.NoError(t, initProject(&out, dir, ".clockwork"))
	assert.NotContains(t, out.String(), "Created")
}

func TestFormatDeclarations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean", in: "a: 1\n", want: "a: 1\n"},
		{name: "trailing whitespace", in: "a: 1  \nb: 2\t\n", want: "a: 1\nb: 2\n"},
		{name: "missing newline", in: "a: 1", want: "a: 1\n"},
		{name: "extra newlines at end", in: "a: 1\n\n\n", want: "a: 1\n"},
		{name: "blank runs", in: "a: 1\n\n\n\nb: 2\n", want: "a: 1\n\nb: 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDeclarations(tt.in))
		})
	}
}

func TestFormatFiles(t *testing.T) {
	dir := t.TempDir()
	messy := filepath.Join(dir, "main.yaml")
	require.NoError(t, os.WriteFile(messy, []byte("components: []   \n\n\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".clockwork"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".clockwork", "hidden.pkl"), []byte("x = 1  "), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored  "), 0644))

	files, err := findDeclarationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{messy}, files)

	var out bytes.Buffer
	err = formatFiles(&out, files, true)
	assert.ErrorContains(t, err, "1 file(s) not formatted")
	assert.Contains(t, out.String(), "main.yaml: not formatted")

	out.Reset()
	require.NoError(t, formatFiles(&out, files, false))
	data, err := os.ReadFile(messy)
	require.NoError(t, err)
	assert.Equal(t, "components: []\n", string(data))

	out.Reset()
	require.NoError(t, formatFiles(&out, files, true))
	assert.Contains(t, out.String(), "All 1 file(s) are properly formatted.")
}

func TestStateCommands(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		runSave = false
		stateDir = ".clockwork"
	}()

	rootCmd.SetArgs([]string{"run", "--state-dir", dir, "--save", filepath.Join("testdata", "gates.yaml"), "not", "push"})
	require.NoError(t, rootCmd.Execute())
	assert.FileExists(t, filepath.Join(dir, "snapshots", "not.pkl"))

	out.Reset()
	rootCmd.SetArgs([]string{"state", "list", "--state-dir", dir})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "  not\n")
	assert.Contains(t, out.String(), "Total: 1 snapshot(s)")

	out.Reset()
	rootCmd.SetArgs([]string{"state", "rm", "--state-dir", dir, "not"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Removed snapshot of not")
	assert.NoFileExists(t, filepath.Join(dir, "snapshots", "not.pkl"))
}
