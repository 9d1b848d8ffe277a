package cli

import (
	"fmt"

	"github.com/picklr-io/clockwork/internal/state"
	"github.com/spf13/cobra"
)

var (
	runJSON          bool
	runSave          bool
	runBackend       string
	runBackendConfig []string
)

var runCmd = &cobra.Command{
	Use:   "run <file> <component> [inputs...]",
	Short: "Simulate a component once",
	Long: `Resolves a component from a declaration file, drives its input parts with
the given values and prints the outputs and the final state of every part.

Each input is "push", "pull" or a decimal rotation, one per input part in
declaration order:

  clockwork run gates.pkl full_adder push pull push`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Output in JSON format")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Save the result as a snapshot")
	runCmd.Flags().StringVar(&runBackend, "backend", "local", "Snapshot backend: local or s3")
	runCmd.Flags().StringArrayVar(&runBackendConfig, "backend-config", nil, "Backend setting as key=value (repeatable)")
}

func runRun(cmd *cobra.Command, args []string) error {
	file, component, tokens := args[0], args[1], args[2:]

	prog, err := loadProgram(cmd, file)
	if err != nil {
		return err
	}

	result, err := simulate(prog, component, tokens)
	if err != nil {
		return err
	}
	snap := result.snapshot()

	if runSave {
		evaluator, _, err := newEvaluator(file)
		if err != nil {
			return err
		}
		cfg, err := state.ParseBackendConfig(runBackend, runBackendConfig)
		if err != nil {
			return err
		}
		backend, err := state.NewBackend(cmd.Context(), cfg, stateDir, evaluator)
		if err != nil {
			return fmt.Errorf("failed to initialize snapshot backend: %w", err)
		}
		if err := state.Save(cmd.Context(), backend, snap); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if runJSON {
		return writeJSON(out, snap)
	}
	renderSnapshot(out, snap)
	if runSave {
		fmt.Fprintf(out, "\nSnapshot saved (serial %d).\n", snap.Serial+1)
	}
	return nil
}
