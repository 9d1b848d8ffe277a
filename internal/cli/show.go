package cli

import (
	"fmt"
	"path/filepath"

	"github.com/picklr-io/clockwork/internal/eval"
	"github.com/picklr-io/clockwork/internal/state"
	"github.com/spf13/cobra"
)

var (
	showJSON          bool
	showBackend       string
	showBackendConfig []string
)

var showCmd = &cobra.Command{
	Use:   "show <component>",
	Short: "Show the saved snapshot of a component",
	Long:  `Displays the snapshot written by the last 'clockwork run --save' of a component.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
	showCmd.Flags().StringVar(&showBackend, "backend", "local", "Snapshot backend: local or s3")
	showCmd.Flags().StringArrayVar(&showBackendConfig, "backend-config", nil, "Backend setting as key=value (repeatable)")
}

func runShow(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(stateDir)
	if err != nil {
		return fmt.Errorf("failed to resolve state directory: %w", err)
	}

	cfg, err := state.ParseBackendConfig(showBackend, showBackendConfig)
	if err != nil {
		return err
	}
	backend, err := state.NewBackend(cmd.Context(), cfg, dir, eval.NewEvaluator(dir))
	if err != nil {
		return fmt.Errorf("failed to initialize snapshot backend: %w", err)
	}

	snap, err := backend.Read(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	out := cmd.OutOrStdout()
	if showJSON {
		return writeJSON(out, snap)
	}

	fmt.Fprintf(out, "Snapshot: component=%s version=%d serial=%d\n", snap.Component, snap.Version, snap.Serial)
	fmt.Fprintf(out, "Inputs: %v\n\n", snap.Inputs)
	renderSnapshot(out, snap)
	return nil
}
