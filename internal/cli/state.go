package cli

import (
	"fmt"
	"path/filepath"

	"github.com/picklr-io/clockwork/internal/eval"
	"github.com/picklr-io/clockwork/internal/state"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Manage saved snapshots",
	Long:  `Commands for inspecting and removing snapshots kept in the local state directory.`,
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List components with a saved snapshot",
	Args:  cobra.NoArgs,
	RunE:  runStateList,
}

var stateRmCmd = &cobra.Command{
	Use:   "rm <component>",
	Short: "Remove the saved snapshot of a component",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateRm,
}

func init() {
	stateCmd.AddCommand(stateListCmd)
	stateCmd.AddCommand(stateRmCmd)
}

func loadStateMgr() (*state.Manager, error) {
	dir, err := filepath.Abs(stateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state directory: %w", err)
	}
	return state.NewManager(dir, eval.NewEvaluator(dir)), nil
}

func runStateList(cmd *cobra.Command, args []string) error {
	mgr, err := loadStateMgr()
	if err != nil {
		return err
	}

	components, err := mgr.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(components) == 0 {
		fmt.Fprintln(out, "No snapshots saved.")
		return nil
	}
	for _, c := range components {
		fmt.Fprintf(out, "  %s\n", c)
	}
	fmt.Fprintf(out, "\nTotal: %d snapshot(s)\n", len(components))
	return nil
}

func runStateRm(cmd *cobra.Command, args []string) error {
	mgr, err := loadStateMgr()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := mgr.Lock(ctx, args[0]); err != nil {
		return err
	}
	defer mgr.Unlock(ctx, args[0])

	if err := mgr.Remove(args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed snapshot of %s\n", args[0])
	return nil
}
