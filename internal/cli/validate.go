package cli

import (
	"fmt"

	"github.com/picklr-io/clockwork/internal/engine"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a declaration file",
	Long: `Loads a declaration file, checks every declaration and its connection
options, checks that component uses form no cycle and resolves every component.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n", args[0])

	prog, err := loadProgram(cmd, args[0])
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	graph, err := engine.BuildUseGraph(prog)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	resolver := engine.NewResolver(prog)
	for _, name := range graph.Order() {
		fmt.Fprintf(out, "Checking %s... ", name)
		if _, err := resolver.ResolveComponent(name); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(out, "OK")
	}

	fmt.Fprintf(out, "\n%d components are valid!\n", len(graph.Order()))
	return nil
}
