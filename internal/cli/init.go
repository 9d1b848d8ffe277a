package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a new clockwork project",
	Long: `Creates the snapshot directory and a starter declaration file (main.yaml)
holding a not gate and an or gate.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const starterDeclarations = `# clockwork declarations
#
#   clockwork run main.yaml not push
#   clockwork console main.yaml
components:
  - name: not
    parts:
      - name: x
        designator: input
        kind: rod
        connections:
          - {to: my_gear, options: {gearOffset: 0}}
      - name: my_gear
        kind: gear
        teeth: 2
        connections:
          - {to: y, options: {gearOffset: 1}}
      - {name: y, designator: output, kind: rod}

  - name: or
    parts:
      - name: x
        designator: input
        kind: rod
        connections:
          - {to: joiner, options: {rodAttachment: push}}
      - name: y
        designator: input
        kind: rod
        connections:
          - {to: joiner, options: {rodAttachment: push}}
      - {name: joiner, designator: output, kind: rod, spring: pull}
`

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	return initProject(cmd.OutOrStdout(), dir, stateDir)
}

// initProject creates the snapshot directory under dir and writes main.yaml
// unless it already exists.
func initProject(w io.Writer, dir, stateDir string) error {
	snapshots := filepath.Join(dir, stateDir, "snapshots")
	if err := os.MkdirAll(snapshots, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", snapshots, err)
	}

	decl := filepath.Join(dir, "main.yaml")
	if _, err := os.Stat(decl); os.IsNotExist(err) {
		if err := os.WriteFile(decl, []byte(starterDeclarations), 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", decl, err)
		}
		fmt.Fprintf(w, "Created %s\n", decl)
	}

	fmt.Fprintln(w, "\nclockwork initialized successfully!")
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  1. Edit main.yaml to declare your components")
	fmt.Fprintln(w, "  2. Run 'clockwork validate main.yaml'")
	fmt.Fprintln(w, "  3. Run 'clockwork run main.yaml not push'")
	return nil
}
