package cli

import (
	"fmt"
	"io"

	"github.com/picklr-io/clockwork/internal/engine"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <file> [component]",
	Short: "Output a graph in DOT format",
	Long: `Without a component, prints which components use which in Graphviz DOT
format. With a component, prints its resolved part graph. Pipe the output to
'dot' to generate an image:

  clockwork graph gates.pkl full_adder | dot -Tpng > full_adder.png`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	prog, err := loadProgram(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 2 {
		comp, err := engine.NewResolver(prog).ResolveComponent(args[1])
		if err != nil {
			return err
		}
		return engine.WriteDOT(out, comp)
	}

	graph, err := engine.BuildUseGraph(prog)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	writeUseGraph(out, graph)
	return nil
}

func writeUseGraph(w io.Writer, graph *engine.UseGraph) {
	fmt.Fprintln(w, "digraph clockwork {")
	fmt.Fprintln(w, "  rankdir = \"BT\";")
	fmt.Fprintln(w, "  node [shape = rect];")
	fmt.Fprintln(w)

	for _, name := range graph.Order() {
		fmt.Fprintf(w, "  %q;\n", name)
	}
	fmt.Fprintln(w)

	for _, name := range graph.Order() {
		for _, dep := range graph.Dependencies(name) {
			fmt.Fprintf(w, "  %q -> %q;\n", name, dep)
		}
	}
	fmt.Fprintln(w, "}")
}
