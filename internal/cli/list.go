package cli

import (
	"fmt"
	"strings"

	"github.com/picklr-io/clockwork/internal/ir"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List the components of a declaration file",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}

// signature is the outward shape of a component.
type signature struct {
	Name    string   `json:"name"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
	Uses    []string `json:"uses,omitempty"`
}

func signatureOf(c *ir.Component) signature {
	sig := signature{Name: c.Name, Inputs: []string{}, Outputs: []string{}}
	for _, p := range c.Parts {
		switch {
		case p.IsInput():
			sig.Inputs = append(sig.Inputs, p.Name)
		case p.IsOutput():
			sig.Outputs = append(sig.Outputs, p.Name)
		}
	}
	for _, u := range c.Uses {
		sig.Uses = append(sig.Uses, u.Component)
	}
	return sig
}

func runList(cmd *cobra.Command, args []string) error {
	prog, err := loadProgram(cmd, args[0])
	if err != nil {
		return err
	}

	sigs := make([]signature, 0, len(prog.Components))
	for _, c := range prog.Components {
		sigs = append(sigs, signatureOf(c))
	}

	out := cmd.OutOrStdout()
	if listJSON {
		return writeJSON(out, sigs)
	}
	for _, s := range sigs {
		fmt.Fprintf(out, "%s(%s) -> (%s)\n", s.Name, strings.Join(s.Inputs, ", "), strings.Join(s.Outputs, ", "))
	}
	return nil
}
