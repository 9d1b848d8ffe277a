package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/picklr-io/clockwork/internal/ir"
	"github.com/picklr-io/clockwork/internal/logging"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console <file>",
	Short: "Run components interactively",
	Long: `Loads a declaration file and reads component calls from standard input,
one per line, printing the outputs and final states of each run.

  > full_adder(push, pull, push)
  > exit`,
	Args: cobra.ExactArgs(1),
	RunE: runConsole,
}

func runConsole(cmd *cobra.Command, args []string) error {
	prog, err := loadProgram(cmd, args[0])
	if err != nil {
		return err
	}
	return repl(cmd.InOrStdin(), cmd.OutOrStdout(), prog)
}

func printBanner(w io.Writer, prog *ir.Program) {
	title := "clockwork computation"
	fmt.Fprintf(w, "%s%s%s\n", colorize(colorGreen), title, colorize(colorReset))
	fmt.Fprintln(w, strings.Repeat("¯", len(title)))
	fmt.Fprintln(w, "[ Welcome to interactive mode. The following components were parsed: ]")
	for _, name := range prog.Names() {
		fmt.Fprintf(w, "    - %s\n", name)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Enter a component name and inputs to run it. Enter 'exit' to exit.")
	fmt.Fprintln(w, "Example: my_component(push, 1)")
	fmt.Fprintln(w)
}

// repl serves console lines until "exit" or end of input. A failing line
// prints its error and the session continues.
func repl(in io.Reader, out io.Writer, prog *ir.Program) error {
	printBanner(out, prog)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return nil
		}

		if err := evalLine(out, prog, line); err != nil {
			logging.Debug("console line failed", "line", line, "error", err)
			fmt.Fprintf(out, "%sError:%s %v\n", colorize(colorRed), colorize(colorReset), err)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "\nBye!")
	return scanner.Err()
}

func evalLine(out io.Writer, prog *ir.Program, line string) error {
	name, tokens, err := parseCall(line)
	if err != nil {
		return err
	}
	result, err := simulate(prog, name, tokens)
	if err != nil {
		return err
	}
	renderSnapshot(out, result.snapshot())
	return nil
}
