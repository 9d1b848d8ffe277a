package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var fmtCheck bool

var fmtCmd = &cobra.Command{
	Use:   "fmt [paths...]",
	Short: "Format declaration files",
	Long: `Formats .pkl, .yaml and .json declaration files in place.

By default, formats every declaration file under the current directory.
Use --check to report unformatted files without changing them.

Formatting rules:
  - Trim trailing whitespace from lines
  - Collapse runs of blank lines to one
  - End with a single newline`,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "Check formatting without making changes (exit 1 if not formatted)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := findDeclarationFiles(p)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}

	return formatFiles(cmd.OutOrStdout(), files, fmtCheck)
}

func formatFiles(w io.Writer, files []string, check bool) error {
	if len(files) == 0 {
		fmt.Fprintln(w, "No declaration files found.")
		return nil
	}

	unformatted := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		formatted := formatDeclarations(string(data))
		if string(data) == formatted {
			continue
		}
		unformatted++

		if check {
			fmt.Fprintf(w, "%s: not formatted\n", file)
			continue
		}
		if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
		fmt.Fprintf(w, "%s: formatted\n", file)
	}

	if check && unformatted > 0 {
		return fmt.Errorf("%d file(s) not formatted", unformatted)
	}
	if unformatted == 0 {
		fmt.Fprintf(w, "All %d file(s) are properly formatted.\n", len(files))
	} else if !check {
		fmt.Fprintf(w, "Formatted %d file(s).\n", unformatted)
	}
	return nil
}

// findDeclarationFiles walks dir for files the evaluator can load, skipping
// hidden directories such as the state directory.
func findDeclarationFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".pkl", ".yaml", ".yml", ".json":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func formatDeclarations(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	result := strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return result
}
