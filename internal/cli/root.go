package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/picklr-io/clockwork/internal/engine"
	"github.com/picklr-io/clockwork/internal/logging"
	"github.com/spf13/cobra"
)

// MaxStepsEnvVar sets the propagation budget when --max-steps is not given.
const MaxStepsEnvVar = "CLOCKWORK_MAX_STEPS"

var (
	logLevel string
	maxSteps int
	stateDir string
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "clockwork",
	Short: "Simulate circuits of gears and rods",
	Long: `Clockwork resolves declarations of mechanical components, built from
gears and rods linked by connections and sub-assembly uses, and simulates them:
input parts are set, forces propagate, and the final state of every part is
reported.

Declarations are read from Pkl, YAML or JSON files.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env "+logging.LevelEnvVar+")")
	rootCmd.PersistentFlags().IntVar(&maxSteps, "max-steps", 0, fmt.Sprintf("Propagation budget per simulation (env %s, default %d)", MaxStepsEnvVar, engine.DefaultMaxSteps))
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", ".clockwork", "Directory holding saved snapshots")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		level = os.Getenv(logging.LevelEnvVar)
	}
	logging.Init(level)

	if !cmd.Flags().Changed("max-steps") {
		if env := os.Getenv(MaxStepsEnvVar); env != "" {
			n, err := strconv.Atoi(env)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid %s %q: must be a positive integer", MaxStepsEnvVar, env)
			}
			maxSteps = n
		}
	}
	if maxSteps < 0 {
		return fmt.Errorf("--max-steps must not be negative")
	}
	return nil
}
