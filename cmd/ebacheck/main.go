package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ebacheck/internal/errors"
	"ebacheck/internal/logger"
	"ebacheck/internal/prof"
	"ebacheck/internal/version"
)

// Exit codes.
const (
	exitClean = 0
	exitFound = 1 // errors (or warnings with --warnings-as-errors)
	exitFatal = 2
)

var rootCmd = &cobra.Command{
	Use:           "ebacheck",
	Short:         "EBA filing rules validator",
	Long:          `ebacheck validates resolved XBRL instance models against the EBA Filing Rules`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, err := cmd.Flags().GetCount("verbose")
		if err != nil {
			return fmt.Errorf("failed to get verbose flag: %w", err)
		}
		logJSON, err := cmd.Flags().GetBool("log-json")
		if err != nil {
			return fmt.Errorf("failed to get log-json flag: %w", err)
		}
		if err := logger.Initialize(verbosity, logJSON); err != nil {
			return err
		}
		return setupProfiling(cmd)
	},
}

// profiling is stopped by execute, also when a command fails.
var profiling *prof.Session

func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = flags.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return nil
	}
	profiling, err = prof.Start(opts)
	return err
}

// exitCode is returned by commands that finished normally but must not
// exit with 0.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "log more (-v info, -vv debug)")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON to stderr")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to show (0=all)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime trace to file")

	os.Exit(execute(rootCmd, os.Stderr))
}

func execute(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if stopErr := profiling.Stop(); stopErr != nil {
		fmt.Fprintf(stderr, "ebacheck: %v\n", stopErr)
	}
	logger.Cleanup()
	if err == nil {
		return exitClean
	}
	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}
	fmt.Fprintf(stderr, "ebacheck: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		for _, line := range strings.Split(hint, "\n") {
			fmt.Fprintf(stderr, "  hint: %s\n", line)
		}
	}
	return exitFatal
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(colorFlag) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(os.Stdout), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
}
