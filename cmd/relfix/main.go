package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jonseale44/Clarafi/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "relfix",
	Short: "Disable drizzle relations that reference nullable foreign keys",
	Long: `relfix comments out "name: one(...)" relation declarations in a drizzle
schema whose fields reference one of the configured nullable foreign-key
columns. Everything else in the file is left byte for byte.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// без подкоманды работает как fix
	Args: cobra.ArbitraryArgs,
	RunE: runFix,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupColor(cmd)
	},
}

// errChangesPending is returned by check --strict; main maps it to exit code 1
// without printing it.
var errChangesPending = errors.New("changes pending")

func init() {
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("config", "", "path to relfix.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to a file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("ui", "auto", "progress view for multi-file runs (auto|on|off)")
	rootCmd.PersistentFlags().Int("jobs", 0, "files processed in parallel (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().String("path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of warnings kept per file")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file")

	addRewriteFlags(rootCmd)
}

// main runs the root command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errChangesPending) {
			fmt.Fprintf(os.Stderr, "relfix: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// setupColor applies --color to fatih/color globally, so every renderer and
// the colored version string agree.
func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func useColor() bool {
	return !color.NoColor
}
