package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"apix/internal/prof"
	"apix/internal/version"
)

// errFailed marks a run that finished but did not succeed; its details were already printed.
var errFailed = errors.New("analysis failed")

var rootCmd = &cobra.Command{
	Use:           "apix",
	Short:         "API report and declaration rollup generator",
	Long:          `apix analyzes the exported declarations of a package and produces an API report, .d.ts rollups and a doc model`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyColorFlag(cmd); err != nil {
			return err
		}
		if err := startProfiling(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdown()
	},
}

var (
	traceCleanup func()
	profSession  *prof.Session
)

// shutdown сбрасывает трассировку и профили; повторный вызов ничего не делает.
func shutdown() {
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
	if err := profSession.Stop(); err != nil {
		fmt.Fprintln(os.Stderr, "profiling:", err)
	}
	profSession = nil
}

func startProfiling(cmd *cobra.Command) error {
	var opts prof.Options
	var err error
	if opts.CPU, err = cmd.Flags().GetString("cpuprofile"); err != nil {
		return err
	}
	if opts.Mem, err = cmd.Flags().GetString("memprofile"); err != nil {
		return err
	}
	if opts.Trace, err = cmd.Flags().GetString("runtime-trace"); err != nil {
		return err
	}
	if !opts.Enabled() {
		return nil
	}
	profSession, err = prof.Start(opts)
	return err
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("verbose", false, "show verbose messages")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept by the ring tracer")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write CPU profile to file")
	rootCmd.PersistentFlags().String("memprofile", "", "write heap profile to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write Go runtime trace to file")

	if err := rootCmd.Execute(); err != nil {
		shutdown()
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func applyColorFlag(cmd *cobra.Command) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stderr)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func useColor() bool { return !color.NoColor }
