package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"apix/internal/config"
	"apix/internal/diag"
	"apix/internal/diagfmt"
	"apix/internal/driver"
	"apix/internal/version"
)

var runCmd = &cobra.Command{
	Use:   "run [entry.d.ts]",
	Short: "Analyze one package",
	Long: `Analyze the package described by apix.toml (found in the current folder or a parent)
or by --config. With an entry point argument no project file is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("config", "c", "", "path to apix.toml")
	runCmd.Flags().BoolP("local", "l", false, "local build: update the API report baseline when it changed")
	runCmd.Flags().Bool("context", true, "print the source line under located messages")
	runCmd.Flags().String("diagnostics-format", "", "also write messages as json or sarif")
	runCmd.Flags().String("diagnostics-out", "", "file for --diagnostics-format output (default stdout)")
	runCmd.Flags().Bool("clear-cache", false, "drop the analysis cache before running")
}

func runRun(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath, args)
	if err != nil {
		return err
	}

	local, err := cmd.Flags().GetBool("local")
	if err != nil {
		return err
	}
	out, err := newOutput(cmd, cfg.Root)
	if err != nil {
		return err
	}

	cache, err := openCache(cmd, cfg)
	if err != nil {
		return err
	}

	if !out.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", version.ToolName, version.Colored())
		fmt.Fprintf(cmd.ErrOrStderr(), "Analysis will use the project file: %s\n", cfg.Path)
	}
	res, err := driver.Run(cmd.Context(), cfg, driver.Options{Logger: out.logger(), LocalBuild: local, Cache: cache})
	if err != nil {
		return err
	}
	if err := out.finish(cmd); err != nil {
		return err
	}
	return reportResult(cmd, out, res)
}

// loadConfig resolves the project: an explicit file, an entry point argument, or discovery.
func loadConfig(configPath string, args []string) (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return findConfig(args[0])
		}
		if filepath.Base(args[0]) == config.FileName {
			return config.Load(args[0])
		}
		return config.ForEntryPoint(args[0])
	}
	return findConfig(".")
}

func findConfig(dir string) (*config.Config, error) {
	path, ok, err := config.Find(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no %s found\nrun \"apix init\" to create one, or pass the entry point explicitly:\n  apix run path/to/index.d.ts", config.FileName)
	}
	return config.Load(path)
}

func openCache(cmd *cobra.Command, cfg *config.Config) (*driver.DiskCache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	cache, err := driver.OpenDiskCache(cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if clear, _ := cmd.Flags().GetBool("clear-cache"); clear {
		if err := cache.DropAll(); err != nil {
			return nil, fmt.Errorf("clear cache: %w", err)
		}
	}
	return cache, nil
}

// output wires the console logger and the optional machine-readable message collector.
type output struct {
	console   *diagfmt.Console
	collector *diagfmt.Collector
	format    string
	target    string
	quiet     bool
	timings   bool
}

func newOutput(cmd *cobra.Command, root string) (*output, error) {
	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")
	timings, _ := cmd.Flags().GetBool("timings")
	withContext := true
	if cmd.Flags().Lookup("context") != nil {
		withContext, _ = cmd.Flags().GetBool("context")
	}

	o := &output{quiet: quiet, timings: timings}
	o.console = diagfmt.NewConsole(cmd.ErrOrStderr(), nil, diagfmt.ConsoleOpts{Color: useColor(), Context: withContext})
	switch {
	case verbose:
		o.console.Min = diag.LevelVerbose
	case quiet:
		o.console.Min = diag.LevelWarning
	}

	if cmd.Flags().Lookup("diagnostics-format") != nil {
		o.format, _ = cmd.Flags().GetString("diagnostics-format")
		o.target, _ = cmd.Flags().GetString("diagnostics-out")
	}
	switch strings.ToLower(o.format) {
	case "":
	case "json", "sarif":
		o.format = strings.ToLower(o.format)
		o.collector = &diagfmt.Collector{}
	default:
		return nil, fmt.Errorf("unsupported diagnostics format %q (must be json or sarif)", o.format)
	}
	o.console.SetRoot(root)
	return o, nil
}

func (o *output) logger() diag.Logger {
	if o.collector == nil {
		return o.console
	}
	return diagfmt.Tee{o.console, o.collector}
}

// finish writes the collected messages in the requested format.
func (o *output) finish(cmd *cobra.Command) error {
	if o.collector == nil {
		return nil
	}
	var w io.Writer = cmd.OutOrStdout()
	if o.target != "" && o.target != "-" {
		f, err := os.Create(o.target)
		if err != nil {
			return fmt.Errorf("open diagnostics output: %w", err)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}
	if o.format == "sarif" {
		return o.collector.WriteSarif(w, diagfmt.SarifRunMeta{
			ToolName:       version.ToolName,
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	}
	return o.collector.WriteJSON(w)
}

func reportResult(cmd *cobra.Command, out *output, res *driver.Result) error {
	w := cmd.ErrOrStderr()
	if out.timings {
		fmt.Fprint(w, res.Timing.Summary())
	}
	if res.Succeeded {
		if !out.quiet {
			fmt.Fprintln(w, color.New(color.FgGreen).Sprint(version.ToolName+" completed successfully"))
		}
		return nil
	}
	fmt.Fprintln(w, color.New(color.FgRed, color.Bold).Sprintf("%s completed with %d error(s) and %d warning(s)",
		version.ToolName, res.ErrorCount, res.WarningCount))
	if res.APIReportChanged && res.ErrorCount == 0 {
		fmt.Fprintln(w, "the API report changed; rerun with --local to update the baseline")
	}
	return errFailed
}
