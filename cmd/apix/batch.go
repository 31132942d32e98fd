package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"apix/internal/config"
	"apix/internal/diag"
	"apix/internal/driver"
	"apix/internal/ui"
)

var batchCmd = &cobra.Command{
	Use:   "batch <project>...",
	Short: "Analyze several packages in parallel",
	Long:  `Each argument is a folder containing apix.toml or the path of an apix.toml file.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().IntP("jobs", "j", 0, "max packages analyzed at once (0 = GOMAXPROCS)")
	batchCmd.Flags().BoolP("local", "l", false, "local build: update changed API report baselines")
	batchCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	local, err := cmd.Flags().GetBool("local")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	cfgs := make([]*config.Config, 0, len(args))
	for _, arg := range args {
		cfg, err := loadProject(arg)
		if err != nil {
			return err
		}
		cfgs = append(cfgs, cfg)
	}

	out, err := newOutput(cmd, "")
	if err != nil {
		return err
	}
	opts := driver.BatchOptions{Jobs: jobs, Options: driver.Options{LocalBuild: local}}
	for _, cfg := range cfgs {
		if cfg.Cache.Enabled {
			cache, err := openCache(cmd, cfg)
			if err != nil {
				return err
			}
			opts.Cache = cache
			break
		}
	}

	var results []*driver.Result
	if shouldUseTUI(mode) && !out.quiet {
		// the TUI owns the terminal; messages are printed per package afterwards
		buffered := make([]*bufferedLogger, len(cfgs))
		for i := range buffered {
			buffered[i] = &bufferedLogger{}
		}
		results, err = runBatchWithUI(cmd.Context(), cfgs, opts, buffered)
		for i, cfg := range cfgs {
			out.console.SetRoot(cfg.Root)
			buffered[i].replay(out.console)
		}
	} else {
		opts.Logger = out.console
		results, err = driver.RunBatch(cmd.Context(), cfgs, opts)
	}
	if err != nil {
		return err
	}
	return summarizeBatch(cmd, out, results)
}

// loadProject accepts a folder holding apix.toml or the file itself.
func loadProject(arg string) (*config.Config, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		arg = filepath.Join(arg, config.FileName)
	}
	return config.Load(arg)
}

// runBatchWithUI shows the progress model while the batch runs. Each package
// logs into its own buffer, replayed once the UI has released the terminal.
func runBatchWithUI(ctx context.Context, cfgs []*config.Config, opts driver.BatchOptions, loggers []*bufferedLogger) ([]*driver.Result, error) {
	events := make(chan driver.Event, 256)
	opts.Observer = func(ev driver.Event) { events <- ev }

	type outcome struct {
		results []*driver.Result
		err     error
	}
	done := make(chan outcome, 1)
	paths := make([]string, len(cfgs))
	byPath := make(map[string]*bufferedLogger, len(cfgs))
	for i, cfg := range cfgs {
		paths[i] = cfg.Path
		byPath[cfg.Path] = loggers[i]
	}
	opts.LoggerFor = func(cfg *config.Config) diag.Logger { return byPath[cfg.Path] }

	go func() {
		res, err := driver.RunBatch(ctx, cfgs, opts)
		done <- outcome{res, err}
		close(events)
	}()

	model := ui.NewProgressModel("apix batch", paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// drain so the driver never blocks on a closed UI
	for range events {
	}
	o := <-done
	if uiErr != nil {
		return o.results, uiErr
	}
	return o.results, o.err
}

type bufferedLogger struct {
	entries []diag.LoggedMessage
}

func (b *bufferedLogger) Log(level diag.LogLevel, m diag.Message) {
	b.entries = append(b.entries, diag.LoggedMessage{Level: level, Message: m})
}

func (b *bufferedLogger) replay(to diag.Logger) {
	for _, e := range b.entries {
		to.Log(e.Level, e.Message)
	}
}

func summarizeBatch(cmd *cobra.Command, out *output, results []*driver.Result) error {
	w := cmd.ErrOrStderr()
	failed := 0
	for _, res := range results {
		status := "ok"
		switch {
		case res.Err != nil:
			status = "error: " + res.Err.Error()
			failed++
		case !res.Succeeded:
			status = fmt.Sprintf("failed (%d errors, %d warnings)", res.ErrorCount, res.WarningCount)
			if res.APIReportChanged && res.ErrorCount == 0 {
				status = "API report changed"
			}
			failed++
		case res.Cached:
			status = "ok (cached)"
		}
		if !out.quiet || status != "ok" {
			fmt.Fprintf(w, "%-40s %s\n", res.PackageName, status)
		}
		if out.timings && res.Err == nil {
			fmt.Fprint(w, indent(res.Timing.Summary(), "  "))
		}
	}
	if failed > 0 {
		fmt.Fprintf(w, "%d of %d package(s) failed\n", failed, len(results))
		return errFailed
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l != "" {
			b.WriteString(prefix)
			b.WriteString(l)
		}
	}
	return b.String()
}
