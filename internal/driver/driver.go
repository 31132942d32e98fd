// Package driver runs the analysis pipeline for configured packages: it loads
// the declaration files, analyzes and collects them, renders the outputs,
// compares the API report with its baseline and writes every enabled file.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"apix/internal/analyzer"
	"apix/internal/collector"
	"apix/internal/config"
	"apix/internal/diag"
	"apix/internal/emit"
	"apix/internal/observ"
	"apix/internal/program"
	"apix/internal/source"
	"apix/internal/trace"
	"apix/internal/version"
)

type Options struct {
	// Logger receives console output; nil discards it.
	Logger diag.Logger
	// LoggerFor, when set, picks the logger of each package instead of Logger.
	LoggerFor func(*config.Config) diag.Logger
	// LocalBuild overwrites a changed API report baseline. It is ORed with the configuration.
	LocalBuild bool
	// Cache is consulted when the configuration enables it; nil disables caching.
	Cache    *DiskCache
	Observer Observer
	// MaxErrors bounds compiler errors per file; 0 means unlimited.
	MaxErrors uint
}

// Result summarizes one package run.
type Result struct {
	RunID       string
	ConfigPath  string
	PackageName string

	// Succeeded is false when errors were logged, or when the API report
	// changed outside a local build.
	Succeeded        bool
	APIReportChanged bool
	ErrorCount       int
	WarningCount     int
	Cached           bool

	Timing observ.Report
	// Err is set when the run stopped before writing its outputs; RunBatch
	// stores per-package failures here.
	Err error
}

// outputs is what the pipeline renders; it is also the cached part of a run.
type outputs struct {
	report   string
	rollups  map[emit.RollupKind]string
	docModel []byte
	files    []string
}

// Run analyzes one package and writes its outputs.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "run")
	defer span.End("")
	res, err := run(ctx, cfg, opts)
	if res != nil {
		span.WithExtra("run_id", res.RunID)
	}
	return res, err
}

func run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if cfg == nil {
		return nil, errors.New("driver: nil config")
	}
	res := &Result{
		RunID:       uuid.NewString(),
		ConfigPath:  cfg.Path,
		PackageName: cfg.PackageName,
	}
	policy, err := cfg.Policy()
	if err != nil {
		return res, err
	}
	files := source.NewFileSetWithBase(cfg.Root)
	logger := opts.Logger
	if opts.LoggerFor != nil {
		logger = opts.LoggerFor(cfg)
	}
	router := diag.NewRouter(files, policy, logger)
	timer := observ.NewTimer()
	localBuild := opts.LocalBuild || cfg.LocalBuild

	var (
		key    Digest
		cached CachePayload
		hit    bool
	)
	useCache := cfg.Cache.Enabled && opts.Cache != nil
	if useCache {
		if key, err = configKey(cfg); err != nil {
			return res, err
		}
		ok, err := opts.Cache.Get(key, &cached)
		hit = err == nil && ok && cached.fresh()
	}

	var out *outputs
	if hit {
		res.Cached = true
		out = &outputs{report: cached.Report, docModel: cached.DocModel, rollups: make(map[emit.RollupKind]string)}
		for _, kind := range rollupKinds {
			if text, ok := cached.Rollups[kind.String()]; ok {
				out.rollups[kind] = text
			}
		}
		for _, lm := range cached.Logged {
			router.Replay(lm)
		}
		router.LogConsole(diag.LevelVerbose, diag.ConsoleAnalysisCached, "Analysis results were restored from the cache")
	} else {
		out, err = analyze(ctx, cfg, files, router, timer, opts)
		if err != nil {
			router.Flush()
			res.Timing = timer.Report()
			res.ErrorCount = router.ErrorCount()
			res.WarningCount = router.WarningCount()
			res.Err = err
			opts.Observer.emit(Event{Package: cfg.Path, Stage: StageWrite, Status: StatusError, Err: err})
			return res, err
		}
		logged := router.Logged()
		if useCache {
			payload := &CachePayload{
				Schema:   cacheSchemaVersion,
				Tool:     version.Version,
				Report:   out.report,
				DocModel: out.docModel,
				Rollups:  make(map[string]string, len(out.rollups)),
				Logged:   logged,
			}
			for kind, text := range out.rollups {
				payload.Rollups[kind.String()] = text
			}
			payload.FilePaths = out.files
			if hashes, ok := hashFiles(out.files); ok {
				payload.FileHashes = hashes
				if err := opts.Cache.Put(key, payload); err != nil {
					_, sp := trace.Start(ctx, trace.ScopeDetail, "cache.put")
					sp.End(err.Error())
				}
			}
		}
	}

	opts.Observer.emit(Event{Package: cfg.Path, Stage: StageWrite, Status: StatusWorking})
	idx := timer.Begin("write")
	changed, err := writeOutputs(ctx, cfg, out, router, localBuild)
	timer.End(idx, "")
	res.Timing = timer.Report()
	if err != nil {
		res.Err = err
		opts.Observer.emit(Event{Package: cfg.Path, Stage: StageWrite, Status: StatusError, Err: err})
		return res, err
	}

	res.APIReportChanged = changed
	res.ErrorCount = router.ErrorCount()
	res.WarningCount = router.WarningCount()
	res.Succeeded = res.ErrorCount == 0 && (localBuild || !changed)
	status := StatusDone
	if !res.Succeeded {
		status = StatusError
	}
	opts.Observer.emit(Event{Package: cfg.Path, Stage: StageWrite, Status: status})
	return res, nil
}

var rollupKinds = []emit.RollupKind{emit.RollupUntrimmed, emit.RollupAlpha, emit.RollupBeta, emit.RollupPublic}

// analyze runs program, analyzer, collector and renderers, then flushes the
// messages that did not end up in the report.
func analyze(ctx context.Context, cfg *config.Config, files *source.FileSet, router *diag.Router, timer *observ.Timer, opts Options) (*outputs, error) {
	var (
		prog *program.Program
		ar   *analyzer.Result
		col  *collector.Collector
		out  = &outputs{rollups: make(map[emit.RollupKind]string)}
	)
	stages := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StageLoad, func(ctx context.Context) error {
			p, err := program.Build(ctx, files, cfg.Project.EntryPoint, program.Options{Reporter: router, MaxErrors: opts.MaxErrors})
			if err != nil {
				return err
			}
			prog = p
			checkInputFileTypes(prog, router)
			return nil
		}},
		{StageAnalyze, func(ctx context.Context) error {
			r, err := analyzer.Analyze(ctx, prog, analyzer.Options{Reporter: router})
			ar = r
			return err
		}},
		{StageCollect, func(ctx context.Context) error {
			col = collector.New(prog, ar, collector.Options{
				Reporter:       router,
				PackageFolder:  cfg.Root,
				PackageName:    cfg.PackageName,
				PackageVersion: cfg.PackageVersion,
			})
			return col.Analyze(ctx)
		}},
		{StageEmit, func(ctx context.Context) error {
			return render(cfg, col, router, out)
		}},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		opts.Observer.emit(Event{Package: cfg.Path, Stage: st.stage, Status: StatusWorking})
		pctx, span := trace.Start(ctx, trace.ScopePass, st.stage.String())
		idx := timer.Begin(st.stage.String())
		err := st.fn(pctx)
		timer.End(idx, "")
		span.End("")
		if err != nil {
			var ie *collector.InternalError
			if errors.As(err, &ie) {
				return nil, err
			}
			return nil, fmt.Errorf("%s: %w", st.stage, err)
		}
	}

	router.Flush()
	for _, f := range files.Files() {
		if f.Flags&source.FileVirtual == 0 {
			out.files = append(out.files, f.Path)
		}
	}
	out.files = sortedUnique(out.files)
	return out, nil
}

// render produces every enabled output in memory. The API report goes first so
// that it consumes its messages before the router is flushed.
func render(cfg *config.Config, col *collector.Collector, router *diag.Router, out *outputs) error {
	if cfg.APIReport.IsEnabled() {
		text, err := emit.APIReport(col, router)
		if err != nil {
			return err
		}
		out.report = text
	}
	if cfg.DtsRollup.Enabled {
		for _, kind := range rollupKinds {
			if rollupPath(cfg, kind) == "" {
				continue
			}
			text, err := emit.Rollup(col, kind)
			if err != nil {
				return err
			}
			out.rollups[kind] = text
		}
	}
	if cfg.DocModel.Enabled {
		threshold, err := cfg.DocModelThreshold()
		if err != nil {
			return err
		}
		data, err := emit.DocModelJSON(col, emit.DocModelOptions{Threshold: threshold})
		if err != nil {
			return err
		}
		out.docModel = data
	}
	return nil
}

// checkInputFileTypes reports every loaded file that is not a declaration file.
func checkInputFileTypes(prog *program.Program, router *diag.Router) {
	for _, m := range prog.Modules() {
		if m.Ambient || source.IsDeclarationPath(m.Path) {
			continue
		}
		diag.Report(router, diag.AEWrongInputFileType, source.Span{File: m.Source},
			"Incorrect file type; "+version.ToolName+" expects to analyze compiler outputs with the .d.ts file extension").Emit()
	}
}

func rollupPath(cfg *config.Config, kind emit.RollupKind) string {
	switch kind {
	case emit.RollupUntrimmed:
		return cfg.DtsRollup.UntrimmedFilePath
	case emit.RollupAlpha:
		return cfg.DtsRollup.AlphaTrimmedFilePath
	case emit.RollupBeta:
		return cfg.DtsRollup.BetaTrimmedFilePath
	case emit.RollupPublic:
		return cfg.DtsRollup.PublicTrimmedFilePath
	}
	return ""
}

// writeFile creates parent folders and writes data.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
