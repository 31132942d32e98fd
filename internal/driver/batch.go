package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"apix/internal/config"
	"apix/internal/trace"
)

// BatchOptions configures RunBatch.
type BatchOptions struct {
	Options
	// Jobs limits concurrent packages; 0 uses GOMAXPROCS.
	Jobs int
}

// RunBatch analyzes packages in parallel. Results keep the order of cfgs. A
// failing package records its error in Result.Err and does not stop the
// others; the returned error is only set when ctx is cancelled.
func RunBatch(ctx context.Context, cfgs []*config.Config, opts BatchOptions) ([]*Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "batch")
	defer span.End("")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, cfg := range cfgs {
		opts.Observer.emit(Event{Package: cfg.Path, Stage: StageQueued, Status: StatusQueued})
	}

	results := make([]*Result, len(cfgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, cfg := range cfgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = &Result{ConfigPath: cfg.Path, PackageName: cfg.PackageName, Err: err}
				return nil
			}
			pctx, pspan := trace.Start(gctx, trace.ScopePackage, "package:"+cfg.PackageName)
			res, err := run(pctx, cfg, opts.Options)
			pspan.End("")
			if res == nil {
				res = &Result{ConfigPath: cfg.Path, PackageName: cfg.PackageName}
			}
			if err != nil && res.Err == nil {
				res.Err = err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
