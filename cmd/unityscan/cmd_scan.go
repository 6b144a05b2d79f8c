package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/unityscan/depgraph/internal/pipeline"
	"github.com/unityscan/depgraph/internal/scanerr"
	"github.com/unityscan/depgraph/internal/source"
	"github.com/unityscan/depgraph/internal/watcher"
)

var (
	scanFull        bool
	scanIncremental bool
	scanPaths       []string
	scanWatch       bool
)

// scanCmd runs the full scan pipeline: walk, classify, parse, update graph,
// persist. Grounded on the teacher's scanCmd/runScan pairing in
// cmd_init_scan.go, generalized from a Mangle-kernel refresh to the
// dependency-graph pipeline.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the project and update the dependency graph",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanFull, "full", false, "force a full rescan, ignoring the signature cache")
	scanCmd.Flags().BoolVar(&scanIncremental, "incremental", false, "skip files the signature cache reports unchanged (without it, every file is parsed)")
	scanCmd.Flags().StringArrayVar(&scanPaths, "path", nil, "root path to scan, relative to --project (repeatable); defaults to config's scan.paths")
	scanCmd.Flags().BoolVar(&scanWatch, "watch", false, "after the initial scan, keep watching for changes")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	res, err := source.Resolve(projectRoot, loggerOrNop())
	if err != nil {
		return newCLIError(exitIO, err)
	}
	defer res.Cleanup()

	app, err := openApp(res.Dir)
	if err != nil {
		return newCLIError(exitIO, err)
	}
	defer app.Close()

	pl := pipeline.New(app.store, app.engine, app.updater, app.cache, loggerOrNop())

	roots := scanPaths
	if len(roots) == 0 {
		roots = app.cfg.Scan.Paths
	}
	if len(roots) == 0 {
		roots = []string{"."}
	}
	absRoots := make([]string, len(roots))
	for i, r := range roots {
		if filepath.IsAbs(r) {
			absRoots[i] = r
		} else {
			absRoots[i] = filepath.Join(res.Dir, r)
		}
	}

	opts := scanOptions(app, absRoots)
	if err := runOneScan(ctx, pl, app, opts); err != nil {
		return err
	}

	if !scanWatch {
		return nil
	}

	fmt.Println("watching for changes (ctrl-c to stop)...")
	w, err := watcher.New(absRoots, 500*time.Millisecond, func(wctx context.Context) {
		fmt.Println("change detected, rescanning...")
		incOpts := opts
		incOpts.Incremental = true
		if err := runOneScan(wctx, pl, app, incOpts); err != nil {
			fmt.Fprintf(os.Stderr, "rescan failed: %v\n", err)
		}
	}, loggerOrNop())
	if err != nil {
		return newCLIError(exitIO, err)
	}
	w.Run(ctx)
	return nil
}

func scanOptions(app *app, roots []string) pipeline.Options {
	cfg := app.cfg
	return pipeline.Options{
		Roots:             roots,
		ExcludeGlobs:      cfg.Scan.ExcludePaths,
		FileExtensions:    cfg.Scan.FileExtensions,
		IgnoreHiddenFiles: cfg.Scan.IgnoreHiddenFiles,
		FollowSymlinks:    cfg.Scan.FollowSymlinks,
		MaxFileSizeBytes:  int64(cfg.Scan.MaxFileSizeMB) << 20,
		DeepCheck:         cfg.Scan.DeepCheck,
		MaxWorkers:        cfg.Performance.MaxWorkers,
		PerFileTimeout:    time.Duration(cfg.Performance.PerFileTimeoutS) * time.Second,
		Incremental:       scanIncremental && !scanFull,
		OnProgress: func(p pipeline.Progress) {
			fmt.Printf("[%s] %d/%d %s\n", p.Stage, p.Processed, p.Total, p.Message)
		},
	}
}

func runOneScan(ctx context.Context, pl *pipeline.Pipeline, app *app, opts pipeline.Options) error {
	report, err := pl.Run(ctx, opts)
	if err != nil {
		if _, ok := err.(*scanerr.CancelledError); ok {
			return nil
		}
		return newCLIError(exitIO, err)
	}

	if err := app.persistAll(); err != nil {
		return newCLIError(exitParseFatal, err)
	}

	fmt.Printf("scanned %d files (%d parsed, %d nodes upserted) in %s\n",
		report.FilesWalked, report.FilesParsed, report.NodesUpserted, report.Duration)
	if n := len(report.IoErrors) + len(report.ParseErrors) + len(report.ResolveErrors); n > 0 {
		fmt.Printf("encountered %d non-fatal errors (%d io, %d parse, %d resolve)\n",
			n, len(report.IoErrors), len(report.ParseErrors), len(report.ResolveErrors))
	}
	if len(report.ParseErrors) > 0 {
		return newCLIError(exitParseFatal, fmt.Errorf("%d files failed to parse", len(report.ParseErrors)))
	}
	return nil
}
