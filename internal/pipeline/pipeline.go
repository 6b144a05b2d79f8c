// Package pipeline orchestrates a full or incremental scan: FileWalker ->
// ChangeDetector -> the unityyaml parser pool -> GraphUpdater, accumulating
// a Report of every non-fatal error along the way (spec §4.1-§4.5, §9).
//
// Structurally grounded on recera-onyx-coding-agent's GraphBuilder
// (internal/analyzer/graph_builder.go): a builder type holding its
// dependent components plus a stats/config struct, run in ordered phases.
// The bounded worker pool is grounded on golang.org/x/sync's errgroup,
// which several pack repos (mutagen-io-mutagen in particular) use for
// structured fan-out instead of hand-rolled WaitGroup plumbing.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/unityscan/depgraph/internal/assets"
	"github.com/unityscan/depgraph/internal/changedetect"
	"github.com/unityscan/depgraph/internal/graph"
	"github.com/unityscan/depgraph/internal/scanerr"
	"github.com/unityscan/depgraph/internal/unityyaml"
	"github.com/unityscan/depgraph/internal/walker"
)

// Progress is emitted as the scan advances, for a CLI progress line or a
// watch-mode log.
type Progress struct {
	Stage     string
	Processed int
	Total     int
	Message   string
}

// Options configures a single Run.
type Options struct {
	Roots             []string
	ExcludeGlobs      []string
	FileExtensions    []string
	IgnoreHiddenFiles bool
	FollowSymlinks    bool
	MaxFileSizeBytes  int64
	DeepCheck         bool
	MaxWorkers        int
	PerFileTimeout    time.Duration
	Incremental       bool
	OnProgress        func(Progress)
}

// Report aggregates every non-fatal problem a scan hit, per spec §7:
// walking, parsing and resolving never abort the whole scan.
type Report struct {
	FilesWalked   int
	FilesParsed   int
	NodesUpserted int
	IoErrors      []*scanerr.IoError
	ParseErrors   []*scanerr.ParseError
	ResolveErrors []*scanerr.ResolveError
	SkippedLarge  []string
	Deleted       []string
	Duration      time.Duration
}

// Pipeline wires the scan stages to a single graph.Store.
type Pipeline struct {
	store   *graph.Store
	engine  *graph.Engine
	updater *graph.Updater
	cache   *changedetect.Cache
	logger  *zap.Logger
}

// New builds a Pipeline over the given store/engine/updater/cache. logger
// may be nil, in which case logging is a no-op.
func New(store *graph.Store, engine *graph.Engine, updater *graph.Updater, cache *changedetect.Cache, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{store: store, engine: engine, updater: updater, cache: cache, logger: logger}
}

// Run performs one full scan pass.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	report := &Report{}
	emit := func(stage string, processed, total int, msg string) {
		if opts.OnProgress != nil {
			opts.OnProgress(Progress{Stage: stage, Processed: processed, Total: total, Message: msg})
		}
	}

	walkRes, err := walker.Walk(ctx, walker.Options{
		Roots:             opts.Roots,
		ExcludeGlobs:      opts.ExcludeGlobs,
		FileExtensions:    opts.FileExtensions,
		IgnoreHiddenFiles: opts.IgnoreHiddenFiles,
		FollowSymlinks:    opts.FollowSymlinks,
		MaxFileSizeBytes:  opts.MaxFileSizeBytes,
	})
	if err != nil {
		return report, err
	}
	report.FilesWalked = len(walkRes.Entries)
	report.SkippedLarge = walkRes.SkippedLarge
	report.IoErrors = append(report.IoErrors, walkRes.Errors...)
	emit("walk", len(walkRes.Entries), len(walkRes.Entries), "walk complete")

	detector := changedetect.NewDetector(p.cache, opts.DeepCheck)
	classified, detectErrs, err := detector.Classify(ctx, walkRes.Entries)
	if err != nil {
		return report, err
	}
	report.IoErrors = append(report.IoErrors, detectErrs...)

	var toParse []changedetect.Classified
	for _, c := range classified {
		switch c.Classification {
		case changedetect.ClassDeleted:
			report.Deleted = append(report.Deleted, c.Path)
			if guid, ok := p.store.ResolvePath(c.Path); ok {
				p.updater.Apply([]graph.Op{{Kind: graph.OpDeactivateNode, GUID: guid}})
			}
		case changedetect.ClassUnchanged:
			if opts.Incremental {
				continue
			}
			toParse = append(toParse, c)
		default:
			toParse = append(toParse, c)
		}
	}

	emit("parse", 0, len(toParse), "parsing changed assets")
	results, parseErrs := p.parseAll(ctx, toParse, opts, emit)
	report.ParseErrors = append(report.ParseErrors, parseErrs...)
	report.FilesParsed = len(results)

	nodes, edgesBySource, resolveErrs := p.buildGraphUpdates(results)
	report.ResolveErrors = append(report.ResolveErrors, resolveErrs...)

	for _, n := range nodes {
		p.updater.Apply([]graph.Op{{Kind: graph.OpUpsertNode, Node: n}})
		report.NodesUpserted++
	}
	for guid, edges := range edgesBySource {
		p.updater.Apply([]graph.Op{{Kind: graph.OpReplaceEdgesFor, GUID: guid, Edges: edges}})
	}
	p.engine.Invalidate()

	report.Duration = time.Since(start)
	emit("done", report.FilesParsed, report.FilesParsed, "scan complete")
	return report, nil
}

// parsedFile is an intermediate result of stage 2, before guid resolution.
type parsedFile struct {
	path        string
	isMeta      bool
	meta        *unityyaml.MetaResult
	asset       *unityyaml.AssetResult
	script      *unityyaml.ScriptInfo
	sizeBytes   int64
	modTimeNano int64
}

func (p *Pipeline) parseAll(ctx context.Context, items []changedetect.Classified, opts Options, emit func(string, int, int, string)) ([]parsedFile, []*scanerr.ParseError) {
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	timeout := opts.PerFileTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	sem := semaphore.NewWeighted(int64(maxWorkers))
	g, gctx := errgroup.WithContext(ctx)

	results := make([]parsedFile, len(items))
	errsCh := make(chan *scanerr.ParseError, len(items))
	var processed int32

	for i, item := range items {
		i, item := i, item
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			fileCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			pf, perr := p.parseOne(fileCtx, item)
			if perr != nil {
				errsCh <- perr
			} else {
				results[i] = pf
			}

			processed++
			emit("parse", int(processed), len(items), item.Path)
			return nil
		})
	}
	_ = g.Wait()
	close(errsCh)

	var errs []*scanerr.ParseError
	for e := range errsCh {
		errs = append(errs, e)
	}

	compact := results[:0]
	for _, r := range results {
		if r.path != "" {
			compact = append(compact, r)
		}
	}
	return compact, errs
}

func (p *Pipeline) parseOne(ctx context.Context, item changedetect.Classified) (parsedFile, *scanerr.ParseError) {
	if err := ctx.Err(); err != nil {
		return parsedFile{}, &scanerr.ParseError{Path: item.Path, Kind: scanerr.ParseErrTimeout, Detail: "cancelled before parse"}
	}

	pf := parsedFile{path: item.Path, sizeBytes: item.Entry.Size, modTimeNano: item.Entry.ModTime}
	ext := strings.ToLower(filepath.Ext(item.Path))

	done := make(chan struct{})
	var parseErr *scanerr.ParseError
	go func() {
		defer close(done)
		switch {
		case ext == ".meta":
			pf.isMeta = true
			meta, err := unityyaml.ParseMeta(item.Path)
			if err != nil {
				parseErr = asParseError(item.Path, err)
				return
			}
			pf.meta = meta
		case ext == ".cs":
			info, err := unityyaml.ParseScript(item.Path)
			if err != nil {
				parseErr = asParseError(item.Path, err)
				return
			}
			pf.script = info
		default:
			asset, err := unityyaml.ParseAsset(item.Path)
			if err != nil {
				parseErr = asParseError(item.Path, err)
				return
			}
			pf.asset = asset
		}
	}()

	select {
	case <-done:
		return pf, parseErr
	case <-ctx.Done():
		return parsedFile{}, &scanerr.ParseError{Path: item.Path, Kind: scanerr.ParseErrTimeout, Detail: "per-file deadline exceeded"}
	}
}

func asParseError(path string, err error) *scanerr.ParseError {
	if pe, ok := err.(*scanerr.ParseError); ok {
		return pe
	}
	return &scanerr.ParseError{Path: path, Kind: scanerr.ParseErrMalformedYAML, Detail: err.Error()}
}

// buildGraphUpdates joins .meta results (which carry the guid and importer
// kind) with their sibling asset file's extracted references, producing
// one Node per guid and one outgoing edge set per source guid.
func (p *Pipeline) buildGraphUpdates(results []parsedFile) ([]*assets.Node, map[string][]assets.Edge, []*scanerr.ResolveError) {
	byAssetPath := make(map[string]parsedFile)
	byMetaPath := make(map[string]parsedFile)
	knownGUIDs := make(map[string]bool)
	for _, r := range results {
		if r.isMeta {
			byMetaPath[strings.TrimSuffix(r.path, ".meta")] = r
			if r.meta != nil {
				knownGUIDs[r.meta.GUID] = true
			}
		} else {
			byAssetPath[r.path] = r
		}
	}

	var nodes []*assets.Node
	edgesBySource := make(map[string][]assets.Edge)
	var resolveErrs []*scanerr.ResolveError

	for assetPath, meta := range byMetaPath {
		if meta.meta == nil {
			continue
		}
		guid := meta.meta.GUID
		kind := assets.KindFromImporter(meta.meta.ImporterKey)
		if kind == assets.KindUnknown || kind == assets.KindNative {
			if k, ok := assets.KindFromExtension(strings.ToLower(filepath.Ext(assetPath))); ok {
				kind = k
			}
		}

		sizeBytes := meta.sizeBytes
		modTimeNano := meta.modTimeNano
		if asset, ok := byAssetPath[assetPath]; ok {
			sizeBytes = asset.sizeBytes
			modTimeNano = asset.modTimeNano
		}

		node := &assets.Node{
			GUID:             guid,
			Path:             assetPath,
			Kind:             kind,
			SizeBytes:        sizeBytes,
			LastModified:     time.Unix(0, modTimeNano),
			ContentHash:      "",
			IsAnalyzed:       true,
			ImporterMetadata: meta.meta.ImporterProps,
			Active:           true,
		}
		nodes = append(nodes, node)

		if asset, ok := byAssetPath[assetPath]; ok && asset.asset != nil {
			var edges []assets.Edge
			for _, ref := range asset.asset.References {
				if ref.TargetGUID == "" {
					continue // local intra-file structural reference, not a cross-asset dependency
				}
				if !knownGUIDs[ref.TargetGUID] && p.store.Node(ref.TargetGUID) == nil {
					resolveErrs = append(resolveErrs, &scanerr.ResolveError{
						SourceGUID: guid,
						TargetGUID: ref.TargetGUID,
						Reason:     "no .meta file found for referenced guid",
					})
					continue
				}
				edges = append(edges, assets.Edge{
					Source:        guid,
					Target:        ref.TargetGUID,
					DepKind:       ref.DepKind,
					Strength:      ref.Strength,
					ContextPath:   ref.ContextPath,
					ComponentType: ref.ComponentType,
					SourceFileID:  ref.TargetFileID,
					Active:        true,
				})
			}
			edgesBySource[guid] = edges
		}
	}

	return nodes, edgesBySource, resolveErrs
}
