package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/unityscan/depgraph/internal/assets"
	"github.com/unityscan/depgraph/internal/changedetect"
	"github.com/unityscan/depgraph/internal/config"
	"github.com/unityscan/depgraph/internal/cycle"
	"github.com/unityscan/depgraph/internal/graph"
	"github.com/unityscan/depgraph/internal/persist"
)

// groupEdgesBySource buckets edges by Source, the shape ReplaceEdgesFrom
// expects when rehydrating the in-memory store from persisted rows.
func groupEdgesBySource(edges []assets.Edge) map[string][]assets.Edge {
	out := make(map[string][]assets.Edge)
	for _, e := range edges {
		out[e.Source] = append(out[e.Source], e)
	}
	return out
}

// cliError pairs an error with the process exit code its cause maps to in
// spec §6's command surface table. Commands that want a specific nonzero
// exit code other than the generic 1 return one of these from RunE.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func newCLIError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCodeFor(err error) int {
	if ce, ok := err.(*cliError); ok {
		return ce.code
	}
	return exitIO
}

// app bundles the component graph every query/scan command needs, built
// fresh per invocation from the project root's persisted state and config.
type app struct {
	cfg     *config.Config
	store   *graph.Store
	engine  *graph.Engine
	updater *graph.Updater
	cache   *changedetect.Cache
	db      *persist.Store
}

// openApp loads config, opens the signature cache and persistent graph
// store under root, and rehydrates an in-memory graph.Store from them.
func openApp(root string) (*app, error) {
	cfgFile := configPath
	if cfgFile == "" {
		cfgFile = filepath.Join(root, "unityscan.yaml")
	}
	cfg, err := config.Load(cfgFile, envPath)
	if err != nil {
		return nil, err
	}

	storeDir := cfg.Persistence.StorePath
	if !filepath.IsAbs(storeDir) {
		storeDir = filepath.Join(root, storeDir)
	}

	cache, err := changedetect.OpenCache(filepath.Join(storeDir, "signatures.db"))
	if err != nil {
		return nil, err
	}

	db, err := persist.Open(filepath.Join(storeDir, "graph.kz"))
	if err != nil {
		cache.Close()
		return nil, err
	}

	store := graph.NewStore()
	nodes, edges, err := db.LoadAll()
	if err != nil {
		db.Close()
		cache.Close()
		return nil, fmt.Errorf("failed to rehydrate graph store: %w", err)
	}
	for _, n := range nodes {
		store.UpsertNode(n)
	}
	for guid, es := range groupEdgesBySource(edges) {
		store.ReplaceEdgesFrom(guid, es)
	}

	// The Engine's LRU capacity is sized independently of cache_ttl_s, and
	// its entries do not expire: cache_ttl_s is loaded but not read here.
	engine, err := graph.NewEngine(store, 0)
	if err != nil {
		db.Close()
		cache.Close()
		return nil, err
	}

	checker := cycle.NewReachabilityChecker(cycle.NewStoreAdapter(store))
	updater := graph.NewUpdater(store, cfg.Graph.RejectNewCycles, checker)

	return &app{cfg: cfg, store: store, engine: engine, updater: updater, cache: cache, db: db}, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.cache != nil {
		a.cache.Close()
	}
}

// persistAll flushes every node and its current active outgoing edges to
// the durable store, used after a scan commits its in-memory transactions.
// Every node's edge set is replaced unconditionally (not just nodes with a
// remaining active edge) so a node whose last edge was cascade-deactivated
// by DeactivateNode has its stale persisted edges cleared too.
func (a *app) persistAll() error {
	for _, n := range a.store.AllNodes() {
		if err := a.db.UpsertNode(n); err != nil {
			return err
		}
		if err := a.db.DeleteEdgesFrom(n.GUID); err != nil {
			return err
		}
		for _, e := range a.store.OutEdges(n.GUID) {
			if err := a.db.InsertEdge(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func loggerOrNop() *zap.Logger {
	if logger != nil {
		return logger
	}
	return zap.NewNop()
}
