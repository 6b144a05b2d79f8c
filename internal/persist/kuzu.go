// Package persist durably stores the asset dependency graph so a cold
// start can reconstruct a graph.Store without re-scanning the project
// (spec §4.8).
//
// Grounded on recera-onyx-coding-agent's internal/db/kuzudb.go: the same
// KuzuDatabase-wrapping shape (Database + Connection, CreateSchema with a
// list of DDL strings, executePreparedStatement helper, per-row typed
// dispatch), adapted from the teacher's File/Function/Class/... schema to
// a single AssetNode table and a single DependsOn relationship table keyed
// on the domain's dep_kind/strength/context_path attributes instead of
// source-code entity kinds.
package persist

import (
	"fmt"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/unityscan/depgraph/internal/assets"
)

// Store wraps an embedded KuzuDB database holding the durable copy of the
// asset graph.
type Store struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Open creates or opens the KuzuDB database at dbPath and ensures its
// schema exists.
func Open(dbPath string) (*Store, error) {
	systemConfig := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, systemConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open persistent graph store at %s: %w", dbPath, err)
	}

	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open connection to %s: %w", dbPath, err)
	}

	s := &Store{db: db, conn: conn}
	if err := s.createSchema(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection and database handle.
func (s *Store) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Store) createSchema() error {
	queries := []string{
		`CREATE NODE TABLE IF NOT EXISTS AssetNode(
			guid STRING,
			path STRING,
			kind STRING,
			size_bytes INT64,
			last_modified_unix INT64,
			content_hash STRING,
			is_analyzed BOOLEAN,
			active BOOLEAN,
			PRIMARY KEY (guid)
		)`,
		`CREATE REL TABLE IF NOT EXISTS DependsOn(
			FROM AssetNode TO AssetNode,
			dep_kind STRING,
			strength INT64,
			context_path STRING,
			component_type STRING,
			property_name STRING,
			source_file_id INT64,
			active BOOLEAN
		)`,
	}

	for _, q := range queries {
		if _, err := s.conn.Query(q); err != nil {
			return fmt.Errorf("failed to apply persistent store schema: %w", err)
		}
	}
	return nil
}

func (s *Store) executePrepared(query string, params map[string]any) error {
	stmt, err := s.conn.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	result, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	result.Close()
	return nil
}

// UpsertNode persists n, overwriting any prior row for the same guid.
func (s *Store) UpsertNode(n *assets.Node) error {
	query := `MERGE (a:AssetNode {guid: $guid})
		SET a.path = $path, a.kind = $kind, a.size_bytes = $size_bytes,
		    a.last_modified_unix = $last_modified_unix, a.content_hash = $content_hash,
		    a.is_analyzed = $is_analyzed, a.active = $active`
	return s.executePrepared(query, map[string]any{
		"guid":               n.GUID,
		"path":               n.Path,
		"kind":               string(n.Kind),
		"size_bytes":         n.SizeBytes,
		"last_modified_unix": n.LastModified.Unix(),
		"content_hash":       n.ContentHash,
		"is_analyzed":        n.IsAnalyzed,
		"active":             n.Active,
	})
}

// DeleteEdgesFrom removes every persisted DependsOn edge whose source is
// guid, so that InsertEdge can re-add the node's current outgoing set.
func (s *Store) DeleteEdgesFrom(guid string) error {
	query := `MATCH (a:AssetNode {guid: $guid})-[r:DependsOn]->() DELETE r`
	return s.executePrepared(query, map[string]any{"guid": guid})
}

// InsertEdge persists one DependsOn edge. Callers should call
// DeleteEdgesFrom first when replacing a node's full outgoing set.
func (s *Store) InsertEdge(e assets.Edge) error {
	query := `MATCH (src:AssetNode {guid: $source}), (dst:AssetNode {guid: $target})
		CREATE (src)-[:DependsOn {
			dep_kind: $dep_kind, strength: $strength, context_path: $context_path,
			component_type: $component_type, property_name: $property_name,
			source_file_id: $source_file_id, active: $active
		}]->(dst)`
	return s.executePrepared(query, map[string]any{
		"source":         e.Source,
		"target":         e.Target,
		"dep_kind":       string(e.DepKind),
		"strength":       int64(e.Strength),
		"context_path":   e.ContextPath,
		"component_type": e.ComponentType,
		"property_name":  e.PropertyName,
		"source_file_id": e.SourceFileID,
		"active":         e.Active,
	})
}
