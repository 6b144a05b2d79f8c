package persist

import (
	"fmt"
	"time"

	"github.com/unityscan/depgraph/internal/assets"
)

// LoadAll reconstructs every node and edge from the persistent store, for
// cold-start rehydration of a graph.Store. Grounded on the teacher's
// ExecuteQuery/GetSchema tuple-iteration loop (result.HasNext/result.Next/
// tuple.GetValue) in internal/db/kuzudb.go.
func (s *Store) LoadAll() ([]*assets.Node, []assets.Edge, error) {
	nodes, err := s.loadNodes()
	if err != nil {
		return nil, nil, err
	}
	edges, err := s.loadEdges()
	if err != nil {
		return nil, nil, err
	}
	return nodes, edges, nil
}

func (s *Store) loadNodes() ([]*assets.Node, error) {
	result, err := s.conn.Query(`MATCH (a:AssetNode) RETURN a.guid, a.path, a.kind, a.size_bytes,
		a.last_modified_unix, a.content_hash, a.is_analyzed, a.active`)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset nodes: %w", err)
	}
	defer result.Close()

	var out []*assets.Node
	for result.HasNext() {
		tuple, err := result.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read asset node row: %w", err)
		}

		guid, _ := tuple.GetValue(0)
		path, _ := tuple.GetValue(1)
		kind, _ := tuple.GetValue(2)
		size, _ := tuple.GetValue(3)
		lastMod, _ := tuple.GetValue(4)
		hash, _ := tuple.GetValue(5)
		analyzed, _ := tuple.GetValue(6)
		active, _ := tuple.GetValue(7)

		out = append(out, &assets.Node{
			GUID:         asString(guid),
			Path:         asString(path),
			Kind:         assets.Kind(asString(kind)),
			SizeBytes:    asInt64(size),
			LastModified: time.Unix(asInt64(lastMod), 0).UTC(),
			ContentHash:  asString(hash),
			IsAnalyzed:   asBool(analyzed),
			Active:       asBool(active),
		})
	}
	return out, nil
}

func (s *Store) loadEdges() ([]assets.Edge, error) {
	result, err := s.conn.Query(`MATCH (src:AssetNode)-[r:DependsOn]->(dst:AssetNode)
		RETURN src.guid, dst.guid, r.dep_kind, r.strength, r.context_path,
		       r.component_type, r.property_name, r.source_file_id, r.active`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependency edges: %w", err)
	}
	defer result.Close()

	var out []assets.Edge
	for result.HasNext() {
		tuple, err := result.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read dependency edge row: %w", err)
		}

		src, _ := tuple.GetValue(0)
		dst, _ := tuple.GetValue(1)
		depKind, _ := tuple.GetValue(2)
		strength, _ := tuple.GetValue(3)
		ctxPath, _ := tuple.GetValue(4)
		compType, _ := tuple.GetValue(5)
		propName, _ := tuple.GetValue(6)
		srcFileID, _ := tuple.GetValue(7)
		active, _ := tuple.GetValue(8)

		out = append(out, assets.Edge{
			Source:        asString(src),
			Target:        asString(dst),
			DepKind:       assets.DepKind(asString(depKind)),
			Strength:      assets.Strength(asInt64(strength)),
			ContextPath:   asString(ctxPath),
			ComponentType: asString(compType),
			PropertyName:  asString(propName),
			SourceFileID:  asInt64(srcFileID),
			Active:        asBool(active),
		})
	}
	return out, nil
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	default:
		return 0
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
