package graph

import (
	"testing"

	"github.com/unityscan/depgraph/internal/assets"
)

func node(guid string) *assets.Node {
	return &assets.Node{GUID: guid, Path: guid + ".prefab", Kind: assets.KindPrefab, Active: true}
}

func edge(src, dst string, kind assets.DepKind, strength assets.Strength) assets.Edge {
	return assets.Edge{Source: src, Target: dst, DepKind: kind, Strength: strength, Active: true}
}

func TestDirectDepsAndRefsAreDual(t *testing.T) {
	store := NewStore()
	store.UpsertNode(node("a"))
	store.UpsertNode(node("b"))
	store.ReplaceEdgesFrom("a", []assets.Edge{edge("a", "b", assets.DepKindMaterial, assets.StrengthStrong)})

	engine, err := NewEngine(store, 16)
	if err != nil {
		t.Fatal(err)
	}

	deps := engine.DirectDeps("a", QueryOptions{})
	refs := engine.DirectRefs("b", QueryOptions{})
	if len(deps) != 1 || len(refs) != 1 {
		t.Fatalf("expected exactly one edge each way, got deps=%v refs=%v", deps, refs)
	}
	if deps[0].Key() != refs[0].Key() {
		t.Fatalf("direct_deps(a) and direct_refs(b) should be dual for the same edge")
	}
}

func TestImpactOfDeleteFollowsIncomingChain(t *testing.T) {
	store := NewStore()
	store.UpsertNode(node("tex"))
	store.UpsertNode(node("mat"))
	store.UpsertNode(node("prefab"))
	store.ReplaceEdgesFrom("mat", []assets.Edge{edge("mat", "tex", assets.DepKindTexture, assets.StrengthStrong)})
	store.ReplaceEdgesFrom("prefab", []assets.Edge{edge("prefab", "mat", assets.DepKindMaterial, assets.StrengthStrong)})

	engine, err := NewEngine(store, 16)
	if err != nil {
		t.Fatal(err)
	}

	impacted := engine.Impact("tex", ImpactDelete, QueryOptions{})
	if len(impacted.Affected) != 2 {
		t.Fatalf("expected mat and prefab to be impacted by deleting tex, got %v", impacted.Affected)
	}
	if impacted.Severity != ImpactMedium {
		t.Errorf("expected a 2-node blast radius to score MEDIUM, got %s", impacted.Severity)
	}
}

func TestImpactOfModifyOnlyFollowsStrongOrAboveEdges(t *testing.T) {
	store := NewStore()
	store.UpsertNode(node("tex"))
	store.UpsertNode(node("mat"))
	store.UpsertNode(node("weakref"))
	store.ReplaceEdgesFrom("mat", []assets.Edge{edge("mat", "tex", assets.DepKindTexture, assets.StrengthStrong)})
	store.ReplaceEdgesFrom("weakref", []assets.Edge{edge("weakref", "tex", assets.DepKindIndirect, assets.StrengthWeak)})

	engine, err := NewEngine(store, 16)
	if err != nil {
		t.Fatal(err)
	}

	impacted := engine.Impact("tex", ImpactModify, QueryOptions{})
	if len(impacted.Affected) != 1 || impacted.Affected[0] != "mat" {
		t.Fatalf("expected only the strong-strength referrer to be impacted by modify, got %v", impacted.Affected)
	}
}

func TestImpactOfMoveOnlyFollowsPathReferenceEdges(t *testing.T) {
	store := NewStore()
	store.UpsertNode(node("tex"))
	store.UpsertNode(node("mat"))
	store.UpsertNode(node("pathref"))
	store.ReplaceEdgesFrom("mat", []assets.Edge{edge("mat", "tex", assets.DepKindTexture, assets.StrengthCritical)})
	store.ReplaceEdgesFrom("pathref", []assets.Edge{edge("pathref", "tex", assets.DepKindPathReference, assets.StrengthWeak)})

	engine, err := NewEngine(store, 16)
	if err != nil {
		t.Fatal(err)
	}

	impacted := engine.Impact("tex", ImpactMove, QueryOptions{})
	if len(impacted.Affected) != 1 || impacted.Affected[0] != "pathref" {
		t.Fatalf("expected only the path_reference referrer to be impacted by move, got %v", impacted.Affected)
	}
}

func TestDepTreeMarksCircularOnSelfReferentialCycle(t *testing.T) {
	store := NewStore()
	store.UpsertNode(node("a"))
	store.UpsertNode(node("b"))
	store.ReplaceEdgesFrom("a", []assets.Edge{edge("a", "b", assets.DepKindIndirect, assets.StrengthWeak)})
	store.ReplaceEdgesFrom("b", []assets.Edge{edge("b", "a", assets.DepKindIndirect, assets.StrengthWeak)})

	engine, err := NewEngine(store, 16)
	if err != nil {
		t.Fatal(err)
	}

	tree := engine.DepTree("a", QueryOptions{})
	if tree.GUID != "a" || tree.Circular {
		t.Fatalf("expected the root to be a, not circular, got %+v", tree)
	}
	if len(tree.Children) != 1 || tree.Children[0].GUID != "b" {
		t.Fatalf("expected a single child b, got %+v", tree.Children)
	}
	grandchild := tree.Children[0].Children
	if len(grandchild) != 1 || grandchild[0].GUID != "a" || !grandchild[0].Circular {
		t.Fatalf("expected the cycle back to a to be marked circular and not expanded further, got %+v", grandchild)
	}
	if len(grandchild[0].Children) != 0 {
		t.Fatalf("expected a circular node's children to be truncated, got %+v", grandchild[0].Children)
	}
}

func TestUpdaterRejectedTransactionMutatesNothing(t *testing.T) {
	store := NewStore()
	store.UpsertNode(node("a"))

	updater := NewUpdater(store, false, nil)

	result := updater.Apply([]Op{
		{Kind: OpReplaceEdgesFor, GUID: "a", Edges: []assets.Edge{edge("a", "ghost", assets.DepKindMaterial, assets.StrengthStrong)}},
		{Kind: OpDeactivateNode, GUID: "missing-node"},
	})
	if result.Accepted {
		t.Fatalf("expected rejection due to unknown guid in deactivate_node")
	}

	if edges := store.OutEdges("a"); len(edges) != 0 {
		t.Fatalf("expected no edges committed after rejection, got %v", edges)
	}
}

func TestUpdaterRejectsEdgeToUnknownTarget(t *testing.T) {
	store := NewStore()
	store.UpsertNode(node("a"))

	updater := NewUpdater(store, false, nil)
	result := updater.Apply([]Op{
		{Kind: OpReplaceEdgesFor, GUID: "a", Edges: []assets.Edge{edge("a", "ghost", assets.DepKindMaterial, assets.StrengthStrong)}},
	})
	if result.Accepted {
		t.Fatalf("expected rejection: target guid has no node")
	}
	if len(store.OutEdges("a")) != 0 {
		t.Fatalf("expected no edges committed after rejection")
	}
}

func TestUpdaterAllowsEdgeToNodeCreatedInSameBatch(t *testing.T) {
	store := NewStore()
	store.UpsertNode(node("a"))

	updater := NewUpdater(store, false, nil)
	result := updater.Apply([]Op{
		{Kind: OpUpsertNode, Node: node("b")},
		{Kind: OpReplaceEdgesFor, GUID: "a", Edges: []assets.Edge{edge("a", "b", assets.DepKindMaterial, assets.StrengthStrong)}},
	})
	if !result.Accepted {
		t.Fatalf("expected transaction to be accepted, got err=%v", result.Err)
	}
}

func TestDeactivateNodeCascadesToEdges(t *testing.T) {
	store := NewStore()
	store.UpsertNode(node("a"))
	store.UpsertNode(node("b"))
	store.ReplaceEdgesFrom("a", []assets.Edge{edge("a", "b", assets.DepKindMaterial, assets.StrengthStrong)})

	store.DeactivateNode("a")

	if edges := store.OutEdges("a"); len(edges) != 0 {
		t.Fatalf("expected deactivated node's outgoing edges to drop out of OutEdges, got %v", edges)
	}
	if edges := store.InEdges("b"); len(edges) != 0 {
		t.Fatalf("expected the cascade to also clear b's incoming-edge view, got %v", edges)
	}
}

func TestUpdaterCommitsValidTransaction(t *testing.T) {
	store := NewStore()
	store.UpsertNode(node("a"))
	store.UpsertNode(node("b"))

	updater := NewUpdater(store, false, nil)
	result := updater.Apply([]Op{
		{Kind: OpReplaceEdgesFor, GUID: "a", Edges: []assets.Edge{edge("a", "b", assets.DepKindMaterial, assets.StrengthStrong)}},
	})
	if !result.Accepted {
		t.Fatalf("expected transaction to be accepted, got err=%v", result.Err)
	}
	if len(store.OutEdges("a")) != 1 {
		t.Fatalf("expected the edge to be committed")
	}
}
