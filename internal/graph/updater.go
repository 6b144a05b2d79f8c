package graph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/unityscan/depgraph/internal/assets"
	"github.com/unityscan/depgraph/internal/scanerr"
)

// OpKind enumerates the mutations a transaction batch may contain.
type OpKind string

const (
	OpUpsertNode      OpKind = "upsert_node"
	OpDeactivateNode  OpKind = "deactivate_node"
	OpReplaceEdgesFor OpKind = "replace_edges_from"
)

// Op is one mutation within a Transaction.
type Op struct {
	Kind  OpKind
	Node  *assets.Node // set for OpUpsertNode
	GUID  string       // set for OpDeactivateNode / OpReplaceEdgesFor (source guid)
	Edges []assets.Edge
}

// TxResult records the outcome of a committed or rejected transaction.
type TxResult struct {
	ID       string
	Accepted bool
	Err      error
	Added    int
	Updated  int
	Removed  int
}

// Updater applies transaction batches to a Store with ordered conflict
// checks, per spec §4.5: existence, edge validity, cycle introduction (when
// configured), then data consistency. A rejected transaction mutates
// nothing.
type Updater struct {
	store           *Store
	rejectNewCycles bool
	cycleChecker    func(adds []assets.Edge) (introducesCycle bool, err error)

	mu      sync.Mutex
	history []TxResult
}

// NewUpdater builds an Updater over store. cycleChecker is called only when
// rejectNewCycles is true and at least one edge is being added; passing nil
// disables the cycle-introduction check entirely (spec §9 Open Question:
// "reject_new_cycles" is honored strictly when a checker is supplied).
func NewUpdater(store *Store, rejectNewCycles bool, cycleChecker func([]assets.Edge) (bool, error)) *Updater {
	return &Updater{store: store, rejectNewCycles: rejectNewCycles, cycleChecker: cycleChecker}
}

// Apply runs every check in spec §4.5's fixed order, then commits ops
// atomically against the Store, or rejects the whole batch with a
// ConflictError and mutates nothing.
func (u *Updater) Apply(ops []Op) TxResult {
	id := uuid.NewString()

	if err := u.checkExistence(ops); err != nil {
		return u.reject(id, err)
	}
	if err := u.checkEdgeValidity(ops); err != nil {
		return u.reject(id, err)
	}
	if u.rejectNewCycles && u.cycleChecker != nil {
		if err := u.checkCycleIntroduction(ops); err != nil {
			return u.reject(id, err)
		}
	}
	if err := u.checkDataConsistency(ops); err != nil {
		return u.reject(id, err)
	}

	var added, updated, removed int
	for _, op := range ops {
		switch op.Kind {
		case OpUpsertNode:
			u.store.UpsertNode(op.Node)
		case OpDeactivateNode:
			u.store.DeactivateNode(op.GUID)
		case OpReplaceEdgesFor:
			a, up, r := u.store.ReplaceEdgesFrom(op.GUID, op.Edges)
			added += a
			updated += up
			removed += r
		}
	}

	result := TxResult{ID: id, Accepted: true, Added: added, Updated: updated, Removed: removed}
	u.recordHistory(result)
	return result
}

func (u *Updater) reject(id string, err error) TxResult {
	result := TxResult{ID: id, Accepted: false, Err: err}
	u.recordHistory(result)
	return result
}

func (u *Updater) recordHistory(r TxResult) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.history = append(u.history, r)
}

// History returns every transaction result recorded so far, in commit
// order.
func (u *Updater) History() []TxResult {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]TxResult, len(u.history))
	copy(out, u.history)
	return out
}

// checkExistence rejects a batch that deactivates a guid, or replaces the
// edges of a source guid, with no corresponding node, unless that node is
// also being created within the same batch. Edge targets are checked by
// checkEdgeValidity.
func (u *Updater) checkExistence(ops []Op) error {
	willExist := make(map[string]bool)
	for _, op := range ops {
		if op.Kind == OpUpsertNode {
			willExist[op.Node.GUID] = true
		}
	}

	exists := func(guid string) bool {
		return willExist[guid] || u.store.Node(guid) != nil
	}

	var violations []string
	for _, op := range ops {
		switch op.Kind {
		case OpDeactivateNode:
			if !exists(op.GUID) {
				violations = append(violations, fmt.Sprintf("deactivate_node: unknown guid %s", op.GUID))
			}
		case OpReplaceEdgesFor:
			if !exists(op.GUID) {
				violations = append(violations, fmt.Sprintf("replace_edges_from: unknown source guid %s", op.GUID))
			}
		}
	}
	if len(violations) > 0 {
		return &scanerr.ConflictError{Kind: scanerr.ConflictExistence, Operations: violations}
	}
	return nil
}

// checkEdgeValidity rejects a batch whose edges reference a guid with no
// corresponding active node: "edges whose endpoints are absent or
// active=false" (spec §4.5). A node created earlier in the same batch
// counts as present. Also rejects edges whose Source doesn't match their
// owning op, and edges with an empty Target.
func (u *Updater) checkEdgeValidity(ops []Op) error {
	willExist := make(map[string]bool)
	for _, op := range ops {
		if op.Kind == OpUpsertNode {
			willExist[op.Node.GUID] = true
		}
	}

	var violations []string
	for _, op := range ops {
		if op.Kind != OpReplaceEdgesFor {
			continue
		}
		for _, e := range op.Edges {
			if e.Source != op.GUID {
				violations = append(violations, fmt.Sprintf("edge source %s does not match transaction guid %s", e.Source, op.GUID))
				continue
			}
			if e.Target == "" {
				violations = append(violations, fmt.Sprintf("edge from %s has empty target", e.Source))
				continue
			}
			if willExist[e.Target] {
				continue
			}
			target := u.store.Node(e.Target)
			if target == nil || !target.Active {
				violations = append(violations, fmt.Sprintf("edge %s -> %s: target is absent or inactive", e.Source, e.Target))
			}
		}
	}
	if len(violations) > 0 {
		return &scanerr.ConflictError{Kind: scanerr.ConflictEdgeValidity, Operations: violations}
	}
	return nil
}

func (u *Updater) checkCycleIntroduction(ops []Op) error {
	var adds []assets.Edge
	for _, op := range ops {
		if op.Kind == OpReplaceEdgesFor {
			adds = append(adds, op.Edges...)
		}
	}
	if len(adds) == 0 {
		return nil
	}
	introduces, err := u.cycleChecker(adds)
	if err != nil {
		return fmt.Errorf("cycle check failed: %w", err)
	}
	if introduces {
		return &scanerr.ConflictError{Kind: scanerr.ConflictCycleIntroduced, Operations: []string{"batch introduces a new cycle under reject_new_cycles"}}
	}
	return nil
}

// checkDataConsistency rejects a batch that both upserts and deactivates
// the same node, an internally contradictory request.
func (u *Updater) checkDataConsistency(ops []Op) error {
	upserted := make(map[string]bool)
	for _, op := range ops {
		if op.Kind == OpUpsertNode {
			upserted[op.Node.GUID] = true
		}
	}
	var violations []string
	for _, op := range ops {
		if op.Kind == OpDeactivateNode && upserted[op.GUID] {
			violations = append(violations, fmt.Sprintf("guid %s both upserted and deactivated in the same transaction", op.GUID))
		}
	}
	if len(violations) > 0 {
		return &scanerr.ConflictError{Kind: scanerr.ConflictDataConsistency, Operations: violations}
	}
	return nil
}
