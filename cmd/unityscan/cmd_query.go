package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unityscan/depgraph/internal/assets"
	"github.com/unityscan/depgraph/internal/graph"
	"github.com/unityscan/depgraph/internal/source"
)

var (
	findDepsReverse   bool
	findDepsRecursive bool
	findDepsMaxDepth  int

	findUnusedKinds []string
)

// findDepsCmd answers the forward/reverse dependency query of spec §6.
var findDepsCmd = &cobra.Command{
	Use:   "find-deps <path-or-guid>",
	Short: "List an asset's dependencies or dependents",
	Args:  cobra.ExactArgs(1),
	RunE:  runFindDeps,
}

func init() {
	findDepsCmd.Flags().BoolVar(&findDepsReverse, "reverse", false, "list assets that reference the target instead of what it references")
	findDepsCmd.Flags().BoolVar(&findDepsRecursive, "recursive", false, "traverse transitively instead of one hop")
	findDepsCmd.Flags().IntVar(&findDepsMaxDepth, "max-depth", 0, "cap traversal depth (0 = unbounded)")
}

func runFindDeps(cmd *cobra.Command, args []string) error {
	res, a, err := resolveAndOpen()
	if err != nil {
		return err
	}
	defer res.Cleanup()
	defer a.Close()

	guid, err := resolveTarget(a, args[0])
	if err != nil {
		return newCLIError(exitNotFound, err)
	}

	opts := graph.QueryOptions{MaxDepth: findDepsMaxDepth}
	if findDepsRecursive {
		var guids []string
		if findDepsReverse {
			guids = a.engine.AllRefs(guid, opts)
		} else {
			guids = a.engine.AllDeps(guid, opts)
		}
		if len(guids) == 0 {
			fmt.Println("(none)")
			return nil
		}
		for _, g := range guids {
			printNode(a, g)
		}
		return nil
	}

	var edges []assets.Edge
	if findDepsReverse {
		edges = a.engine.DirectRefs(guid, opts)
	} else {
		edges = a.engine.DirectDeps(guid, opts)
	}
	if len(edges) == 0 {
		fmt.Println("(none)")
		return nil
	}
	for _, e := range edges {
		other := e.Target
		if findDepsReverse {
			other = e.Source
		}
		fmt.Printf("%s  (%s, %s)", other, e.DepKind, e.Strength)
		if n := a.store.Node(other); n != nil {
			fmt.Printf("  %s", n.Path)
		}
		fmt.Println()
	}
	return nil
}

// findUnusedCmd lists assets nothing references (spec §4.6 "unused").
var findUnusedCmd = &cobra.Command{
	Use:   "find-unused",
	Short: "List assets with no incoming references",
	RunE:  runFindUnused,
}

func init() {
	findUnusedCmd.Flags().StringArrayVar(&findUnusedKinds, "kind", nil, "restrict to these asset kinds (repeatable)")
}

func runFindUnused(cmd *cobra.Command, args []string) error {
	res, a, err := resolveAndOpen()
	if err != nil {
		return err
	}
	defer res.Cleanup()
	defer a.Close()

	allowed := make(map[assets.Kind]bool, len(findUnusedKinds))
	for _, k := range findUnusedKinds {
		allowed[assets.Kind(k)] = true
	}

	unused := a.engine.Unused()
	for _, n := range unused {
		if len(allowed) > 0 && !allowed[n.Kind] {
			continue
		}
		fmt.Printf("%s  %s  %s\n", n.GUID, n.Kind, n.Path)
	}
	return nil
}

func printNode(a *app, guid string) {
	if n := a.store.Node(guid); n != nil {
		fmt.Printf("%s  %s  %s\n", n.GUID, n.Kind, n.Path)
	} else {
		fmt.Println(guid)
	}
}

// resolveAndOpen resolves --project (local path or git URL) and opens the
// persisted app state over it, the shared prelude every read-only query
// command needs.
func resolveAndOpen() (*source.Resolution, *app, error) {
	res, err := source.Resolve(projectRoot, loggerOrNop())
	if err != nil {
		return nil, nil, newCLIError(exitIO, err)
	}
	a, err := openApp(res.Dir)
	if err != nil {
		res.Cleanup()
		return nil, nil, newCLIError(exitIO, err)
	}
	return res, a, nil
}

// resolveTarget accepts either a bare GUID or a project-relative path and
// returns the guid, per find-deps' "<path-or-guid>" argument.
func resolveTarget(a *app, pathOrGUID string) (string, error) {
	if assets.ValidGUID(pathOrGUID) {
		guid := strings.ToLower(pathOrGUID)
		if a.store.Node(guid) == nil {
			return "", fmt.Errorf("no asset with guid %s", guid)
		}
		return guid, nil
	}
	guid, ok := a.store.ResolvePath(pathOrGUID)
	if !ok {
		return "", fmt.Errorf("no asset at path %s", pathOrGUID)
	}
	return guid, nil
}
