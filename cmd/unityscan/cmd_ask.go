package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unityscan/depgraph/internal/graph"
	"github.com/unityscan/depgraph/internal/nlquery"
)

// askCmd translates an English question into one of the supported queries
// and runs it, per SPEC_FULL.md's natural-language query supplement. It is
// disabled (returns an error) unless OPENAI_API_KEY is set.
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the dependency graph in plain English",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	client, err := nlquery.NewClient()
	if err != nil {
		return newCLIError(exitIO, err)
	}

	req, err := client.Translate(context.Background(), args[0])
	if err != nil {
		return newCLIError(exitIO, err)
	}

	res, a, err := resolveAndOpen()
	if err != nil {
		return err
	}
	defer res.Cleanup()
	defer a.Close()

	switch req.Operation {
	case "direct_deps":
		for _, e := range a.engine.DirectDeps(req.GUID, req.Options) {
			fmt.Printf("%s  (%s, %s)\n", e.Target, e.DepKind, e.Strength)
		}
	case "direct_refs":
		for _, e := range a.engine.DirectRefs(req.GUID, req.Options) {
			fmt.Printf("%s  (%s, %s)\n", e.Source, e.DepKind, e.Strength)
		}
	case "all_deps":
		for _, g := range a.engine.AllDeps(req.GUID, req.Options) {
			fmt.Println(g)
		}
	case "all_refs":
		for _, g := range a.engine.AllRefs(req.GUID, req.Options) {
			fmt.Println(g)
		}
	case "impact":
		result := a.engine.Impact(req.GUID, graph.ImpactDelete, req.Options)
		for _, g := range result.Affected {
			fmt.Println(g)
		}
		fmt.Printf("severity: %s\n", result.Severity)
	case "path":
		path, ok := a.engine.Path(req.GUID, req.TargetGUID, req.Options)
		if !ok {
			fmt.Println("no path found")
			return nil
		}
		fmt.Println(joinPath(path))
	case "unused":
		for _, n := range a.engine.Unused() {
			fmt.Printf("%s  %s\n", n.GUID, n.Path)
		}
	case "validate_refs":
		for _, e := range a.engine.ValidateRefs() {
			fmt.Printf("%s -> %s (%s) is dangling\n", e.Source, e.Target, e.DepKind)
		}
	default:
		return newCLIError(exitIO, fmt.Errorf("model proposed unsupported operation %q", req.Operation))
	}
	return nil
}

func joinPath(guids []string) string {
	out := ""
	for i, g := range guids {
		if i > 0 {
			out += " -> "
		}
		out += g
	}
	return out
}
