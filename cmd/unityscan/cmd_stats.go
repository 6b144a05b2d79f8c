package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// statsCmd prints a summary of the persisted graph (spec §6).
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics about the dependency graph",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	res, a, err := resolveAndOpen()
	if err != nil {
		return err
	}
	defer res.Cleanup()
	defer a.Close()

	s := a.store.Stats()
	validation := a.engine.ValidateRefs()
	unused := a.engine.Unused()

	fmt.Printf("nodes:        %d total, %d active\n", s.TotalNodes, s.ActiveNodes)
	fmt.Printf("edges:        %d total, %d active\n", s.TotalEdges, s.ActiveEdges)
	fmt.Printf("mutations:    %d\n", s.MutationOps)
	fmt.Printf("dangling refs: %d\n", len(validation))
	fmt.Printf("unused assets: %d\n", len(unused))

	byKind := make(map[string]int)
	for _, n := range a.store.AllNodes() {
		if n.Active {
			byKind[string(n.Kind)]++
		}
	}
	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Printf("  %-20s %d\n", kind, byKind[kind])
	}
	return nil
}
