package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unityscan/depgraph/internal/assets"
)

var (
	exportFormat string
	exportOutput string
)

// exportCmd dumps the full graph in one of three formats (spec §6). Format
// rendering is explicitly the CLI's concern, not the core's.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the dependency graph as JSON, CSV or DOT",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json, csv or dot")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output file (required)")
	exportCmd.MarkFlagRequired("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	res, a, err := resolveAndOpen()
	if err != nil {
		return err
	}
	defer res.Cleanup()
	defer a.Close()

	f, err := os.Create(exportOutput)
	if err != nil {
		return newCLIError(exitIO, fmt.Errorf("failed to create %s: %w", exportOutput, err))
	}
	defer f.Close()

	nodes := a.store.AllNodes()
	edges := a.store.AllEdges()

	switch exportFormat {
	case "json":
		return exportJSON(f, nodes, edges)
	case "csv":
		return exportCSV(f, edges)
	case "dot":
		return exportDOT(f, nodes, edges)
	default:
		return newCLIError(exitIO, fmt.Errorf("unknown export format %q (want json, csv or dot)", exportFormat))
	}
}

type exportGraph struct {
	Nodes []*assets.Node `json:"nodes"`
	Edges []assets.Edge  `json:"edges"`
}

func exportJSON(f *os.File, nodes []*assets.Node, edges []assets.Edge) error {
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exportGraph{Nodes: nodes, Edges: edges}); err != nil {
		return newCLIError(exitIO, fmt.Errorf("failed to write json export: %w", err))
	}
	return nil
}

func exportCSV(f *os.File, edges []assets.Edge) error {
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"source", "target", "dep_kind", "strength", "context_path", "component_type"}); err != nil {
		return newCLIError(exitIO, err)
	}
	for _, e := range edges {
		row := []string{e.Source, e.Target, string(e.DepKind), e.Strength.String(), e.ContextPath, e.ComponentType}
		if err := w.Write(row); err != nil {
			return newCLIError(exitIO, err)
		}
	}
	return nil
}

func exportDOT(f *os.File, nodes []*assets.Node, edges []assets.Edge) error {
	fmt.Fprintln(f, "digraph assets {")
	for _, n := range nodes {
		fmt.Fprintf(f, "  %q [label=%q, kind=%q];\n", n.GUID, n.Path, n.Kind)
	}
	for _, e := range edges {
		fmt.Fprintf(f, "  %q -> %q [label=%q];\n", e.Source, e.Target, e.DepKind)
	}
	fmt.Fprintln(f, "}")
	return nil
}
