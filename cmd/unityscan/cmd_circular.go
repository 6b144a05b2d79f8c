package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unityscan/depgraph/internal/cycle"
)

var (
	detectCircularReport      string
	detectCircularFailOnCycle bool
	detectCircularJSON        bool
	detectCircularChanged     []string
)

// detectCircularCmd runs CycleAnalyzer over the persisted graph (spec §6).
var detectCircularCmd = &cobra.Command{
	Use:   "detect-circular",
	Short: "Find circular dependency chains",
	RunE:  runDetectCircular,
}

func init() {
	detectCircularCmd.Flags().StringVar(&detectCircularReport, "report", "", "write the full report to this file instead of stdout")
	detectCircularCmd.Flags().BoolVar(&detectCircularFailOnCycle, "fail-on-cycle", false, "exit 5 if any cycle is found")
	detectCircularCmd.Flags().BoolVar(&detectCircularJSON, "json", false, "emit the full structured report as JSON instead of plain text")
	detectCircularCmd.Flags().StringArrayVar(&detectCircularChanged, "changed", nil, "guid that changed since the last analysis (repeatable); when set, only the affected SCCs are re-analyzed instead of the whole graph")
}

func runDetectCircular(cmd *cobra.Command, args []string) error {
	res, a, err := resolveAndOpen()
	if err != nil {
		return err
	}
	defer res.Cleanup()
	defer a.Close()

	analyzer := cycle.NewAnalyzer(cycle.NewStoreAdapter(a.store), a.cfg.Graph.MaxCycleLength)

	var report cycle.Report
	if len(detectCircularChanged) > 0 {
		report = analyzer.AnalyzeIncremental(detectCircularChanged)
	} else {
		report = analyzer.Analyze()
	}

	var out []byte
	if detectCircularJSON {
		out, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			return newCLIError(exitIO, fmt.Errorf("failed to marshal report: %w", err))
		}
		out = append(out, '\n')
	} else {
		out = renderCircularReportText(report)
	}

	if detectCircularReport != "" {
		if err := os.WriteFile(detectCircularReport, out, 0o644); err != nil {
			return newCLIError(exitIO, fmt.Errorf("failed to write report %s: %w", detectCircularReport, err))
		}
	} else {
		fmt.Print(string(out))
	}

	if detectCircularFailOnCycle && len(report.Cycles) > 0 {
		return newCLIError(exitCyclesFound, fmt.Errorf("%d circular dependency chains found", len(report.Cycles)))
	}
	return nil
}

func renderCircularReportText(report cycle.Report) []byte {
	if len(report.Cycles) == 0 {
		return []byte("no circular dependencies found\n")
	}

	var sb []byte
	for _, c := range report.Cycles {
		sb = append(sb, []byte(c.String()+"\n")...)
	}
	if report.LargestCycle != nil {
		sb = append(sb, []byte(fmt.Sprintf("largest cycle: %s\n", report.LargestCycle))...)
	}
	if report.MostCriticalCycle != nil {
		sb = append(sb, []byte(fmt.Sprintf("most critical cycle: %s\n", report.MostCriticalCycle))...)
	}
	if len(report.HotspotNodes) > 0 {
		sb = append(sb, []byte("hotspot nodes:\n")...)
		for _, h := range report.HotspotNodes {
			sb = append(sb, []byte(fmt.Sprintf("  %s  (%d cycles)\n", h.GUID, h.Count))...)
		}
	}
	sb = append(sb, []byte(fmt.Sprintf("analyzed %d cycles in %s\n", len(report.Cycles), report.AnalysisTime))...)
	if report.Truncated {
		sb = append(sb, []byte("warning: one or more strongly connected components exceeded max_cycle_length and were reported as a single complex cycle\n")...)
	}
	return sb
}
