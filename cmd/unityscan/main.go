// Command unityscan is the CLI front end for the Unity asset dependency
// scanner: init, scan, find-deps, find-unused, detect-circular, export and
// stats (spec §6). The command surface, file layout (one cmd_*.go per
// command group, a rootCmd var wired up in init()) and the logger lifecycle
// are grounded on theRebelliousNerd-codenerd's cmd/nerd (main.go, PersistentPreRunE
// building a zap.Logger, cmd_init_scan.go's init/scan pair).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unityscan/depgraph/internal/logging"
)

// Exit codes, per spec §6's command surface table.
const (
	exitOK          = 0
	exitIO          = 1
	exitInitFailure = 2
	exitParseFatal  = 3
	exitNotFound    = 4
	exitCyclesFound = 5
)

var (
	projectRoot string
	configPath  string
	envPath     string
	verbose     bool
	jsonLogs    bool

	logger *zap.Logger
)

// rootCmd is the base command; running unityscan with no subcommand just
// prints usage (there is no interactive mode here, unlike the teacher).
var rootCmd = &cobra.Command{
	Use:   "unityscan",
	Short: "Unity asset dependency graph scanner",
	Long: `unityscan builds and queries a dependency graph over a Unity project's
assets: textures, models, scripts, scenes, prefabs and the .meta sidecar
files that bind them together by GUID.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		l, err := logging.New(logging.Options{JSON: jsonLogs, Level: level, Development: verbose})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project", "p", ".", "project root or git URL to scan")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults applied if absent)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "path to an optional .env file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON instead of console format")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(findDepsCmd)
	rootCmd.AddCommand(findUnusedCmd)
	rootCmd.AddCommand(detectCircularCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
