package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/unityscan/depgraph/internal/config"
)

// initCmd writes a default config file and creates the (initially empty)
// persistent stores a project needs before its first scan, per spec §6.
var initCmd = &cobra.Command{
	Use:   "init <project-root>",
	Short: "Write default config and create empty persistent stores",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := args[0]
	if err := os.MkdirAll(root, 0o755); err != nil {
		return newCLIError(exitInitFailure, fmt.Errorf("failed to create project root %s: %w", root, err))
	}

	cfg := config.Default()
	cfg.Scan.Paths = []string{"Assets"}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return newCLIError(exitInitFailure, fmt.Errorf("failed to marshal default config: %w", err))
	}

	cfgFile := configPath
	if cfgFile == "" {
		cfgFile = filepath.Join(root, "unityscan.yaml")
	}
	if err := os.WriteFile(cfgFile, data, 0o644); err != nil {
		return newCLIError(exitInitFailure, fmt.Errorf("failed to write config %s: %w", cfgFile, err))
	}

	storeDir := filepath.Join(root, cfg.Persistence.StorePath)
	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		return newCLIError(exitInitFailure, fmt.Errorf("failed to create store directory %s: %w", storeDir, err))
	}

	app, err := openApp(root)
	if err != nil {
		return newCLIError(exitInitFailure, err)
	}
	defer app.Close()

	fmt.Printf("initialized unityscan project at %s (config: %s, store: %s)\n", root, cfgFile, storeDir)
	return nil
}
