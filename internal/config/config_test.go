package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFallsBackToDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scan.MaxFileSizeMB != 50 {
		t.Errorf("MaxFileSizeMB = %d, want default 50", cfg.Scan.MaxFileSizeMB)
	}
	if cfg.Persistence.StorePath != ".unityscan" {
		t.Errorf("StorePath = %q, want default .unityscan", cfg.Persistence.StorePath)
	}
}

func TestLoadReadsYAMLFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unityscan.yaml")
	content := "scan:\n  paths: [\"Assets\", \"Packages\"]\n  max_file_size_mb: 10\ngraph:\n  reject_new_cycles: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Scan.Paths) != 2 || cfg.Scan.Paths[0] != "Assets" {
		t.Errorf("Scan.Paths = %v, want [Assets Packages]", cfg.Scan.Paths)
	}
	if cfg.Scan.MaxFileSizeMB != 10 {
		t.Errorf("MaxFileSizeMB = %d, want 10", cfg.Scan.MaxFileSizeMB)
	}
	if !cfg.Graph.RejectNewCycles {
		t.Error("RejectNewCycles should be true from file")
	}
	// Fields absent from the file keep their defaults.
	if cfg.Persistence.StorePath != ".unityscan" {
		t.Errorf("StorePath = %q, want default preserved", cfg.Persistence.StorePath)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("UNITY_SCANNER_SCAN_MAX_FILE_SIZE_MB", "5")
	t.Setenv("UNITY_SCANNER_GRAPH_REJECT_NEW_CYCLES", "true")
	t.Setenv("UNITY_SCANNER_SCAN_EXCLUDE_PATHS", "Library,Temp")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scan.MaxFileSizeMB != 5 {
		t.Errorf("MaxFileSizeMB = %d, want 5 from env", cfg.Scan.MaxFileSizeMB)
	}
	if !cfg.Graph.RejectNewCycles {
		t.Error("RejectNewCycles should be true from env")
	}
	if len(cfg.Scan.ExcludePaths) != 2 || cfg.Scan.ExcludePaths[1] != "Temp" {
		t.Errorf("ExcludePaths = %v, want [Library Temp]", cfg.Scan.ExcludePaths)
	}
}
