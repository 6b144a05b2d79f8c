// Package config loads the scanner's configuration surface (spec §6): the
// scan, performance, graph, query and persistence option groups, their
// defaults, and the UNITY_SCANNER_<SECTION>_<KEY> environment overrides.
//
// Modeled on theRebelliousNerd-codenerd/internal/config/config.go, which
// decodes a YAML config file into a typed struct the same way; generalized
// here to also fold in environment overrides after the file load, since the
// teacher's config has no such layering.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration object threaded explicitly through the
// scan pipeline (spec Design Notes, "Global state": no process-wide
// singleton — one Config is constructed and passed by reference).
type Config struct {
	Scan        ScanConfig        `yaml:"scan"`
	Performance PerformanceConfig `yaml:"performance"`
	Graph       GraphConfig       `yaml:"graph"`
	Query       QueryConfig       `yaml:"query"`
	Persistence PersistenceConfig `yaml:"persistence"`
}

// ScanConfig controls what the FileWalker and ChangeDetector consider.
type ScanConfig struct {
	Paths             []string `yaml:"paths"`
	ExcludePaths      []string `yaml:"exclude_paths"`
	FileExtensions    []string `yaml:"file_extensions"`
	MaxFileSizeMB     int      `yaml:"max_file_size_mb"`
	IgnoreHiddenFiles bool     `yaml:"ignore_hidden_files"`
	FollowSymlinks    bool     `yaml:"follow_symlinks"`
	DeepCheck         bool     `yaml:"deep_check"`
}

// PerformanceConfig holds the performance option group. MaxWorkers and
// PerFileTimeoutS bound the parser worker pool; BatchSize and MemoryLimitMB
// are loaded but nothing reads them.
//
// ProcessPoolSize exists only for forward compatibility with spec §9's open
// question ("it is unclear whether Unity YAML parsing is ever offloaded to
// separate OS processes") — it is parsed but inert; ParserPool always runs
// single-process worker goroutines (see SPEC_FULL.md Open Question 1).
type PerformanceConfig struct {
	MaxWorkers      int `yaml:"max_workers"`
	BatchSize       int `yaml:"batch_size"`
	MemoryLimitMB   int `yaml:"memory_limit_mb"`
	PerFileTimeoutS int `yaml:"per_file_timeout_s"`
	ProcessPoolSize int `yaml:"process_pool_size"`
}

// GraphConfig controls GraphUpdater and CycleAnalyzer behavior.
type GraphConfig struct {
	RejectNewCycles bool `yaml:"reject_new_cycles"`
	MaxCycleLength  int  `yaml:"max_cycle_length"`
}

// QueryConfig holds the query option group. CacheTTLSeconds is loaded and
// can be overridden from the environment, but nothing reads it: the
// QueryEngine's result cache has no expiry.
type QueryConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_s"`
}

// PersistenceConfig controls where durable state lives.
type PersistenceConfig struct {
	StorePath     string `yaml:"store_path"`
	BackupEnabled bool   `yaml:"backup_enabled"`
}

// Default returns the configuration with every documented default from
// spec §6 applied.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			FileExtensions:    []string{".meta", ".prefab", ".unity", ".asset", ".mat", ".controller", ".anim", ".cs"},
			MaxFileSizeMB:     50,
			IgnoreHiddenFiles: true,
			FollowSymlinks:    false,
			DeepCheck:         true,
		},
		Performance: PerformanceConfig{
			MaxWorkers:      runtime.NumCPU(),
			BatchSize:       1000,
			MemoryLimitMB:   512,
			PerFileTimeoutS: 60,
		},
		Graph: GraphConfig{
			RejectNewCycles: false,
			MaxCycleLength:  20,
		},
		Query: QueryConfig{
			CacheTTLSeconds: 300,
		},
		Persistence: PersistenceConfig{
			StorePath:     ".unityscan",
			BackupEnabled: true,
		},
	}
}

// Load reads a YAML config file at path (if it exists), applies it over the
// defaults, loads envPath as a .env file when non-empty (ignored if
// missing), then applies UNITY_SCANNER_<SECTION>_<KEY> environment
// overrides. A missing config file is not an error: Default() is used as
// the base.
func Load(path, envPath string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through with defaults
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if envPath != "" {
		_ = godotenv.Load(envPath) // best-effort; a missing .env is not an error
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides walks the enumerated option set and overwrites any field
// for which UNITY_SCANNER_<SECTION>_<KEY> is set in the environment.
func applyEnvOverrides(cfg *Config) {
	str := func(section, key string) (string, bool) {
		name := fmt.Sprintf("UNITY_SCANNER_%s_%s", strings.ToUpper(section), strings.ToUpper(key))
		v, ok := os.LookupEnv(name)
		return v, ok
	}
	boolVal := func(section, key string, dst *bool) {
		if v, ok := str(section, key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	intVal := func(section, key string, dst *int) {
		if v, ok := str(section, key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	strSliceVal := func(section, key string, dst *[]string) {
		if v, ok := str(section, key); ok && v != "" {
			*dst = strings.Split(v, ",")
		}
	}
	strVal := func(section, key string, dst *string) {
		if v, ok := str(section, key); ok {
			*dst = v
		}
	}

	strSliceVal("scan", "paths", &cfg.Scan.Paths)
	strSliceVal("scan", "exclude_paths", &cfg.Scan.ExcludePaths)
	strSliceVal("scan", "file_extensions", &cfg.Scan.FileExtensions)
	intVal("scan", "max_file_size_mb", &cfg.Scan.MaxFileSizeMB)
	boolVal("scan", "ignore_hidden_files", &cfg.Scan.IgnoreHiddenFiles)
	boolVal("scan", "follow_symlinks", &cfg.Scan.FollowSymlinks)
	boolVal("scan", "deep_check", &cfg.Scan.DeepCheck)

	intVal("performance", "max_workers", &cfg.Performance.MaxWorkers)
	intVal("performance", "batch_size", &cfg.Performance.BatchSize)
	intVal("performance", "memory_limit_mb", &cfg.Performance.MemoryLimitMB)
	intVal("performance", "per_file_timeout_s", &cfg.Performance.PerFileTimeoutS)
	intVal("performance", "process_pool_size", &cfg.Performance.ProcessPoolSize)

	boolVal("graph", "reject_new_cycles", &cfg.Graph.RejectNewCycles)
	intVal("graph", "max_cycle_length", &cfg.Graph.MaxCycleLength)

	intVal("query", "cache_ttl_s", &cfg.Query.CacheTTLSeconds)

	strVal("persistence", "store_path", &cfg.Persistence.StorePath)
	boolVal("persistence", "backup_enabled", &cfg.Persistence.BackupEnabled)
}
