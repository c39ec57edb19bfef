package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr               string  `json:"addr" yaml:"addr" toml:"addr"`
	MaxMemoryMB        int     `json:"max_memory_mb" yaml:"max_memory_mb" toml:"max_memory_mb"`
	CacheMaxMB         int     `json:"cache_max_mb" yaml:"cache_max_mb" toml:"cache_max_mb"`
	GCThreshold        float64 `json:"gc_threshold" yaml:"gc_threshold" toml:"gc_threshold"`
	EmergencyThreshold float64 `json:"emergency_threshold" yaml:"emergency_threshold" toml:"emergency_threshold"`
	ComponentsFile     string  `json:"components_file" yaml:"components_file" toml:"components_file"`
	StatePath          string  `json:"state_path" yaml:"state_path" toml:"state_path"`
	OptimizeIntervalS  int     `json:"optimize_interval_s" yaml:"optimize_interval_s" toml:"optimize_interval_s"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
