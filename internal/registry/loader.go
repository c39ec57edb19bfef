// Package registry loads the component manifest: reservations declared by
// the surrounding application that memd pre-allocates at startup.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"memd/internal/common/fsutil"
	"memd/pkg/types"
)

type manifest struct {
	Components []types.Component `json:"components" yaml:"components" toml:"components"`
}

// LoadFile reads a component manifest (.yaml/.yml, .json, or .toml) and
// validates it: ids must be unique and non-empty, sizes non-negative, and
// priorities in 1..10 (0 means "use the default", filled in here).
func LoadFile(path string) ([]types.Component, error) {
	expanded, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	switch ext := strings.ToLower(filepath.Ext(expanded)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &m); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &m); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported manifest extension: %s", ext)
	}
	return validate(m.Components)
}

const defaultPriority = 5

func validate(components []types.Component) ([]types.Component, error) {
	seen := make(map[string]struct{}, len(components))
	out := make([]types.Component, 0, len(components))
	for i, c := range components {
		if c.ID == "" {
			return nil, fmt.Errorf("component %d: id is required", i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("component %q: duplicate id", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.ReserveBytes < 0 {
			return nil, fmt.Errorf("component %q: reserve_bytes must not be negative", c.ID)
		}
		if c.Priority == 0 {
			c.Priority = defaultPriority
		}
		if c.Priority < 1 || c.Priority > 10 {
			return nil, fmt.Errorf("component %q: priority out of range 1..10", c.ID)
		}
		out = append(out, c)
	}
	return out, nil
}
