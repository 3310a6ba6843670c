// Package presets loads named shrinkingZoneConfig stage lists from YAML
// files, so operators can ship a reusable zone preset (e.g. "classic")
// instead of inlining the full stage list into every game's Settings
// map. Uses gopkg.in/yaml.v3, a dependency of aurel42-phileasgo.
package presets

import (
	"embed"
	"fmt"

	"github.com/mark3labs/assassin-core/domain"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var files embed.FS

// Load reads a named preset (without the .yaml extension) from the
// embedded preset directory.
func Load(name string) (domain.ShrinkingZoneConfig, error) {
	data, err := files.ReadFile(name + ".yaml")
	if err != nil {
		return domain.ShrinkingZoneConfig{}, fmt.Errorf("preset %q not found: %w", name, err)
	}
	var cfg domain.ShrinkingZoneConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ShrinkingZoneConfig{}, fmt.Errorf("parse preset %q: %w", name, err)
	}
	return cfg, nil
}
