package manifest

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/sokinpui/amalgam/model"
)

//go:embed presets/*.md
var presetFS embed.FS

// Presets returns the names of the embedded recipes, sorted.
func Presets() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names
}

// PresetSource returns the raw Markdown of an embedded recipe.
func PresetSource(name string) ([]byte, error) {
	data, err := presetFS.ReadFile(path.Join("presets", name+".md"))
	if err != nil {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(Presets(), ", "))
	}
	return data, nil
}

// Preset parses an embedded recipe.
func Preset(name string) (*model.Recipe, error) {
	data, err := PresetSource(name)
	if err != nil {
		return nil, err
	}
	recipe, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", name, err)
	}
	return recipe, nil
}
