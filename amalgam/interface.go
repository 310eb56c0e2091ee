package amalgam

import (
	"fmt"

	"github.com/sokinpui/amalgam/internal/fs"
	"github.com/sokinpui/amalgam/internal/manifest"
	"github.com/sokinpui/amalgam/model"
)

// Config for using amalgam as a library.
type Config struct {
	// Directories to look for fragments in (default: current directory).
	LookupDirs []string
}

// AssembleManifest parses a Markdown recipe and returns the combined text.
func AssembleManifest(content []byte, config Config) (string, error) {
	recipe, err := manifest.Parse(content)
	if err != nil {
		return "", err
	}
	return AssembleRecipe(*recipe, config)
}

// AssemblePreset combines one of the embedded recipes.
func AssemblePreset(name string, config Config) (string, error) {
	recipe, err := manifest.Preset(name)
	if err != nil {
		return "", err
	}
	return AssembleRecipe(*recipe, config)
}

// AssembleRecipe combines recipe, resolving fragments against config.LookupDirs.
func AssembleRecipe(recipe model.Recipe, config Config) (string, error) {
	output, err := New(fs.NewPathResolver(config.LookupDirs)).Run(recipe)
	if err != nil {
		return "", fmt.Errorf("failed to assemble %s: %w", recipeName(recipe), err)
	}
	return output, nil
}

func recipeName(recipe model.Recipe) string {
	if recipe.Name == "" {
		return "recipe"
	}
	return recipe.Name
}
