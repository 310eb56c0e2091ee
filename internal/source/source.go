package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/amalgam/cli"
	"github.com/sokinpui/amalgam/internal/manifest"
	"github.com/sokinpui/amalgam/model"
)

// ErrNoRecipe is returned when no recipe source yields any content.
var ErrNoRecipe = errors.New("no recipe given")

// SourceProvider determines and retrieves the recipe to amalgamate.
type SourceProvider struct {
	Stdin         io.Reader
	StdinPiped    func() bool
	ReadClipboard func() (string, error)
}

// New creates a new SourceProvider reading the process's stdin and clipboard.
func New() *SourceProvider {
	return &SourceProvider{
		Stdin:         os.Stdin,
		StdinPiped:    stdinPiped,
		ReadClipboard: clipboard.ReadAll,
	}
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// GetRecipe builds the recipe selected by cfg and describes where it came
// from. Presets win over manifests, manifests over fragment arguments. With
// none of those, a manifest is read from stdin (if piped) or the clipboard.
func (sp *SourceProvider) GetRecipe(cfg *cli.Config) (*model.Recipe, string, error) {
	switch {
	case cfg.Preset != "":
		recipe, err := manifest.Preset(cfg.Preset)
		return recipe, "preset " + cfg.Preset, err
	case cfg.Manifest == "-":
		return sp.fromStdin()
	case cfg.Manifest != "":
		data, err := os.ReadFile(cfg.Manifest)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read manifest: %w", err)
		}
		recipe, err := parse(cfg.Manifest, data)
		return recipe, "manifest " + cfg.Manifest, err
	case len(cfg.Fragments) > 0:
		recipe, err := fromArgs(cfg)
		return recipe, "arguments", err
	}

	if sp.StdinPiped != nil && sp.StdinPiped() {
		return sp.fromStdin()
	}
	return sp.fromClipboard()
}

func (sp *SourceProvider) fromStdin() (*model.Recipe, string, error) {
	data, err := io.ReadAll(sp.Stdin)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, "", fmt.Errorf("%w: stdin is empty", ErrNoRecipe)
	}
	recipe, err := parse("stdin", data)
	return recipe, "stdin", err
}

func (sp *SourceProvider) fromClipboard() (*model.Recipe, string, error) {
	content, err := sp.ReadClipboard()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, "", fmt.Errorf("%w: clipboard is empty", ErrNoRecipe)
	}
	recipe, err := parse("clipboard", []byte(content))
	return recipe, "clipboard", err
}

func parse(origin string, data []byte) (*model.Recipe, error) {
	recipe, err := manifest.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	return recipe, nil
}

// fromArgs builds a recipe from positional fragment paths sharing one marker pair.
func fromArgs(cfg *cli.Config) (*model.Recipe, error) {
	recipe := &model.Recipe{}

	var err error
	if recipe.Prologue, err = readOptional(cfg.PrologueFile); err != nil {
		return nil, fmt.Errorf("failed to read prologue: %w", err)
	}
	if recipe.Epilogue, err = readOptional(cfg.EpilogueFile); err != nil {
		return nil, fmt.Errorf("failed to read epilogue: %w", err)
	}

	markers := model.MarkerPair{Start: cfg.Start, End: cfg.End, Pattern: cfg.Pattern}
	for _, path := range cfg.Fragments {
		recipe.Fragments = append(recipe.Fragments, model.Fragment{Path: path, Markers: markers})
	}
	return recipe, nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
