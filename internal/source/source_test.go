package source_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sokinpui/amalgam/cli"
	"github.com/sokinpui/amalgam/internal/manifest"
	"github.com/sokinpui/amalgam/internal/source"
	"github.com/sokinpui/amalgam/internal/ui"
	"github.com/sokinpui/amalgam/model"
)

const manifestText = "# piped\n\nMarkers: `// S` `// E`\n\n- `x.h`\n"

func provider(stdin string, piped bool, clip string) *source.SourceProvider {
	return &source.SourceProvider{
		Stdin:         strings.NewReader(stdin),
		StdinPiped:    func() bool { return piped },
		ReadClipboard: func() (string, error) { return clip, nil },
	}
}

func TestGetRecipeFromArgs(t *testing.T) {
	dir := t.TempDir()
	prologue := filepath.Join(dir, "pro.txt")
	epilogue := filepath.Join(dir, "epi.txt")
	os.WriteFile(prologue, []byte("P\n"), 0644)
	os.WriteFile(epilogue, []byte("E\n"), 0644)

	cfg := &cli.Config{
		Start:        `// S\d`,
		End:          `// E\d`,
		Pattern:      true,
		PrologueFile: prologue,
		EpilogueFile: epilogue,
		Fragments:    []string{"b.h", "a.h"},
	}
	recipe, _, err := provider("", false, "").GetRecipe(cfg)
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if recipe.Prologue != "P\n" || recipe.Epilogue != "E\n" {
		t.Errorf("prologue/epilogue = %q / %q", recipe.Prologue, recipe.Epilogue)
	}
	markers := model.MarkerPair{Start: `// S\d`, End: `// E\d`, Pattern: true}
	want := []model.Fragment{{Path: "b.h", Markers: markers}, {Path: "a.h", Markers: markers}}
	if len(recipe.Fragments) != 2 || recipe.Fragments[0] != want[0] || recipe.Fragments[1] != want[1] {
		t.Errorf("Fragments = %+v, want %+v", recipe.Fragments, want)
	}

	cfg.PrologueFile = filepath.Join(dir, "missing.txt")
	if _, _, err := provider("", false, "").GetRecipe(cfg); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error for a missing prologue, got %v", err)
	}
}

func TestGetRecipeFromManifest(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "recipe.md")
		os.WriteFile(path, []byte(manifestText), 0644)
		recipe, _, err := provider("", false, "").GetRecipe(&cli.Config{Manifest: path})
		if err != nil {
			t.Fatalf("GetRecipe failed: %v", err)
		}
		if recipe.Name != "piped" || len(recipe.Fragments) != 1 {
			t.Errorf("unexpected recipe: %+v", recipe)
		}
	})

	t.Run("explicit stdin", func(t *testing.T) {
		recipe, _, err := provider(manifestText, false, "").GetRecipe(&cli.Config{Manifest: "-"})
		if err != nil {
			t.Fatalf("GetRecipe failed: %v", err)
		}
		if recipe.Name != "piped" {
			t.Errorf("Name = %q", recipe.Name)
		}
	})

	t.Run("piped stdin wins over clipboard", func(t *testing.T) {
		recipe, _, err := provider(manifestText, true, "# clip\n\n- `c.h` `a` `b`\n").GetRecipe(&cli.Config{})
		if err != nil {
			t.Fatalf("GetRecipe failed: %v", err)
		}
		if recipe.Name != "piped" {
			t.Errorf("Name = %q, want piped", recipe.Name)
		}
	})

	t.Run("clipboard", func(t *testing.T) {
		recipe, _, err := provider("", false, "# clip\n\n- `c.h` `a` `b`\n").GetRecipe(&cli.Config{})
		if err != nil {
			t.Fatalf("GetRecipe failed: %v", err)
		}
		if recipe.Name != "clip" {
			t.Errorf("Name = %q, want clip", recipe.Name)
		}
	})

	t.Run("empty clipboard", func(t *testing.T) {
		_, _, err := provider("", false, "  \n").GetRecipe(&cli.Config{})
		if !errors.Is(err, source.ErrNoRecipe) {
			t.Errorf("expected ErrNoRecipe, got %v", err)
		}
	})

	t.Run("invalid manifest names its origin", func(t *testing.T) {
		_, _, err := provider("# nothing here\n", true, "").GetRecipe(&cli.Config{})
		if !errors.Is(err, manifest.ErrInvalidManifest) || !strings.HasPrefix(err.Error(), "stdin:") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestGetRecipePreset(t *testing.T) {
	recipe, _, err := provider("", false, "").GetRecipe(&cli.Config{Preset: "simplevectors-legacy"})
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if recipe.Name != "simplevectors-legacy" || len(recipe.Fragments) != 5 {
		t.Errorf("unexpected recipe: %+v", recipe)
	}
}

func TestGetRecipeOrigin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.md")
	os.WriteFile(path, []byte(manifestText), 0644)

	tests := []struct {
		name string
		sp   *source.SourceProvider
		cfg  *cli.Config
		want string
	}{
		{"preset", provider("", false, ""), &cli.Config{Preset: "simplevectors"}, "preset simplevectors"},
		{"manifest", provider("", false, ""), &cli.Config{Manifest: path}, "manifest " + path},
		{"arguments", provider("", false, ""), &cli.Config{Start: "a", End: "b", Fragments: []string{"x.h"}}, "arguments"},
		{"stdin", provider(manifestText, true, ""), &cli.Config{}, "stdin"},
		{"clipboard", provider("", false, manifestText), &cli.Config{}, "clipboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, origin, err := tt.sp.GetRecipe(tt.cfg)
			if err != nil {
				t.Fatalf("GetRecipe failed: %v", err)
			}
			if origin != tt.want {
				t.Errorf("origin = %q, want %q", origin, tt.want)
			}
		})
	}
}

// The TUI owns stderr while a recipe is read, so reading must stay silent.
func TestGetRecipeWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	prev := ui.Out
	ui.Out = &buf
	defer func() { ui.Out = prev }()

	for _, cfg := range []*cli.Config{{Preset: "simplevectors"}, {Manifest: "-"}, {}} {
		if _, _, err := provider(manifestText, false, manifestText).GetRecipe(cfg); err != nil {
			t.Fatalf("GetRecipe(%+v) failed: %v", cfg, err)
		}
	}
	if buf.Len() != 0 {
		t.Errorf("GetRecipe wrote to the terminal: %q", buf.String())
	}
}
