package manifest_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/sokinpui/amalgam/internal/manifest"
	"github.com/sokinpui/amalgam/model"
)

const sample = "# demo\n" +
	"\n" +
	"Some notes with `inline code` that are ignored.\n" +
	"\n" +
	"Markers: `// START` `// END`\n" +
	"\n" +
	"```prologue\n" +
	"/* banner */\n" +
	"\n" +
	"namespace demo {\n" +
	"```\n" +
	"\n" +
	"- `a.h`\n" +
	"- `legacy/b.h` `// STARTH_1` `// ENDH_1`\n" +
	"- `c.h`\n" +
	"\n" +
	"```epilogue\n" +
	"}\n" +
	"```\n"

func TestParse(t *testing.T) {
	recipe, err := manifest.Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if recipe.Name != "demo" {
		t.Errorf("Name = %q, want demo", recipe.Name)
	}
	if want := "/* banner */\n\nnamespace demo {\n"; recipe.Prologue != want {
		t.Errorf("Prologue = %q, want %q", recipe.Prologue, want)
	}
	if want := "}\n"; recipe.Epilogue != want {
		t.Errorf("Epilogue = %q, want %q", recipe.Epilogue, want)
	}

	defaults := model.MarkerPair{Start: "// START", End: "// END"}
	want := []model.Fragment{
		{Path: "a.h", Markers: defaults},
		{Path: "legacy/b.h", Markers: model.MarkerPair{Start: "// STARTH_1", End: "// ENDH_1"}},
		{Path: "c.h", Markers: defaults},
	}
	if len(recipe.Fragments) != len(want) {
		t.Fatalf("got %d fragments, want %d: %+v", len(recipe.Fragments), len(want), recipe.Fragments)
	}
	for i := range want {
		if recipe.Fragments[i] != want[i] {
			t.Errorf("fragment %d = %+v, want %+v", i, recipe.Fragments[i], want[i])
		}
	}
}

func TestParseMarkersAfterList(t *testing.T) {
	src := "- `a.h`\n- `b.h`\n\nPatterns: `// BEGIN \\d+` `// END \\d+`\n"
	recipe, err := manifest.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(recipe.Fragments) != 2 {
		t.Fatalf("got %d fragments, want 2", len(recipe.Fragments))
	}
	m := recipe.Fragments[1].Markers
	if !m.Pattern || m.Start != `// BEGIN \d+` || m.End != `// END \d+` {
		t.Errorf("unexpected markers: %+v", m)
	}
	if recipe.Prologue != "" || recipe.Epilogue != "" {
		t.Errorf("expected empty prologue and epilogue, got %q / %q", recipe.Prologue, recipe.Epilogue)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{
			name:    "no fragments",
			src:     "# empty\n\nMarkers: `a` `b`\n",
			wantMsg: "no fragments",
		},
		{
			name:    "two code spans in an item",
			src:     "Markers: `a` `b`\n\n- `x.h` `a`\n",
			wantMsg: "line 3",
		},
		{
			name:    "item without a path",
			src:     "Markers: `a` `b`\n\n- just words\n",
			wantMsg: "got 0 code span(s)",
		},
		{
			name:    "no markers anywhere",
			src:     "- `x.h`\n",
			wantMsg: "x.h has no markers",
		},
		{
			name:    "markers paragraph with one span",
			src:     "Markers: `a`\n\n- `x.h`\n",
			wantMsg: "expected start and end marker",
		},
		{
			name:    "markers declared twice",
			src:     "Markers: `a` `b`\n\nMarkers: `c` `d`\n\n- `x.h`\n",
			wantMsg: "declared twice",
		},
		{
			name:    "duplicate prologue",
			src:     "```prologue\nA\n```\n\n```prologue\nB\n```\n\n- `x.h` `a` `b`\n",
			wantMsg: "duplicate prologue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifest.Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, manifest.ErrInvalidManifest) {
				t.Errorf("errors.Is(err, ErrInvalidManifest) = false for %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	names := manifest.Presets()
	if strings.Join(names, ",") != "simplevectors,simplevectors-legacy" {
		t.Fatalf("Presets() = %v", names)
	}

	t.Run("simplevectors", func(t *testing.T) {
		recipe, err := manifest.Preset("simplevectors")
		if err != nil {
			t.Fatalf("Preset failed: %v", err)
		}
		if len(recipe.Fragments) != 5 {
			t.Fatalf("got %d fragments, want 5", len(recipe.Fragments))
		}
		if first := recipe.Fragments[0]; first.Path != "include/simplevectors/core/units.hpp" || first.Markers.Start != "// COMBINER_PY_START" {
			t.Errorf("unexpected first fragment: %+v", first)
		}
		if !strings.HasSuffix(recipe.Prologue, "namespace svector {\n") {
			t.Errorf("prologue does not open the namespace: %q", recipe.Prologue)
		}
		if recipe.Epilogue != "} // namespace svector\n\n#endif\n" {
			t.Errorf("Epilogue = %q", recipe.Epilogue)
		}
	})

	t.Run("simplevectors-legacy", func(t *testing.T) {
		recipe, err := manifest.Preset("simplevectors-legacy")
		if err != nil {
			t.Fatalf("Preset failed: %v", err)
		}
		var order []string
		for _, f := range recipe.Fragments {
			order = append(order, f.Markers.Start)
		}
		want := "// COMBINER_PY_STARTH_3,// COMBINER_PY_STARTH_1,// COMBINER_PY_STARTH_2,// COMBINER_PY_STARTCPP_1,// COMBINER_PY_STARTCPP_2"
		if strings.Join(order, ",") != want {
			t.Errorf("marker order = %v", order)
		}
		if !strings.HasSuffix(recipe.Prologue, "namespace svector{\n") {
			t.Errorf("prologue does not open the namespace: %q", recipe.Prologue)
		}
		if recipe.Epilogue != "}\n\n#endif\n" {
			t.Errorf("Epilogue = %q", recipe.Epilogue)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := manifest.Preset("nope"); err == nil || !strings.Contains(err.Error(), "simplevectors") {
			t.Errorf("expected error listing presets, got %v", err)
		}
	})
}
