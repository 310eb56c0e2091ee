package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/sokinpui/amalgam/model"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevNoColor := Out, color.NoColor
	Out, color.NoColor = &buf, true
	t.Cleanup(func() { Out, color.NoColor = prevOut, prevNoColor })
	return &buf
}

func TestPrintSummary(t *testing.T) {
	buf := capture(t)
	PrintSummary(model.Summary{
		Name:         "simplevectors",
		Output:       "simplevectors.hpp",
		Fragments:    5,
		Bytes:        10,
		SHA256:       "fresh",
		Checked:      true,
		Stale:        true,
		OnDiskSHA256: "old",
		Message:      "Recipe from preset simplevectors",
	})

	out := buf.String()
	for _, want := range []string{
		"Recipe from preset simplevectors",
		"Recipe: simplevectors",
		"Combined 5 fragment(s) into 10 byte(s).",
		"sha256 fresh",
		"simplevectors.hpp is out of date.",
		"on disk sha256 old",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary does not contain %q:\n%s", want, out)
		}
	}
}

func TestPrintSummaryQuiet(t *testing.T) {
	buf := capture(t)
	Quiet = true
	defer func() { Quiet = false }()

	PrintSummary(model.Summary{Fragments: 1, Message: "Recipe from stdin"})
	if buf.Len() != 0 {
		t.Errorf("expected no output in quiet mode, got %q", buf.String())
	}
}
