// Package diffcheck compares freshly assembled output against a file on disk.
package diffcheck

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Result is the outcome of a staleness check.
type Result struct {
	// Stale is true when the file is missing or differs from the output.
	Stale bool
	// Missing is true when the file does not exist.
	Missing bool
	// Diff is a unified diff from the file to the output, empty when fresh.
	Diff string
}

// Compare reads path and diffs it against output.
func Compare(path, output string) (Result, error) {
	current, err := os.ReadFile(path)
	missing := false
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		missing = true
	}

	if !missing && string(current) == output {
		return Result{}, nil
	}

	diff, err := Unified(path, string(current), output)
	if err != nil {
		return Result{}, err
	}
	return Result{Stale: true, Missing: missing, Diff: diff}, nil
}

// Unified renders a unified diff with three lines of context.
func Unified(path, before, after string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to render diff for %s: %w", path, err)
	}
	return text, nil
}

// noEOL follows a final line that lacks a newline, as in git diffs.
const noEOL = "\\ No newline at end of file\n"

// splitLines keeps each line's newline. An unterminated last line gets the
// noEOL marker so it never compares equal to its terminated form.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	last := len(lines) - 1
	if lines[last] == "" {
		return lines[:last]
	}
	lines[last] += "\n" + noEOL
	return lines
}
