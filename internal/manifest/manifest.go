// Package manifest reads amalgamation recipes written as Markdown.
//
// A recipe document looks like:
//
//	# simplevectors
//
//	Markers: `// COMBINER_PY_START` `// COMBINER_PY_END`
//
//	```prologue
//	namespace svector {
//	```
//
//	- `include/units.hpp`
//	- `include/legacy.h` `// START_3` `// END_3`
//
//	```epilogue
//	}
//	```
//
// List items are fragments in output order. An item with one code span uses
// the default markers. An item with three spans names its own literal markers.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/sokinpui/amalgam/model"
)

// ErrInvalidManifest is wrapped by every parse error.
var ErrInvalidManifest = errors.New("invalid manifest")

const (
	prologueLang = "prologue"
	epilogueLang = "epilogue"

	markersPrefix  = "markers:"
	patternsPrefix = "patterns:"
)

type builder struct {
	source   []byte
	recipe   model.Recipe
	defaults model.MarkerPair
	// pending holds fragments until the default markers are known, since the
	// Markers paragraph may follow the list.
	pending     []pendingFragment
	hasPrologue bool
	hasEpilogue bool
}

type pendingFragment struct {
	fragment model.Fragment
	line     int
}

// Parse builds a recipe from a Markdown manifest.
func Parse(source []byte) (*model.Recipe, error) {
	b := &builder{source: source}
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			if n.Level == 1 && b.recipe.Name == "" {
				b.recipe.Name = strings.TrimSpace(string(n.Text(source)))
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			return ast.WalkSkipChildren, b.codeBlock(n)
		case *ast.ListItem:
			return ast.WalkContinue, b.listItem(n)
		case *ast.Paragraph:
			if hasAncestor(n, ast.KindListItem) {
				return ast.WalkSkipChildren, nil
			}
			return ast.WalkSkipChildren, b.paragraph(n)
		}
		return ast.WalkContinue, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}
	return b.finish()
}

func (b *builder) codeBlock(n *ast.FencedCodeBlock) error {
	lang := string(n.Language(b.source))
	if lang != prologueLang && lang != epilogueLang {
		return nil
	}

	var content bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		content.Write(line.Value(b.source))
	}

	line := b.lineOf(n)
	switch lang {
	case prologueLang:
		if b.hasPrologue {
			return fmt.Errorf("%w: line %d: duplicate prologue block", ErrInvalidManifest, line)
		}
		b.recipe.Prologue, b.hasPrologue = content.String(), true
	case epilogueLang:
		if b.hasEpilogue {
			return fmt.Errorf("%w: line %d: duplicate epilogue block", ErrInvalidManifest, line)
		}
		b.recipe.Epilogue, b.hasEpilogue = content.String(), true
	}
	return nil
}

func (b *builder) paragraph(n *ast.Paragraph) error {
	first, ok := n.FirstChild().(*ast.Text)
	if !ok {
		return nil
	}
	lead := strings.ToLower(strings.TrimSpace(string(first.Segment.Value(b.source))))

	var pattern bool
	switch {
	case strings.HasPrefix(lead, markersPrefix):
	case strings.HasPrefix(lead, patternsPrefix):
		pattern = true
	default:
		return nil
	}

	line := b.lineOf(n)
	if !b.defaults.IsZero() {
		return fmt.Errorf("%w: line %d: default markers declared twice", ErrInvalidManifest, line)
	}
	spans := codeSpans(n, b.source)
	if len(spans) != 2 {
		return fmt.Errorf("%w: line %d: expected start and end marker, got %d code span(s)", ErrInvalidManifest, line, len(spans))
	}
	b.defaults = model.MarkerPair{Start: spans[0], End: spans[1], Pattern: pattern}
	return nil
}

func (b *builder) listItem(n *ast.ListItem) error {
	line := b.lineOf(n)
	spans := codeSpans(n, b.source)

	var frag model.Fragment
	switch len(spans) {
	case 1:
		frag.Path = spans[0]
	case 3:
		frag.Path = spans[0]
		frag.Markers = model.MarkerPair{Start: spans[1], End: spans[2]}
	default:
		return fmt.Errorf("%w: line %d: fragment needs a path and optionally start and end markers, got %d code span(s)", ErrInvalidManifest, line, len(spans))
	}

	if strings.TrimSpace(frag.Path) == "" {
		return fmt.Errorf("%w: line %d: empty fragment path", ErrInvalidManifest, line)
	}
	b.pending = append(b.pending, pendingFragment{fragment: frag, line: line})
	return nil
}

func (b *builder) finish() (*model.Recipe, error) {
	if len(b.pending) == 0 {
		return nil, fmt.Errorf("%w: no fragments listed", ErrInvalidManifest)
	}

	fragments := make([]model.Fragment, 0, len(b.pending))
	for _, p := range b.pending {
		frag := p.fragment
		if frag.Markers.IsZero() {
			if b.defaults.IsZero() {
				return nil, fmt.Errorf("%w: line %d: %s has no markers and no default Markers paragraph", ErrInvalidManifest, p.line, frag.Path)
			}
			frag.Markers = b.defaults
		}
		fragments = append(fragments, frag)
	}

	recipe := b.recipe
	recipe.Fragments = fragments
	return &recipe, nil
}

// codeSpans returns the text of every code span under n, skipping nested lists.
func codeSpans(n ast.Node, source []byte) []string {
	var spans []string
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node != n && node.Kind() == ast.KindList {
			return ast.WalkSkipChildren, nil
		}
		if cs, ok := node.(*ast.CodeSpan); ok {
			spans = append(spans, codeSpanText(cs, source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return spans
}

func codeSpanText(cs *ast.CodeSpan, source []byte) string {
	var buf bytes.Buffer
	for c := cs.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		}
	}
	return buf.String()
}

func hasAncestor(n ast.Node, kind ast.NodeKind) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == kind {
			return true
		}
	}
	return false
}

// lineOf returns the 1-based source line where n's first text starts.
func (b *builder) lineOf(n ast.Node) int {
	offset := -1
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := node.(*ast.Text); ok {
			offset = t.Segment.Start
			return ast.WalkStop, nil
		}
		if node.Type() == ast.TypeBlock && node.Lines().Len() > 0 {
			offset = node.Lines().At(0).Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if offset < 0 {
		return 0
	}
	return bytes.Count(b.source[:offset], []byte("\n")) + 1
}
