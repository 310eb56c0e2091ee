package amalgam

import (
	"errors"
	"strings"

	"github.com/sokinpui/amalgam/model"
)

// FileReader reads a fragment's full text by its recipe path.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// ProgressUpdate is a callback function to report progress.
type ProgressUpdate func(current, total int)

// Amalgamator extracts and concatenates fragment regions.
type Amalgamator struct {
	reader           FileReader
	progressCallback ProgressUpdate
}

// New creates an Amalgamator reading fragments through reader.
func New(reader FileReader) *Amalgamator {
	return &Amalgamator{reader: reader}
}

// SetProgressCallback sets a function to be called for progress updates.
func (a *Amalgamator) SetProgressCallback(cb ProgressUpdate) {
	a.progressCallback = cb
}

// Run assembles the recipe.
func (a *Amalgamator) Run(recipe model.Recipe) (string, error) {
	return a.assemble(recipe.Fragments, recipe.Prologue, recipe.Epilogue)
}

// Assemble returns prologue, each fragment's region in order, then epilogue.
// The first failure aborts the whole call and no partial output is returned.
func Assemble(reader FileReader, fragments []model.Fragment, prologue, epilogue string) (string, error) {
	return New(reader).assemble(fragments, prologue, epilogue)
}

func (a *Amalgamator) assemble(fragments []model.Fragment, prologue, epilogue string) (string, error) {
	total := len(fragments)
	a.report(0, total)

	// Compiled matchers are shared between fragments using the same pair.
	compiled := make(map[model.MarkerPair]*markerMatchers)

	var b strings.Builder
	b.WriteString(prologue)
	for i, frag := range fragments {
		region, err := a.extractFragment(frag, compiled)
		if err != nil {
			return "", err
		}
		b.WriteString(region)
		a.report(i+1, total)
	}
	b.WriteString(epilogue)
	return b.String(), nil
}

func (a *Amalgamator) extractFragment(frag model.Fragment, compiled map[model.MarkerPair]*markerMatchers) (string, error) {
	content, err := a.reader.ReadFile(frag.Path)
	if err != nil {
		return "", &SourceError{Path: frag.Path, Err: err}
	}

	if frag.Markers.Start == "" || frag.Markers.End == "" {
		return "", &MarkerError{Path: frag.Path, Marker: frag.Markers.Start + frag.Markers.End, Reason: ReasonMissing}
	}
	matchers, ok := compiled[frag.Markers]
	if !ok {
		matchers, err = compileMarkers(frag.Markers)
		if err != nil {
			return "", withPath(err, frag.Path)
		}
		compiled[frag.Markers] = matchers
	}

	region, err := matchers.extract(string(content), frag.Markers)
	if err != nil {
		return "", withPath(err, frag.Path)
	}
	return region, nil
}

func (a *Amalgamator) report(current, total int) {
	if a.progressCallback != nil {
		a.progressCallback(current, total)
	}
}

func withPath(err error, path string) error {
	var me *MarkerError
	if errors.As(err, &me) {
		me.Path = path
	}
	return err
}
