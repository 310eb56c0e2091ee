package amalgam

import (
	"regexp"
	"strings"

	"github.com/sokinpui/amalgam/model"
)

// markerMatchers holds the compiled start and end matchers of a marker pair.
// A start match consumes the rest of its line so the region begins on the
// following line. An end match must also terminate its line, which keeps
// `// END` from matching inside `// ENDH_3`.
type markerMatchers struct {
	start *regexp.Regexp
	end   *regexp.Regexp
}

func compileMarkers(m model.MarkerPair) (*markerMatchers, error) {
	start, end := m.Start, m.End
	if !m.Pattern {
		start, end = regexp.QuoteMeta(start), regexp.QuoteMeta(end)
	}

	startRe, err := regexp.Compile(`(?s)(?:` + start + `)[ \t]*\r?\n`)
	if err != nil {
		return nil, &MarkerError{Marker: m.Start, Reason: ReasonInvalid, Err: err}
	}
	endRe, err := regexp.Compile(`(?s)(?:` + end + `)[ \t]*(?:\r?\n|\z)`)
	if err != nil {
		return nil, &MarkerError{Marker: m.End, Reason: ReasonInvalid, Err: err}
	}
	return &markerMatchers{start: startRe, end: endRe}, nil
}

// ExtractRegion returns the text strictly between the start and end marker
// lines. Each marker must match exactly once, with the end after the start.
func ExtractRegion(text string, markers model.MarkerPair) (string, error) {
	if markers.Start == "" || markers.End == "" {
		return "", &MarkerError{Marker: markers.Start + markers.End, Reason: ReasonMissing}
	}
	matchers, err := compileMarkers(markers)
	if err != nil {
		return "", err
	}
	return matchers.extract(text, markers)
}

func (mm *markerMatchers) extract(text string, markers model.MarkerPair) (string, error) {
	starts := mm.start.FindAllStringIndex(text, -1)
	if err := checkCount(markers.Start, len(starts)); err != nil {
		return "", err
	}
	ends := mm.end.FindAllStringIndex(text, -1)
	if err := checkCount(markers.End, len(ends)); err != nil {
		return "", err
	}

	begin, finish := starts[0][1], ends[0][0]
	if finish < begin {
		return "", &MarkerError{Marker: markers.End, Reason: ReasonOrder, Count: 1}
	}

	return trimMarkerIndent(text[begin:finish]), nil
}

func checkCount(marker string, n int) error {
	switch {
	case n == 0:
		return &MarkerError{Marker: marker, Reason: ReasonMissing}
	case n > 1:
		return &MarkerError{Marker: marker, Reason: ReasonAmbiguous, Count: n}
	}
	return nil
}

// trimMarkerIndent drops the leading blanks of the end marker's own line.
func trimMarkerIndent(region string) string {
	i := strings.LastIndexByte(region, '\n')
	if strings.Trim(region[i+1:], " \t") != "" {
		return region
	}
	return region[:i+1]
}
