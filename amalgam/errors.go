package amalgam

import (
	"errors"
	"fmt"
)

var (
	// ErrMarkerNotFound is matched by every *MarkerError.
	ErrMarkerNotFound = errors.New("marker not found")
	// ErrStale is returned by a check whose output file is out of date.
	ErrStale = errors.New("output is out of date")
)

// MarkerReason classifies why a marker pair could not select exactly one region.
type MarkerReason string

const (
	ReasonMissing   MarkerReason = "missing"
	ReasonAmbiguous MarkerReason = "ambiguous"
	ReasonOrder     MarkerReason = "order"
	ReasonInvalid   MarkerReason = "invalid"
)

// MarkerError reports a fragment whose markers have drifted out of sync with
// the recipe.
type MarkerError struct {
	Path   string
	Marker string
	Reason MarkerReason
	// Count is the number of matches found for Marker.
	Count int
	Err   error
}

func (e *MarkerError) Error() string {
	where := e.Path
	if where == "" {
		where = "<text>"
	}
	switch e.Reason {
	case ReasonMissing:
		return fmt.Sprintf("%s: marker %q not found", where, e.Marker)
	case ReasonAmbiguous:
		return fmt.Sprintf("%s: marker %q matched %d times, want exactly 1", where, e.Marker, e.Count)
	case ReasonOrder:
		return fmt.Sprintf("%s: end marker %q appears before the start marker", where, e.Marker)
	case ReasonInvalid:
		return fmt.Sprintf("%s: invalid marker pattern %q: %v", where, e.Marker, e.Err)
	default:
		return fmt.Sprintf("%s: marker %q: %s", where, e.Marker, e.Reason)
	}
}

func (e *MarkerError) Is(target error) bool {
	return target == ErrMarkerNotFound
}

func (e *MarkerError) Unwrap() error {
	return e.Err
}

// SourceError reports a fragment that could not be read.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("failed to read fragment %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}
