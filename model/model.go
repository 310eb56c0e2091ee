package model

// MarkerPair holds the start and end tokens that sandwich a fragment's region.
type MarkerPair struct {
	Start string
	End   string
	// Pattern treats Start and End as regular expressions instead of literals.
	Pattern bool
}

// IsZero reports whether no markers have been set.
func (m MarkerPair) IsZero() bool {
	return m.Start == "" && m.End == ""
}

// Fragment is a single source file contributing one region to the output.
type Fragment struct {
	Path    string
	Markers MarkerPair
}

// Recipe describes one complete amalgamation.
type Recipe struct {
	Name      string
	Prologue  string
	Epilogue  string
	Fragments []Fragment
}

// Summary holds the results of an operation for display.
type Summary struct {
	Name      string
	Output    string
	Fragments int
	Bytes     int
	SHA256    string
	Sinks     []string
	// Checked is set when the output was compared instead of written.
	Checked bool
	Stale   bool
	Diff    string
	// OnDiskSHA256 hashes the existing output file; empty when it is missing.
	OnDiskSHA256 string
	// Message names where the recipe came from.
	Message string
}
