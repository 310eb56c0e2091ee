// Package sink delivers assembled output to its destinations.
package sink

import (
	"errors"
	"io"
	"syscall"

	"github.com/sokinpui/amalgam/internal/fs"
)

// Sink receives the finished output. Sinks only run after assembly succeeded.
type Sink interface {
	Name() string
	Write(output string) error
}

type stdoutSink struct {
	w io.Writer
}

// Stdout writes the exact output bytes to w.
func Stdout(w io.Writer) Sink {
	return &stdoutSink{w: w}
}

func (s *stdoutSink) Name() string { return "stdout" }

func (s *stdoutSink) Write(output string) error {
	_, err := io.WriteString(s.w, output)
	if IsBrokenPipe(err) {
		// Downstream consumers like `head` may close early.
		return nil
	}
	return err
}

type fileSink struct {
	path string
}

// File replaces path atomically with the output.
func File(path string) Sink {
	return &fileSink{path: path}
}

func (s *fileSink) Name() string { return s.path }

func (s *fileSink) Write(output string) error {
	return fs.WriteFileAtomic(s.path, []byte(output))
}

// IsBrokenPipe reports whether an error is a broken pipe / closed pipe.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}
