package sink

import (
	"fmt"

	"github.com/atotto/clipboard"
)

type clipboardSink struct {
	write func(string) error
}

// Clipboard copies the output to the system clipboard.
func Clipboard() Sink {
	return &clipboardSink{write: writeClipboard}
}

func writeClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	return clipboard.WriteAll(text)
}

func (s *clipboardSink) Name() string { return "clipboard" }

func (s *clipboardSink) Write(output string) error {
	if err := s.write(output); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}
