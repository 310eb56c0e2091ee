package ui

import (
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/sokinpui/amalgam/model"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
)

var (
	// Out receives every message. Stdout is reserved for assembled output.
	Out io.Writer = os.Stderr
	// Quiet silences everything except errors.
	Quiet bool
)

func Header(format string, a ...interface{}) {
	if Quiet {
		return
	}
	HeaderColor.Fprintf(Out, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	if Quiet {
		return
	}
	InfoColor.Fprintf(Out, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	if Quiet {
		return
	}
	SuccessColor.Fprintf(Out, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	if Quiet {
		return
	}
	WarningColor.Fprintf(Out, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(Out, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	if Quiet {
		return
	}
	PathColor.Fprintf(Out, "  "+format+"\n", a...)
}

// --- Summaries ---

func PrintSummary(s model.Summary) {
	if s.Message != "" {
		Header("%s", s.Message)
	}
	if s.Fragments == 0 && len(s.Sinks) == 0 && !s.Checked {
		return
	}

	Header("\n--- Amalgamation Summary ---")
	if s.Name != "" {
		Info("Recipe: %s", s.Name)
	}
	Info("Combined %d fragment(s) into %d byte(s).", s.Fragments, s.Bytes)
	if s.SHA256 != "" {
		Path("sha256 %s", s.SHA256)
	}
	for _, sink := range s.Sinks {
		Success("  -> Wrote: %s", sink)
	}
	if s.Checked {
		if s.Stale {
			Warning("%s is out of date.", s.Output)
			if s.OnDiskSHA256 != "" {
				Path("on disk sha256 %s", s.OnDiskSHA256)
			}
		} else {
			Success("%s is up to date.", s.Output)
		}
	}
}
