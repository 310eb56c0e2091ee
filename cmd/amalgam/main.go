package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/sokinpui/amalgam/amalgam"
	"github.com/sokinpui/amalgam/cli"
	"github.com/sokinpui/amalgam/internal/tui"
	"github.com/sokinpui/amalgam/internal/ui"
	"github.com/sokinpui/amalgam/model"
)

func main() {
	cfg, err := cli.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		// pflag already prints parse errors; validation errors are ours.
		if errors.Is(err, cli.ErrUsage) {
			ui.Error("%v", err)
		}
		os.Exit(1)
	}
	ui.Quiet = cfg.Quiet

	app, err := amalgam.NewApp(cfg)
	if err != nil {
		ui.Error("Failed to initialize application: %v", err)
		os.Exit(1)
	}

	rendered := false
	if useTUI(cfg) {
		m := tui.New(app)
		p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
		m.SetProgram(p)
		if _, err := p.Run(); err != nil {
			ui.Error("Error running program: %v", err)
			os.Exit(1)
		}
		err, rendered = m.Err(), true
	} else {
		var summary model.Summary
		summary, err = app.Execute()
		if err == nil || errors.Is(err, amalgam.ErrStale) {
			ui.PrintSummary(summary)
		}
	}

	if err != nil {
		report(err, rendered)
		os.Exit(1)
	}
}

// useTUI reports whether the spinner and summary view should run. Output to
// stdout and check mode stay plain so they can be piped.
func useTUI(cfg *cli.Config) bool {
	if cfg.Quiet || cfg.NoAnimation || cfg.ListPresets || cfg.Check || cfg.Output == "" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// report prints err unless the TUI already rendered it.
func report(err error, rendered bool) {
	if errors.Is(err, amalgam.ErrStale) {
		return // Already reported in the summary.
	}
	var detailed *amalgam.DetailedError
	if errors.As(err, &detailed) {
		fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
	}
	if !rendered {
		ui.Error("Error: %v", err)
	}
}
