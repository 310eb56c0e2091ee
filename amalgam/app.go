package amalgam

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/sokinpui/amalgam/cli"
	"github.com/sokinpui/amalgam/internal/diffcheck"
	"github.com/sokinpui/amalgam/internal/fs"
	"github.com/sokinpui/amalgam/internal/manifest"
	"github.com/sokinpui/amalgam/internal/sink"
	"github.com/sokinpui/amalgam/internal/source"
	"github.com/sokinpui/amalgam/model"
)

// App orchestrates the entire application logic.
type App struct {
	cfg              *cli.Config
	pathResolver     *fs.PathResolver
	sourceProvider   *source.SourceProvider
	progressCallback ProgressUpdate
	stdout           io.Writer
	sinks            func(cfg *cli.Config, stdout io.Writer) []sink.Sink
}

// NewApp creates a new App instance.
func NewApp(cfg *cli.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("missing configuration")
	}
	return &App{
		cfg:            cfg,
		pathResolver:   fs.NewPathResolver(cfg.LookupDirs),
		sourceProvider: source.New(),
		stdout:         os.Stdout,
		sinks:          defaultSinks,
	}, nil
}

// SetProgressCallback sets a function to be called for progress updates.
func (a *App) SetProgressCallback(cb ProgressUpdate) {
	a.progressCallback = cb
}

// SetStdout redirects everything the App prints to standard output.
func (a *App) SetStdout(w io.Writer) {
	a.stdout = w
}

// SetSourceProvider replaces how the recipe is read.
func (a *App) SetSourceProvider(sp *source.SourceProvider) {
	a.sourceProvider = sp
}

// Execute executes the main application logic based on parsed flags.
func (a *App) Execute() (summary model.Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	if a.cfg.ListPresets {
		return a.listPresets()
	}

	recipe, origin, err := a.sourceProvider.GetRecipe(a.cfg)
	if err != nil {
		return model.Summary{}, err
	}

	output, err := a.build(recipe)
	if err != nil {
		return model.Summary{}, err
	}

	summary = model.Summary{
		Name:      recipe.Name,
		Output:    a.cfg.Output,
		Fragments: len(recipe.Fragments),
		Bytes:     len(output),
		SHA256:    fs.SHA256Hex([]byte(output)),
		Message:   "Recipe from " + origin,
	}

	if a.cfg.Check {
		return a.check(summary, output)
	}
	return a.emit(summary, output)
}

// build assembles the recipe through the path resolver.
func (a *App) build(recipe *model.Recipe) (string, error) {
	amalgamator := New(a.pathResolver)
	amalgamator.SetProgressCallback(a.progressCallback)
	return amalgamator.Run(*recipe)
}

// check compares output with the existing file and prints the diff if stale.
func (a *App) check(summary model.Summary, output string) (model.Summary, error) {
	result, err := diffcheck.Compare(a.cfg.Output, output)
	if err != nil {
		return model.Summary{}, err
	}
	summary.Checked = true
	summary.Stale = result.Stale
	summary.Diff = result.Diff
	if !result.Missing {
		if summary.OnDiskSHA256, err = fs.GetFileSHA256(a.cfg.Output); err != nil {
			return model.Summary{}, fmt.Errorf("failed to hash %s: %w", a.cfg.Output, err)
		}
	}
	if result.Stale {
		if _, err := io.WriteString(a.stdout, result.Diff); err != nil && !sink.IsBrokenPipe(err) {
			return summary, err
		}
		return summary, ErrStale
	}
	return summary, nil
}

// emit hands the finished output to every configured sink.
func (a *App) emit(summary model.Summary, output string) (model.Summary, error) {
	for _, s := range a.sinks(a.cfg, a.stdout) {
		if err := s.Write(output); err != nil {
			return summary, fmt.Errorf("failed to write %s: %w", s.Name(), err)
		}
		if s.Name() != "stdout" {
			summary.Sinks = append(summary.Sinks, s.Name())
		}
	}
	return summary, nil
}

func defaultSinks(cfg *cli.Config, stdout io.Writer) []sink.Sink {
	var sinks []sink.Sink
	switch {
	case cfg.Output == "":
		sinks = append(sinks, sink.Stdout(stdout))
	case cfg.Nvim:
		sinks = append(sinks, sink.Nvim(cfg.Output))
	default:
		sinks = append(sinks, sink.File(cfg.Output))
	}
	if cfg.Clipboard {
		sinks = append(sinks, sink.Clipboard())
	}
	return sinks
}

func (a *App) listPresets() (model.Summary, error) {
	names := manifest.Presets()
	if _, err := io.WriteString(a.stdout, strings.Join(names, "\n")+"\n"); err != nil && !sink.IsBrokenPipe(err) {
		return model.Summary{}, err
	}
	return model.Summary{}, nil
}
