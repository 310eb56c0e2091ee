package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// Config holds all the command-line flag values.
type Config struct {
	Manifest     string
	Preset       string
	Start        string
	End          string
	Pattern      bool
	PrologueFile string
	EpilogueFile string
	LookupDirs   []string
	Fragments    []string

	Output      string
	Clipboard   bool
	Nvim        bool
	Check       bool
	ListPresets bool
	Quiet       bool
	NoAnimation bool
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags(args []string) (*Config, error) {
	return parse(args, os.Stderr)
}

func parse(args []string, stderr io.Writer) (*Config, error) {
	cfg := &Config{}
	flags := pflag.NewFlagSet("amalgam", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	// Recipe
	flags.StringVarP(&cfg.Manifest, "manifest", "m", "", "Markdown recipe listing prologue, fragments and epilogue ('-' reads stdin).")
	flags.StringVarP(&cfg.Preset, "preset", "p", "", "Use an embedded recipe (see --list-presets).")
	flags.StringVarP(&cfg.Start, "start", "s", "", "Start marker for fragments given as arguments.")
	flags.StringVarP(&cfg.End, "end", "E", "", "End marker for fragments given as arguments.")
	flags.BoolVar(&cfg.Pattern, "pattern", false, "Treat --start and --end as regular expressions.")
	flags.StringVar(&cfg.PrologueFile, "prologue-file", "", "File whose content precedes the first region.")
	flags.StringVar(&cfg.EpilogueFile, "epilogue-file", "", "File whose content follows the last region.")
	flags.StringSliceVarP(&cfg.LookupDirs, "lookup-dir", "l", []string{}, "Directory to look for fragments (default: current directory).")

	// Output
	flags.StringVarP(&cfg.Output, "output", "o", "", "Write the result to a file instead of stdout.")
	flags.BoolVarP(&cfg.Clipboard, "clipboard", "c", false, "Also copy the result to the clipboard.")
	flags.BoolVarP(&cfg.Nvim, "nvim", "n", false, "Write --output through a Neovim buffer.")
	flags.BoolVar(&cfg.Check, "check", false, "Compare the result with --output and print a diff if it is stale.")
	flags.BoolVar(&cfg.ListPresets, "list-presets", false, "List embedded recipes and exit.")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Suppress status messages.")
	flags.BoolVar(&cfg.NoAnimation, "no-animation", false, "Disable loading spinner and progress updates.")

	flags.Usage = func() {
		fmt.Fprintln(stderr, "Usage: amalgam [flags] [fragment ...]")
		fmt.Fprintln(stderr, "\nCombine marker-delimited regions of several files into one.")
		fmt.Fprintln(stderr, "\nExample: amalgam -p simplevectors -o simplevectors.hpp")
		fmt.Fprintln(stderr, "         amalgam -s '// START' -E '// END' a.h b.h > all.h")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	cfg.Fragments = flags.Args()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrUsage is wrapped by every flag validation error.
var ErrUsage = errors.New("invalid usage")

func (c *Config) validate() error {
	if c.ListPresets {
		return nil
	}

	// Mutually exclusive recipe sources
	if c.Manifest != "" && c.Preset != "" {
		return fmt.Errorf("%w: --manifest and --preset are mutually exclusive", ErrUsage)
	}
	fromRecipe := c.Manifest != "" || c.Preset != ""
	if fromRecipe && len(c.Fragments) > 0 {
		return fmt.Errorf("%w: fragment arguments cannot be combined with --manifest or --preset", ErrUsage)
	}
	if (c.Start == "") != (c.End == "") {
		return fmt.Errorf("%w: --start and --end must be given together", ErrUsage)
	}
	if c.Pattern && c.Start == "" {
		return fmt.Errorf("%w: --pattern requires --start and --end", ErrUsage)
	}
	if len(c.Fragments) > 0 && c.Start == "" {
		return fmt.Errorf("%w: fragment arguments require --start and --end", ErrUsage)
	}
	if fromRecipe && (c.Start != "" || c.PrologueFile != "" || c.EpilogueFile != "") {
		return fmt.Errorf("%w: --start, --end, --prologue-file and --epilogue-file only apply to fragment arguments", ErrUsage)
	}

	if c.Check && c.Output == "" {
		return fmt.Errorf("%w: --check requires --output", ErrUsage)
	}
	if c.Nvim && c.Output == "" {
		return fmt.Errorf("%w: --nvim requires --output", ErrUsage)
	}
	if c.Check && (c.Nvim || c.Clipboard) {
		return fmt.Errorf("%w: --check does not write output", ErrUsage)
	}
	return nil
}
