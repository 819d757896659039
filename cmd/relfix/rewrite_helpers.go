package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonseale44/Clarafi/internal/config"
	"github.com/jonseale44/Clarafi/internal/diag"
	"github.com/jonseale44/Clarafi/internal/diagfmt"
	"github.com/jonseale44/Clarafi/internal/driver"
	"github.com/jonseale44/Clarafi/internal/journal"
	"github.com/jonseale44/Clarafi/internal/observ"
	"github.com/jonseale44/Clarafi/internal/source"
)

// addRewriteFlags registers the flags shared by fix, check and the bare root
// command.
func addRewriteFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("field", nil, "target field name, repeatable (replaces the configured list)")
	cmd.Flags().StringSlice("callee", nil, "relation helper name, repeatable (default: one)")
	cmd.Flags().Bool("diff", false, "print a unified diff of every change")
	cmd.Flags().Bool("verbose", false, "list every located relation with its outcome")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type rewriteFlags struct {
	fields  []string
	callees []string
	diff    bool
	verbose bool
	format  string
}

func readRewriteFlags(cmd *cobra.Command) (rewriteFlags, error) {
	var rf rewriteFlags
	var err error
	if rf.fields, err = cmd.Flags().GetStringSlice("field"); err != nil {
		return rf, err
	}
	if rf.callees, err = cmd.Flags().GetStringSlice("callee"); err != nil {
		return rf, err
	}
	if rf.diff, err = cmd.Flags().GetBool("diff"); err != nil {
		return rf, err
	}
	if rf.verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return rf, err
	}
	if rf.format, err = cmd.Flags().GetString("format"); err != nil {
		return rf, err
	}
	rf.format = strings.ToLower(rf.format)
	switch rf.format {
	case "pretty", "json":
	default:
		return rf, fmt.Errorf("unsupported format %q (must be pretty or json)", rf.format)
	}
	return rf, nil
}

// loadConfig reads --config, or discovers relfix.toml from the working
// directory, then applies --field and --callee.
func loadConfig(cmd *cobra.Command, rf rewriteFlags) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err != nil {
			return config.Config{}, err
		}
		cfg, err = config.Discover(wd)
	}
	if err != nil {
		return config.Config{}, err
	}

	if len(rf.fields) > 0 {
		cfg.Targets.Fields = rf.fields
	}
	if len(rf.callees) > 0 {
		cfg.Targets.Callees = rf.callees
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// targetPaths returns the files named on the command line, or the configured
// paths resolved against the manifest directory.
func targetPaths(cfg *config.Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	paths := make([]string, 0, len(cfg.Paths))
	for _, p := range cfg.Paths {
		paths = append(paths, cfg.Resolve(p))
	}
	return paths
}

type runSettings struct {
	quiet    bool
	timings  bool
	ui       uiMode
	pathMode diagfmt.PathMode
}

func readRunSettings(cmd *cobra.Command) (runSettings, error) {
	flags := cmd.Root().PersistentFlags()
	var rs runSettings
	var err error
	if rs.quiet, err = flags.GetBool("quiet"); err != nil {
		return rs, err
	}
	if rs.timings, err = flags.GetBool("timings"); err != nil {
		return rs, err
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return rs, err
	}
	if rs.ui, err = readUIMode(uiStr); err != nil {
		return rs, err
	}
	pathStr, err := flags.GetString("path-mode")
	if err != nil {
		return rs, err
	}
	if rs.pathMode, err = diagfmt.ParsePathMode(pathStr); err != nil {
		return rs, err
	}
	return rs, nil
}

// driverOptions builds driver.Options from cfg. The journal is opened only for
// real writes with [journal] enabled.
func driverOptions(cmd *cobra.Command, cfg *config.Config, dryRun bool) (driver.Options, error) {
	flags := cmd.Root().PersistentFlags()
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return driver.Options{}, err
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.Options{
		Fields:         cfg.FieldSet(),
		Callees:        cfg.Targets.Callees,
		Keys:           cfg.Targets.Keys,
		Marker:         cfg.Output.CommentMarker,
		DryRun:         dryRun,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		BaseDir:        cfg.Root,
	}
	if !dryRun && cfg.Journal.Enabled {
		j, err := journal.Open(cfg.JournalDir())
		if err != nil {
			return driver.Options{}, err
		}
		opts.Journal = j
		opts.JournalKeep = cfg.Journal.Keep
	}
	return opts, nil
}

// execute runs the driver, with the progress view when it is enabled.
func execute(ctx context.Context, title string, paths []string, opts driver.Options, rs runSettings) (*source.FileSet, []driver.FileResult, error) {
	if shouldUseTUI(rs.ui, len(paths)) && !rs.quiet {
		return runWithUI(ctx, title, paths, opts)
	}
	return driver.Run(ctx, paths, opts)
}

func summaries(results []driver.FileResult) []diagfmt.FileSummary {
	out := make([]diagfmt.FileSummary, 0, len(results))
	for _, r := range results {
		out = append(out, diagfmt.FileSummary{
			Path:    r.Path,
			File:    r.File,
			Result:  r.Result,
			Written: r.Written,
			Err:     r.Err,
			Code:    r.ErrorCode(),
		})
	}
	return out
}

// report prints warnings, diffs and the summary (or the JSON document) for a
// finished run.
func report(out, errOut io.Writer, fs *source.FileSet, results []driver.FileResult, cfg *config.Config, rf rewriteFlags, rs runSettings, dryRun bool, timer *observ.Timer) error {
	files := summaries(results)

	if rf.format == "json" {
		if err := diagfmt.RunJSON(out, files, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         rs.pathMode,
			IncludeNotes:     true,
			IncludeBlocks:    true,
			IncludePreviews:  rf.verbose,
		}); err != nil {
			return err
		}
	} else {
		warnings := diag.NewBag(0)
		for _, r := range results {
			warnings.Merge(r.Bag)
		}
		if warnings.HasWarnings() && !rs.quiet {
			warnings.Sort()
			warnings.Dedup()
			diagfmt.Pretty(errOut, warnings, fs, diagfmt.PrettyOpts{
				Color:     useColor(),
				Context:   1,
				PathMode:  rs.pathMode,
				ShowNotes: true,
			})
			fmt.Fprintln(errOut)
		}
		for _, r := range results {
			if rf.diff && r.Result != nil && r.Result.Changed && r.File != nil {
				if err := diagfmt.Diff(out, r.Path, r.File.Content, r.Result.Text, diagfmt.DiffOpts{
					Color:   useColor(),
					Context: 3,
				}); err != nil {
					return err
				}
			}
		}
		if !rs.quiet || failed(results) {
			diagfmt.Summary(out, files, diagfmt.SummaryOpts{
				Color:    useColor(),
				PathMode: rs.pathMode,
				BaseDir:  cfg.Root,
				Verbose:  rf.verbose,
				DryRun:   dryRun,
			})
		}
	}

	if rs.timings {
		fmt.Fprint(errOut, timer.Summary())
	}
	return nil
}

func failed(results []driver.FileResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// failure turns per-file errors into the command error. Only read, write and
// journal failures count; zero matches is a successful run.
func failure(results []driver.FileResult) error {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%d file(s) could not be processed", n)
}
