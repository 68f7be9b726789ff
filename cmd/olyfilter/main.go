// Package main provides the CLI entry point for olyfilter.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/olyfilter/olyfilter/internal/cli"
	"github.com/olyfilter/olyfilter/internal/config"
	"github.com/olyfilter/olyfilter/internal/errhandling"
	"github.com/olyfilter/olyfilter/internal/factory"
	"github.com/olyfilter/olyfilter/internal/inspect"
	"github.com/olyfilter/olyfilter/internal/logger"
	"github.com/olyfilter/olyfilter/internal/modules/input"
	"github.com/olyfilter/olyfilter/internal/runtime"
)

var (
	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// options holds the raw command-line flag values.
type options struct {
	csv         string
	columns     bool
	unique      string
	limit       int
	filters     []string
	contains    bool
	showColumns bool
	out         string
	where       string
	configPath  string
	verbose     bool
	quiet       bool
	logFormat   string
	logFile     string
}

// app carries the output streams and the exit code of one invocation.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	opts     options
	exitCode int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer logger.CloseLogFile()

	if err := cmd.ExecuteContext(ctx); err != nil {
		cli.PrintError(stderr, err)
		return errhandling.ExitCode(err)
	}
	return a.exitCode
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "olyfilter [flags] [COL=VAL[,VAL2]...]",
		Short: "Filter the Olympic Games dataset by column values",
		Long: `olyfilter filters a delimited dataset of Olympic Games results by column
values, lists its columns or the distinct values of one column, and prints
or exports the result.

Filters are COL=VAL[,VAL2,...] expressions: values of one filter are ORed,
separate filters are ANDed. Trailing arguments are extra filters.

Exit codes:
  0 - Success
  1 - Input error (missing file, unknown column, bad filter or flag)
  2 - Profile parse or validation error
  3 - Runtime I/O error

Examples:
  # List the columns
  olyfilter --columns

  # First five distinct sports
  olyfilter --unique Sport --limit 5

  # Gold medals in swimming, relevant columns only
  olyfilter --filter Sport=Swimming --filter Medal=Gold --show-columns

  # Women taller than 180 cm (missing heights never match)
  olyfilter --where 'Height > 180 && Sex == "F"' --show-columns

  # Teams whose name contains "fin", exported compressed
  olyfilter --contains Team=fin --out exports/fin.csv.gz`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRoot(cmd, args)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errhandling.NewUsageError(err.Error())
	})

	f := root.Flags()
	f.StringVar(&a.opts.csv, "csv", input.DefaultPath, "Path to the dataset (.csv, .csv.gz, .csv.zst)")
	f.BoolVar(&a.opts.columns, "columns", false, "List all columns and exit")
	f.StringVar(&a.opts.unique, "unique", "", "List the distinct values of `COL` and exit")
	f.IntVar(&a.opts.limit, "limit", 0, "Cap the number of rows or distinct values (0 = no limit)")
	f.StringArrayVar(&a.opts.filters, "filter", nil, "Filter expression `COL=VAL[,VAL2]` (repeatable)")
	f.BoolVar(&a.opts.contains, "contains", false, "Match filters as case-insensitive substrings")
	f.BoolVar(&a.opts.showColumns, "show-columns", false, "Keep only the default relevant columns")
	f.StringVar(&a.opts.out, "out", "", "Export the result to `FILE` instead of printing it")
	f.StringVar(&a.opts.where, "where", "", "Keep rows for which the boolean `EXPR` holds (e.g. 'Year >= 2000')")
	f.StringVar(&a.opts.configPath, "config", "", "Profile `FILE` (YAML or JSON) supplying flag defaults")

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Enable debug logging and a run summary")
	pf.BoolVarP(&a.opts.quiet, "quiet", "q", false, "Only log errors")
	pf.StringVar(&a.opts.logFormat, "log-format", "", "Log format: human or json")
	pf.StringVar(&a.opts.logFile, "log-file", "", "Also write JSON logs to `FILE`")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version, commit hash, and build date information.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version: %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	})

	return root
}

// runRoot resolves settings and dispatches to exactly one mode.
func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	settings, err := a.resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	if settings == nil {
		// Profile errors were already printed.
		a.exitCode = errhandling.ExitConfigError
		return nil
	}

	if settings.Limit < 0 {
		return errhandling.NewUsageError(fmt.Sprintf("--limit must be zero or positive, got %d", settings.Limit))
	}

	ctx := cmd.Context()
	switch {
	case a.opts.columns:
		return a.listColumns(ctx, settings)
	case a.opts.unique != "":
		return a.listUnique(ctx, settings)
	default:
		return a.runPipeline(ctx, settings)
	}
}

// resolveSettings layers defaults, environment, profile and flags. It returns
// nil settings and no error when profile errors have been reported.
func (a *app) resolveSettings(cmd *cobra.Command, args []string) (*config.Settings, error) {
	if err := config.LoadDotEnv(config.DefaultEnvFile); err != nil {
		return nil, errhandling.NewConfigError(config.DefaultEnvFile, err.Error())
	}

	s := config.DefaultSettings()
	s.ApplyEnv(config.EnvFromOS())

	flags := cmd.Flags()
	if flags.Changed("log-format") {
		s.LogFormat = a.opts.logFormat
	}
	if err := a.setupLogging(s); err != nil {
		return nil, err
	}

	if a.opts.configPath != "" {
		profile, ok := a.loadProfile(a.opts.configPath)
		if !ok {
			return nil, nil
		}
		s.ApplyProfile(profile)
	}

	if flags.Changed("csv") {
		s.CSV = a.opts.csv
	}
	if flags.Changed("filter") || len(args) > 0 {
		s.Filters = append(append([]string(nil), a.opts.filters...), args...)
	}
	if flags.Changed("contains") {
		s.Contains = a.opts.contains
	}
	if flags.Changed("where") {
		s.Where = a.opts.where
	}
	if flags.Changed("show-columns") {
		s.ShowColumns = a.opts.showColumns
	}
	if flags.Changed("limit") {
		s.Limit = a.opts.limit
	}
	if flags.Changed("out") {
		s.Out = a.opts.out
	}

	logger.Debug("settings resolved",
		slog.String("csv", s.CSV),
		slog.Any("filters", s.Filters),
		slog.Bool("contains", s.Contains),
		slog.String("where", s.Where),
		slog.Bool("show_columns", s.ShowColumns),
		slog.Int("limit", s.Limit),
		slog.String("out", s.Out),
	)
	return &s, nil
}

func (a *app) setupLogging(s config.Settings) error {
	format, err := logger.ParseFormat(s.LogFormat)
	if err != nil {
		return errhandling.NewUsageError(err.Error())
	}
	level := logger.ParseLevel(s.LogLevel)
	switch {
	case a.opts.verbose:
		level = slog.LevelDebug
	case a.opts.quiet:
		level = slog.LevelError
	}
	logger.SetOutput(a.stderr)
	if a.opts.logFile == "" {
		logger.SetLevelAndFormat(level, format)
		return nil
	}
	if err := logger.SetLogFile(a.opts.logFile, level, format); err != nil {
		return errhandling.NewIOError("cannot open log file", err)
	}
	return nil
}

// loadProfile parses, validates and decodes a profile, printing any errors.
func (a *app) loadProfile(path string) (*config.Profile, bool) {
	result := config.ParseProfile(path)
	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(a.stderr, result.ParseErrors, a.opts.verbose)
		return nil, false
	}
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(a.stderr, path, result.ValidationErrors, a.opts.verbose, a.opts.quiet)
		return nil, false
	}
	profile, err := config.DecodeProfile(result.Data)
	if err != nil {
		cli.PrintError(a.stderr, err)
		return nil, false
	}
	logger.Debug("profile loaded", slog.String("path", path), slog.String("format", result.Format))
	return profile, true
}

func (a *app) listColumns(ctx context.Context, s *config.Settings) error {
	in := factory.CreateInputModule(s)
	defer in.Close()

	tbl, err := in.Fetch(ctx)
	if err != nil {
		return err
	}
	cli.PrintColumns(a.stdout, inspect.Columns(tbl))
	return nil
}

func (a *app) listUnique(ctx context.Context, s *config.Settings) error {
	in := factory.CreateInputModule(s)
	defer in.Close()

	tbl, err := in.Fetch(ctx)
	if err != nil {
		return err
	}
	values, err := inspect.Unique(tbl, a.opts.unique, s.Limit)
	if err != nil {
		return err
	}
	cli.PrintUnique(a.stdout, a.opts.unique, values)
	return nil
}

// runPipeline builds Input → Filters → Output and executes it. Arguments are
// checked before the dataset is read.
func (a *app) runPipeline(ctx context.Context, s *config.Settings) error {
	filters, err := factory.CreateFilterModules(s)
	if err != nil {
		return err
	}
	out, err := factory.CreateOutputModule(s, a.stdout)
	if err != nil {
		return err
	}

	executor := runtime.NewExecutorWithModules(factory.CreateInputModule(s), filters, out)
	result, err := executor.Execute(ctx)
	if a.opts.verbose {
		cli.PrintRunSummary(a.stderr, result)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errhandling.NewIOError("interrupted", err)
		}
		return err
	}

	if s.Out != "" {
		cli.PrintExported(a.stdout, s.Out)
	}
	return nil
}
