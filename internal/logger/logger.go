// Package logger provides structured logging functionality.
// It wraps the standard log/slog package for consistent logging across olyfilter.
//
// Logs are written to stderr so that stdout carries only command results.
// Two console formats are supported:
//   - Human (default): short colored lines for interactive use
//   - JSON: machine-readable structured logging
//
// All helpers use snake_case field names and tag each line with the run id.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

// output is where console logs are written.
var output io.Writer = os.Stderr

// DefaultLevel is the level used when neither --verbose nor --quiet is set.
const DefaultLevel = slog.LevelWarn

func init() {
	SetLevelAndFormat(DefaultLevel, FormatHuman)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// WithModule returns a logger with module context.
func WithModule(moduleType string) *slog.Logger {
	return Logger.With("module_type", moduleType)
}

// ParseLevel converts a level name to slog.Level.
// Accepted values: debug, info, warn/warning, error. Anything else yields DefaultLevel.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return DefaultLevel
	}
}

// =============================================================================
// Execution Context Helpers
// =============================================================================

// ExecutionContext contains context information for run logging.
type ExecutionContext struct {
	// RunID identifies one invocation (required)
	RunID string
	// Stage is the current stage (input, filter, output)
	Stage string
	// ModuleType is the module being executed (csvFile, match, condition, ...)
	ModuleType string
	// FilterIndex is the index of the current filter, -1 outside the filter stage
	FilterIndex int
}

// WithExecution returns a logger with execution context attached.
func WithExecution(ctx ExecutionContext) *slog.Logger {
	return Logger.With(buildContextAttrs(ctx)...)
}

// LogExecutionStart logs the start of a run.
func LogExecutionStart(ctx ExecutionContext, mode string) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs, slog.String("mode", mode))
	Logger.Info("execution started", attrs...)
}

// LogExecutionEnd logs the end of a run with its final status.
func LogExecutionEnd(ctx ExecutionContext, status string, rowsWritten int, duration time.Duration) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.String("status", status),
		slog.Int("rows_written", rowsWritten),
		slog.Duration("duration", duration),
	)
	Logger.Info("execution completed", attrs...)
}

// LogStageStart logs the start of a stage.
func LogStageStart(ctx ExecutionContext, inputRows int) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs, slog.Int("input_rows", inputRows))
	Logger.Debug("stage started", attrs...)
}

// LogStageEnd logs the completion of a stage.
// A failed stage logs at info level with the error category; the caller
// reports the error itself.
func LogStageEnd(ctx ExecutionContext, rowCount int, duration time.Duration, category string, err error) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.Int("record_count", rowCount),
		slog.Duration("duration", duration),
	)

	if err != nil {
		attrs = append(attrs,
			slog.String("error_code", category),
			slog.String("error", err.Error()),
		)
		Logger.Info("stage failed", attrs...)
		return
	}
	Logger.Debug("stage completed", attrs...)
}

func buildContextAttrs(ctx ExecutionContext) []any {
	attrs := make([]any, 0, 8)
	attrs = append(attrs, slog.String("run_id", ctx.RunID))
	if ctx.Stage != "" {
		attrs = append(attrs, slog.String("stage", ctx.Stage))
	}
	if ctx.ModuleType != "" {
		attrs = append(attrs, slog.String("module_type", ctx.ModuleType))
	}
	if ctx.FilterIndex >= 0 {
		attrs = append(attrs, slog.Int("filter_index", ctx.FilterIndex))
	}
	return attrs
}

// =============================================================================
// Formats
// =============================================================================

// OutputFormat represents the log output format.
type OutputFormat int

const (
	// FormatHuman is a human-readable console format with colors and prefixes
	FormatHuman OutputFormat = iota
	// FormatJSON is the machine-readable JSON format
	FormatJSON
)

// ParseFormat converts a format name ("human", "text", "json") to OutputFormat.
func ParseFormat(format string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "human", "text":
		return FormatHuman, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatHuman, fmt.Errorf("unknown log format %q (want human or json)", format)
	}
}

// SetOutput redirects console logs. Tests use it to capture output.
func SetOutput(w io.Writer) {
	output = w
}

// SetLevelAndFormat sets both the log level and console format.
func SetLevelAndFormat(level slog.Level, format OutputFormat) {
	Logger = slog.New(newConsoleHandler(level, format))
}

func newConsoleHandler(level slog.Level, format OutputFormat) slog.Handler {
	if format == FormatJSON {
		return slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	}
	return NewHumanHandler(output, &HumanHandlerOptions{
		Level:     level,
		UseColors: isTerminal(output),
	})
}

// isTerminal returns true if the writer is a terminal (supports colors)
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return false
		}
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// =============================================================================
// Human-Readable Handler
// =============================================================================

// HumanHandlerOptions configures the human-readable log handler.
type HumanHandlerOptions struct {
	// Level is the minimum log level to output
	Level slog.Level
	// UseColors enables ANSI color codes
	UseColors bool
}

// HumanHandler is a slog handler that outputs human-readable log messages.
type HumanHandler struct {
	opts   HumanHandlerOptions
	writer io.Writer
	attrs  []slog.Attr
}

// NewHumanHandler creates a new human-readable log handler.
func NewHumanHandler(w io.Writer, opts *HumanHandlerOptions) *HumanHandler {
	if opts == nil {
		opts = &HumanHandlerOptions{Level: DefaultLevel}
	}
	return &HumanHandler{
		opts:   *opts,
		writer: w,
	}
}

// Enabled returns true if the handler is enabled for the given level.
func (h *HumanHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

// Handle outputs a log record as "HH:MM:SS <prefix> message key=value ...".
// The run id is left out; it is noise on a terminal.
func (h *HumanHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	sb.WriteString(r.Time.Format("15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(h.levelPrefix(r.Level))
	sb.WriteString(" ")
	sb.WriteString(r.Message)

	appendAttr := func(a slog.Attr) {
		if a.Key == "run_id" {
			return
		}
		sb.WriteString(" ")
		sb.WriteString(formatAttr(a))
	}
	for _, a := range h.attrs {
		appendAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(a)
		return true
	})

	sb.WriteString("\n")
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

// WithAttrs returns a new handler with the given attributes added.
func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &HumanHandler{opts: h.opts, writer: h.writer, attrs: merged}
}

// WithGroup returns the handler unchanged; groups are flattened in human output.
func (h *HumanHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *HumanHandler) levelPrefix(level slog.Level) string {
	const (
		colorReset  = "\033[0m"
		colorRed    = "\033[31m"
		colorYellow = "\033[33m"
		colorCyan   = "\033[36m"
	)

	var prefix, color string
	switch {
	case level >= slog.LevelError:
		prefix, color = "✗", colorRed
	case level >= slog.LevelWarn:
		prefix, color = "⚠", colorYellow
	case level >= slog.LevelInfo:
		prefix, color = "ℹ", colorCyan
	default:
		prefix, color = "·", colorReset
	}

	if h.opts.UseColors {
		return color + prefix + colorReset
	}
	return prefix
}

func formatAttr(a slog.Attr) string {
	switch v := a.Value.Any().(type) {
	case time.Duration:
		return fmt.Sprintf("%s=%s", a.Key, formatDuration(v))
	case float64:
		return fmt.Sprintf("%s=%.2f", a.Key, v)
	default:
		return fmt.Sprintf("%s=%v", a.Key, v)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// =============================================================================
// Log File Output Support
// =============================================================================

// logFile holds the currently open log file (if any)
var logFile *os.File

// maxLogFileSize is the size above which an existing log file is rotated (10MB)
const maxLogFileSize = 10 * 1024 * 1024

// rotateLogFile renames path with a timestamp suffix when it exceeds maxLogFileSize.
func rotateLogFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking log file size: %w", err)
	}
	if info.Size() < maxLogFileSize {
		return nil
	}
	rotated := fmt.Sprintf("%s.%s", path, time.Now().Format("20060102-150405"))
	if err := os.Rename(path, rotated); err != nil {
		return fmt.Errorf("rotating log file: %w", err)
	}
	return nil
}

// SetLogFile configures logging to write to both the console and the given file.
// File logs are always JSON.
func SetLogFile(path string, level slog.Level, consoleFormat OutputFormat) error {
	CloseLogFile()

	if err := rotateLogFile(path); err != nil {
		Warn("log rotation failed", slog.String("error", err.Error()))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logFile = f

	Logger = slog.New(&dualHandler{
		console: newConsoleHandler(level, consoleFormat),
		file:    slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}),
	})

	Debug("log file opened", slog.String("path", path))
	return nil
}

// CloseLogFile closes the current log file if one is open.
func CloseLogFile() {
	if logFile == nil {
		return
	}
	if err := logFile.Sync(); err != nil {
		Warn("failed to sync log file", slog.String("error", err.Error()))
	}
	if err := logFile.Close(); err != nil {
		Warn("failed to close log file", slog.String("error", err.Error()))
	}
	logFile = nil
}

// dualHandler is a slog.Handler that writes to both console and file handlers.
type dualHandler struct {
	console slog.Handler
	file    slog.Handler
}

func (d *dualHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return d.console.Enabled(ctx, level) || d.file.Enabled(ctx, level)
}

func (d *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	if d.console.Enabled(ctx, r.Level) {
		if err := d.console.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	if d.file.Enabled(ctx, r.Level) {
		if err := d.file.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (d *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		console: d.console.WithAttrs(attrs),
		file:    d.file.WithAttrs(attrs),
	}
}

func (d *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		console: d.console.WithGroup(name),
		file:    d.file.WithGroup(name),
	}
}
