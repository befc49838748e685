// Package cli implements the dbnplot command-line interface.
//
// The commands load a model file, unroll its slice template and export,
// print or serve the result. The CLI is built using cobra and logs through
// charmbracelet/log; terminal output is styled with lipgloss and the
// explore command is a bubbletea program.
//
// # Commands
//
// The main commands are:
//   - render: Export a model as SVG, PDF, PNG, JPG, JSON or DOT
//   - expand: Print the placed nodes and resolved edges as tables
//   - validate: Check a model file and print diagram statistics
//   - explore: Change slice counts and display mode interactively
//   - serve: Run the HTTP API
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The explore
// command silences the logger while the terminal UI owns the screen.
//
// # Configuration
//
// Defaults for the export directory, engine, scale and cache backend come
// from ~/.config/dbnplot/config.toml (or $DBNPLOT_CONFIG) and DBNPLOT_*
// environment variables. Settings stored in the model file override them,
// and command-line flags override both.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level along with the elapsed time, rounded to the
// millisecond. Example output: "Exported hmm.svg (12ms)"
func (p *progress) done(format string, args ...any) {
	p.logger.Infof("%s (%s)", fmt.Sprintf(format, args...), p.elapsed())
}

// debug is done at debug level.
func (p *progress) debug(format string, args ...any) {
	p.logger.Debugf("%s (%s)", fmt.Sprintf(format, args...), p.elapsed())
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
