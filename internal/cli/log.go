// Package cli implements the tierviz command-line interface.
//
// Commands fetch scenario results from the COEQWAL API, compute chart
// layouts, and serve them over HTTP. The CLI is built using cobra and logs
// through charmbracelet/log; --verbose (-v) enables debug output.
//
// # Commands
//
// The main commands are:
//   - layout: compute a tier grid, treemap or bar layout
//   - fetch: save a scenario's objectives as a dataset file
//   - scenarios: list scenarios, optionally picking one interactively
//   - hierarchy: show the treemap hierarchy as DOT or SVG
//   - serve: run the HTTP layout API
//   - cache, config: manage local state
//
// # Logging
//
// Loggers are passed through context.Context so helpers can report
// progress without extra parameters.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with the CLI's timestamp format
// ("15:04:05.00") writing to w at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time rounded to the
// millisecond, e.g. "computed layout mode=tiers marks=412 elapsed=38ms".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
