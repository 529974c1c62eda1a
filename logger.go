package symsearch

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with search-specific helpers so that every
// component logs with the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithDirection adds a direction field to the logger.
func (l *Logger) WithDirection(d Direction) *Logger {
	return &Logger{Logger: l.Logger.With("direction", d.String())}
}

// WithRun adds a run id field to the logger.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{Logger: l.Logger.With("run", id)}
}

// LogInsert logs a set being closed at a cost.
func (l *Logger) LogInsert(cost, nodes int, states float64) {
	l.Debug("closed states",
		"cost", cost,
		"nodes", nodes,
		"states", states,
	)
}

// LogCut logs the outcome of a cut check.
func (l *Logger) LogCut(g, h int, found bool, err error) {
	switch {
	case err != nil:
		l.Error("cut check failed",
			"g", g,
			"error", err,
		)
	case found:
		l.Info("cut found",
			"g", g,
			"h", h,
			"cost", g+h,
		)
	}
}

// LogExtract logs a path or operator extraction.
func (l *Logger) LogExtract(kind string, cost, result int, err error) {
	if err != nil {
		l.Error("extraction failed",
			"kind", kind,
			"cost", cost,
			"error", err,
		)
		return
	}
	l.Debug("extraction completed",
		"kind", kind,
		"cost", cost,
		"result", result,
	)
}

// LogHeuristic logs whether a heuristic function was emitted.
func (l *Logger) LogHeuristic(emitted bool, notClosed, buckets, terms int) {
	if !emitted {
		l.Debug("heuristic not inserted",
			"not_closed", notClosed,
			"buckets", buckets,
		)
		return
	}
	l.Info("heuristic built",
		"max_value", notClosed,
		"terms", terms,
	)
}

// LogStep logs one bucket expansion of the driver.
func (l *Logger) LogStep(step, cost, nodes, best int) {
	l.Debug("expanded bucket",
		"step", step,
		"cost", cost,
		"nodes", nodes,
		"best", best,
	)
}

// LogDegraded logs a zero-cost reconstruction step that fell back to a
// best-effort approximation.
func (l *Logger) LogDegraded(cost, steps0 int, reason string) {
	l.Warn("zero-cost reconstruction degraded",
		"cost", cost,
		"steps0", steps0,
		"reason", reason,
	)
}
