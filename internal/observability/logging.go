package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
)

// LogContext holds the identifiers attached to every log line emitted
// while a graph runs.
type LogContext struct {
	BuildID string
	Graph   string
	Stage   string
	Task    string
}

type logContextKeyType string

const (
	logContextKey logContextKeyType = "log-context"
	loggerKey     logContextKeyType = "logger"
)

// WithLogger stores the base logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := extractLogContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithGraph adds a graph name to the context.
func WithGraph(ctx context.Context, graph string) context.Context {
	lc := extractLogContext(ctx)
	lc.Graph = graph
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// WithTask adds a task name to the context.
func WithTask(ctx context.Context, task string) context.Context {
	lc := extractLogContext(ctx)
	lc.Task = task
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []any {
	lc := extractLogContext(ctx)
	attrs := make([]any, 0, 4)
	if lc.BuildID != "" {
		attrs = append(attrs, logfields.BuildID(lc.BuildID))
	}
	if lc.Graph != "" {
		attrs = append(attrs, logfields.Graph(lc.Graph))
	}
	if lc.Stage != "" {
		attrs = append(attrs, logfields.Stage(lc.Stage))
	}
	if lc.Task != "" {
		attrs = append(attrs, logfields.Task(lc.Task))
	}
	return attrs
}

// Logger returns the context's base logger (slog.Default when none was
// stored) decorated with the identifiers recorded in ctx.
func Logger(ctx context.Context) *slog.Logger {
	base, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok {
		base = slog.Default()
	}
	attrs := getLogAttrs(ctx)
	if len(attrs) == 0 {
		return base
	}
	return base.With(attrs...)
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}
