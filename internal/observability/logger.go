// Package observability provides structured logging for the analyzer.
package observability

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

// Logger is a zerolog logger scoped to one analyzer component or request.
type Logger struct {
	zl zerolog.Logger
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level       string
	Format      string // json or console
	Output      io.Writer
	ServiceName string
}

// NewLogger builds the root logger. Unknown levels fall back to info.
func NewLogger(cfg LogConfig) *Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var out io.Writer = os.Stderr
	if cfg.Output != nil {
		out = cfg.Output
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	name := strings.ToLower(cfg.Level)
	switch name {
	case "warning":
		name = "warn"
	case "off":
		name = "disabled"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		level = zerolog.InfoLevel
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}
	return &Logger{zl: ctx.Logger()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) with(fields map[string]string) *Logger {
	ctx := l.zl.With()
	for _, k := range domain.SortedKeys(fields) {
		ctx = ctx.Str(k, fields[k])
	}
	return &Logger{zl: ctx.Logger()}
}

func (l *Logger) Debug() *LogEvent { return &LogEvent{evt: l.zl.Debug()} }
func (l *Logger) Info() *LogEvent  { return &LogEvent{evt: l.zl.Info()} }
func (l *Logger) Warn() *LogEvent  { return &LogEvent{evt: l.zl.Warn()} }
func (l *Logger) Error() *LogEvent { return &LogEvent{evt: l.zl.Error()} }

// WithContext attaches the trace ID carried by ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		return l
	}
	return l.with(map[string]string{"trace_id": traceID})
}

// WithComponent tags log lines with the emitting component (extractor, orchestrator, ...).
func (l *Logger) WithComponent(name string) *Logger {
	return l.with(map[string]string{"component": name})
}

// WithAnalysis tags log lines with the document and mode being analysed.
func (l *Logger) WithAnalysis(source, mode string) *Logger {
	return l.with(map[string]string{"source": source, "mode": mode})
}

// LogEvent is a log line under construction.
type LogEvent struct {
	evt *zerolog.Event
}

func (e *LogEvent) Str(key, val string) *LogEvent {
	e.evt = e.evt.Str(key, val)
	return e
}

func (e *LogEvent) Strs(key string, vals []string) *LogEvent {
	e.evt = e.evt.Strs(key, vals)
	return e
}

func (e *LogEvent) Int(key string, val int) *LogEvent {
	e.evt = e.evt.Int(key, val)
	return e
}

func (e *LogEvent) Float64(key string, val float64) *LogEvent {
	e.evt = e.evt.Float64(key, val)
	return e
}

func (e *LogEvent) Bool(key string, val bool) *LogEvent {
	e.evt = e.evt.Bool(key, val)
	return e
}

func (e *LogEvent) Dur(key string, val time.Duration) *LogEvent {
	e.evt = e.evt.Dur(key, val)
	return e
}

// Err records err and, for analyzer errors, its code under "error_code".
func (e *LogEvent) Err(err error) *LogEvent {
	e.evt = e.evt.Err(err)
	if code := domain.CodeOf(err); code != "" {
		e.evt = e.evt.Str("error_code", string(code))
	}
	return e
}

func (e *LogEvent) Msg(msg string) {
	e.evt.Msg(msg)
}

type traceKey struct{}

// ContextWithTraceID stores the request or run trace ID in ctx.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceIDFromContext returns the trace ID stored in ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(traceKey{}).(string)
	return v
}
