// Package requestctx carries per-request state (logger, trace metadata)
// through context so the fiscal handlers and services never receive loggers
// as parameters.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type scopeKey struct{}

var noop = zap.NewNop()

// TraceInfo identifies the Cloud Trace span a request runs under.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

// scope is the single context value; each With* derives a copy so the logger
// set by one middleware survives the trace set by another.
type scope struct {
	logger   *zap.Logger
	trace    TraceInfo
	hasTrace bool
}

func scopeFrom(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func store(ctx context.Context, s scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithLogger binds the logger to the request scope.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	s := scopeFrom(ctx)
	if logger == nil {
		logger = noop
	}
	s.logger = logger
	return store(ctx, s)
}

// Logger returns the request-scoped logger, or a shared no-op logger when
// none was bound.
func Logger(ctx context.Context) *zap.Logger {
	if s := scopeFrom(ctx); s.logger != nil {
		return s.logger
	}
	return noop
}

// NoopLogger returns the shared no-op instance Logger falls back to, so
// callers can tell "no logger bound" apart from a real one.
func NoopLogger() *zap.Logger { return noop }

// WithTrace binds trace metadata to the request scope.
func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	s := scopeFrom(ctx)
	s.trace = info
	s.hasTrace = true
	return store(ctx, s)
}

// Trace returns the request's trace metadata when a span was started.
func Trace(ctx context.Context) (TraceInfo, bool) {
	s := scopeFrom(ctx)
	return s.trace, s.hasTrace
}

// TraceID returns the request's trace id, or "" outside a traced request.
func TraceID(ctx context.Context) string {
	info, ok := Trace(ctx)
	if !ok {
		return ""
	}
	return info.TraceID
}
