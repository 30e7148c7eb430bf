// Package logger carries a structured logger through a context.Context
// (logger.Get(ctx).Infof(...)).
package logger

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
)

type ctxKeyType struct{}

var ctxKey ctxKeyType

// Logger is a printf-style facade over logr.Logger. The engine's
// callers never need structured key/value pairs, just leveled,
// formatted lines, so this is the whole surface.
type Logger struct {
	sink logr.Logger
}

// New wraps a logr.Logger as a Logger.
func New(sink logr.Logger) Logger {
	return Logger{sink: sink}
}

// Discard returns a Logger that drops everything, for use in tests
// that don't care about log output.
func Discard() Logger {
	return Logger{sink: logr.Discard()}
}

func (l Logger) Infof(format string, args ...interface{}) {
	l.sink.Info(fmt.Sprintf(format, args...))
}

func (l Logger) Debugf(format string, args ...interface{}) {
	l.sink.V(1).Info(fmt.Sprintf(format, args...))
}

func (l Logger) Warnf(format string, args ...interface{}) {
	l.sink.Info("WARN: " + fmt.Sprintf(format, args...))
}

func (l Logger) Errorf(format string, args ...interface{}) {
	l.sink.Error(nil, fmt.Sprintf(format, args...))
}

// WithLogger stashes a Logger on a context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey, l)
}

// Get retrieves the Logger stashed on ctx, or a discarding Logger if
// none was attached. Never nil, never panics.
func Get(ctx context.Context) Logger {
	l, ok := ctx.Value(ctxKey).(Logger)
	if !ok {
		return Discard()
	}
	return l
}
