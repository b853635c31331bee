// Package log wraps logrus with a context-first calling convention, matching the
// call sites exercised throughout the teacher's internal/zfs and internal/machines
// packages (log.Debug(ctx, ...), log.Warningf(ctx, ...)).
package log

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

type ctxKey int

const fieldsKey ctxKey = 0

// WithField returns a context that attaches field=value to every log call made
// with it, without the caller threading a *logrus.Entry through every signature.
func WithField(ctx context.Context, field string, value interface{}) context.Context {
	fields := fieldsFrom(ctx).WithField(field, value)
	return context.WithValue(ctx, fieldsKey, fields)
}

func fieldsFrom(ctx context.Context) *logrus.Entry {
	if e, ok := ctx.Value(fieldsKey).(*logrus.Entry); ok {
		return e
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// Debug logs args at debug level.
func Debug(ctx context.Context, args ...interface{}) {
	fieldsFrom(ctx).Debug(args...)
}

// Debugf logs a formatted message at debug level.
func Debugf(ctx context.Context, format string, args ...interface{}) {
	fieldsFrom(ctx).Debug(fmt.Sprintf(format, args...))
}

// Info logs args at info level.
func Info(ctx context.Context, args ...interface{}) {
	fieldsFrom(ctx).Info(args...)
}

// Infof logs a formatted message at info level.
func Infof(ctx context.Context, format string, args ...interface{}) {
	fieldsFrom(ctx).Info(fmt.Sprintf(format, args...))
}

// Warning logs args at warn level.
func Warning(ctx context.Context, args ...interface{}) {
	fieldsFrom(ctx).Warning(args...)
}

// Warningf logs a formatted message at warn level.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	fieldsFrom(ctx).Warning(fmt.Sprintf(format, args...))
}

// Error logs args at error level.
func Error(ctx context.Context, args ...interface{}) {
	fieldsFrom(ctx).Error(args...)
}

// Errorf logs a formatted message at error level.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	fieldsFrom(ctx).Error(fmt.Sprintf(format, args...))
}
