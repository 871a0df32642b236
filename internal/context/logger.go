package context

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

// Logger provides a leveled-logging interface, satisfied by *logrus.Entry.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

// WithLogger creates a new context with the provided logger.
func WithLogger(ctx Context, logger Logger) Context {
	return WithValue(ctx, loggerKey{}, logger)
}

// GetLogger returns the logger associated with ctx, if any. A stored
// logger is used when it is a *logrus.Entry or a Logger returned by this
// package; any other Logger implementation is ignored and the standard
// logrus logger is returned instead. If one or more keys are provided,
// they are resolved on the context and attached as fields on the returned
// logger.
func GetLogger(ctx Context, keys ...interface{}) Logger {
	return &entry{getLogrusEntry(ctx, keys...)}
}

// GetLoggerWithField returns a logger instance with the specified field,
// without affecting ctx.
func GetLoggerWithField(ctx Context, key, value interface{}) Logger {
	return &entry{getLogrusEntry(ctx).WithField(fmt.Sprint(key), value)}
}

func getLogrusEntry(ctx Context, keys ...interface{}) *logrus.Entry {
	var logger *logrus.Entry

	if v := ctx.Value(loggerKey{}); v != nil {
		if lgr, ok := v.(*logrus.Entry); ok {
			logger = lgr
		} else if lgr, ok := v.(Logger); ok {
			if e, ok := lgr.(*entry); ok {
				logger = e.Entry
			}
		}
	}

	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	fields := logrus.Fields{}
	for _, key := range keys {
		if v := ctx.Value(key); v != nil {
			fields[fmt.Sprint(key)] = v
		}
	}
	return logger.WithFields(fields)
}

type entry struct {
	*logrus.Entry
}

var _ Logger = (*entry)(nil)
