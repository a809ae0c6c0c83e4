// Package logger carries a logrus entry through context.Context so that the
// conversion pipeline can attach run-scoped fields (run id, skill name, step)
// once and have every nested call log with them.
package logger

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// G is shorthand for GetLogger.
	G = GetLogger
	// L is the process-wide fallback entry used when the context carries none.
	L = logrus.NewEntry(newLogger())
)

type loggerKey struct{}

// WithLogger returns a copy of ctx carrying entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry.WithContext(ctx))
}

// WithFields derives a logger from the one in ctx with the extra fields and
// stores it back into a new context.
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, G(ctx).WithFields(fields))
}

// GetLogger returns the entry stored in ctx, or L bound to ctx.
func GetLogger(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return L
	}

	entry := ctx.Value(loggerKey{})
	if entry == nil {
		return L.WithContext(ctx)
	}

	return entry.(*logrus.Entry)
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	setLoggerFormat(l, "fmt")
	return l
}

func setLoggerFormat(logger *logrus.Logger, format string) {
	switch format {
	case "json":
		logger.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "logLevel",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	case "text", "fmt":
		fallthrough
	default:
		logger.Formatter = &logrus.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
			FullTimestamp:   true,
		}
	}
}

// Configure applies level and format to the global logger in one call, which
// is what the CLI does from its persistent flags.
func Configure(level, format string) error {
	if err := SetLogLevel(level); err != nil {
		return err
	}
	SetLogFormat(format)
	return nil
}

// SetLogLevel sets the level of the global logger.
func SetLogLevel(level string) error {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	L.Logger.SetLevel(logLevel)
	return nil
}

// SetLogFormat switches the global logger between "json" and text output.
func SetLogFormat(format string) {
	setLoggerFormat(L.Logger, format)
}

// SetLogOutput redirects the global logger.
func SetLogOutput(w io.Writer) {
	L.Logger.SetOutput(w)
}
