package logging

import (
	"context"
	"io"
	"maps"
	"os"

	"github.com/sirupsen/logrus"
)

// DefaultLogger is a Logger backed by a logrus entry. Output goes to stderr so
// that stdout stays reserved for the report.
type DefaultLogger struct {
	base  *logrus.Logger
	entry *logrus.Entry
}

// NewDefaultLogger creates a logger writing text records to stderr at InfoLevel
func NewDefaultLogger() *DefaultLogger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(logrus.InfoLevel)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    !isTerminal(),
		QuoteEmptyFields: true,
	})
	return &DefaultLogger{base: base, entry: logrus.NewEntry(base)}
}

// NewDefaultLoggerNoColor creates a default logger that never emits ANSI colors
func NewDefaultLoggerNoColor() *DefaultLogger {
	d := NewDefaultLogger()
	d.base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		QuoteEmptyFields: true,
	})
	return d
}

func isTerminal() bool {
	if fileInfo, _ := os.Stderr.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func toLogrusLevel(level Level) logrus.Level {
	switch level {
	case DebugLevel:
		return logrus.DebugLevel
	case InfoLevel:
		return logrus.InfoLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.FatalLevel
	}
}

func (d *DefaultLogger) with(err error, fields []Fields) *logrus.Entry {
	entry := d.entry
	if len(fields) > 0 {
		merged := make(logrus.Fields)
		for _, f := range fields {
			maps.Copy(merged, logrus.Fields(f))
		}
		entry = entry.WithFields(merged)
	}
	if err != nil {
		entry = entry.WithError(err)
	}
	return entry
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.with(nil, fields).Debug(msg)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.with(nil, fields).Info(msg)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.with(nil, fields).Warn(msg)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.with(err, fields).Error(msg)
}

// Fatal logs and exits with status 1
func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.with(err, fields).Fatal(msg)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	return &DefaultLogger{
		base:  d.base,
		entry: d.entry.WithFields(logrus.Fields(fields)),
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := ctx.Value(fieldsKey{}).(Fields); ok {
		return d.WithFields(fields)
	}
	return d
}

// SetLevel changes the level of the underlying logrus logger, which is shared
// by every logger derived through WithFields.
func (d *DefaultLogger) SetLevel(level Level) {
	d.base.SetLevel(toLogrusLevel(level))
}

func (d *DefaultLogger) SetOutput(w io.Writer) {
	d.base.SetOutput(w)
}

// NoOpLogger discards everything. Tests install it to keep output clean.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
func (n *NoOpLogger) SetOutput(w io.Writer)                         {}
