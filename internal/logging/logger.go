// Package logging provides the component-tagged leveled logger shared by the
// CLI and the HTTP host.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/fredcamaral/patterndeck/internal/domain/entities"
)

// Logger writes leveled, component-tagged messages
type Logger struct {
	component string
	verbose   bool
	entry     *logrus.Entry
}

// New creates a logger for a component using the logging configuration
func New(component string, cfg entities.LoggingConfig) *Logger {
	return NewWithWriter(component, cfg, os.Stderr)
}

// NewWithWriter creates a logger that writes to w
func NewWithWriter(component string, cfg entities.LoggingConfig, w io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(toLogrusLevel(cfg.GetLevel()))
	if cfg.JSONFormat {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return &Logger{
		component: component,
		verbose:   cfg.Verbose,
		entry:     base.WithField("component", component),
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewWithWriter("discard", entities.LoggingConfig{Level: string(entities.LogLevelError)}, io.Discard)
}

// With returns a logger for a sub-component sharing the same output
func (l *Logger) With(component string) *Logger {
	return &Logger{
		component: component,
		verbose:   l.verbose,
		entry:     l.entry.WithField("component", component),
	}
}

// WithField returns a logger carrying an extra structured field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		component: l.component,
		verbose:   l.verbose,
		entry:     l.entry.WithField(key, value),
	}
}

// Component returns the component name
func (l *Logger) Component() string {
	return l.component
}

// Debug logs debug messages
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}

// Info logs informational messages
func (l *Logger) Info(msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.entry.Warnf(msg, args...)
}

// Error logs error messages
func (l *Logger) Error(msg string, args ...interface{}) {
	l.entry.Errorf(msg, args...)
}

// Success logs success messages, only in verbose mode
func (l *Logger) Success(msg string, args ...interface{}) {
	if l.verbose {
		l.entry.WithField("status", "success").Infof(msg, args...)
	}
}

func toLogrusLevel(level entities.LogLevel) logrus.Level {
	switch level {
	case entities.LogLevelDebug:
		return logrus.DebugLevel
	case entities.LogLevelWarn:
		return logrus.WarnLevel
	case entities.LogLevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
