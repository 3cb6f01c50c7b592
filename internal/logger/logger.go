// Package logger is the structured logger shared by every genkit component.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level controls how much is logged.
type Level string

const (
	LevelSilent Level = "silent"
	LevelError  Level = "error"
	LevelWarn   Level = "warn"
	LevelInfo   Level = "info"
	LevelDebug  Level = "debug"
)

// Logger logs a message with optional key/value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
}

// Options configures the root logger.
type Options struct {
	Level  Level
	Format string // "text" or "json"
	Output io.Writer
}

type entry struct {
	e *logrus.Entry
}

var (
	mu   sync.RWMutex
	base = newBase(Options{Level: LevelWarn})
)

func newBase(opts Options) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	}

	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	switch opts.Level {
	case LevelSilent:
		l.SetOutput(io.Discard)
	case LevelError:
		l.SetLevel(logrus.ErrorLevel)
	case LevelInfo:
		l.SetLevel(logrus.InfoLevel)
	case LevelDebug:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

// Configure replaces the root logger.
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()
	base = newBase(opts)
}

// ParseLevel maps a config string onto a Level, defaulting to warn.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelSilent:
		return LevelSilent
	case LevelError:
		return LevelError
	case LevelInfo:
		return LevelInfo
	case LevelDebug, "verbose", "trace":
		return LevelDebug
	default:
		return LevelWarn
	}
}

func root() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return entry{e: logrus.NewEntry(base)}
}

func (l entry) with(keysAndValues []interface{}) *logrus.Entry {
	if len(keysAndValues) == 0 {
		return l.e
	}

	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 >= len(keysAndValues) {
			fields[key] = "(missing)"
			break
		}
		fields[key] = keysAndValues[i+1]
	}
	return l.e.WithFields(fields)
}

func (l entry) Debug(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Debug(msg)
}

func (l entry) Info(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Info(msg)
}

func (l entry) Warn(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Warn(msg)
}

func (l entry) Error(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Error(msg)
}

func (l entry) WithField(key string, value interface{}) Logger {
	return entry{e: l.e.WithField(key, value)}
}

func (l entry) WithFields(fields map[string]interface{}) Logger {
	return entry{e: l.e.WithFields(logrus.Fields(fields))}
}

func (l entry) WithError(err error) Logger {
	return entry{e: l.e.WithError(err)}
}

// Debug logs on the root logger.
func Debug(msg string, keysAndValues ...interface{}) { root().Debug(msg, keysAndValues...) }

// Info logs on the root logger.
func Info(msg string, keysAndValues ...interface{}) { root().Info(msg, keysAndValues...) }

// Warn logs on the root logger.
func Warn(msg string, keysAndValues ...interface{}) { root().Warn(msg, keysAndValues...) }

// Error logs on the root logger.
func Error(msg string, keysAndValues ...interface{}) { root().Error(msg, keysAndValues...) }

// WithField returns a root logger carrying one field.
func WithField(key string, value interface{}) Logger { return root().WithField(key, value) }

// WithFields returns a root logger carrying several fields.
func WithFields(fields map[string]interface{}) Logger { return root().WithFields(fields) }

// WithError returns a root logger carrying err.
func WithError(err error) Logger { return root().WithError(err) }
