// Package logger provides leveled, placeholder-interpolating logging for the
// indexer. Messages carry `{name}` placeholders which are substituted from a
// context map before the line reaches the sink, so sinks (and tests) always
// see fully-rendered strings.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Context holds the values substituted into a message template.
type Context map[string]interface{}

// Logger is the sink the indexer writes to.
type Logger interface {
	Debug(msg string, ctx Context)
	Info(msg string, ctx Context)
	Warning(msg string, ctx Context)
	Error(msg string, ctx Context)
}

// Interpolate renders a message template by replacing each `{name}`
// placeholder with the corresponding context value. Placeholders without a
// context entry are left untouched.
func Interpolate(msg string, ctx Context) string {
	if len(ctx) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(ctx)*2)
	for name, value := range ctx {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Log wraps logrus behind the Logger interface.
type Log struct {
	log *logrus.Logger
}

// New creates a logger writing to output (stderr when nil) at the given level.
// Unknown level strings fall back to info.
func New(level string, output io.Writer) *Log {
	if output == nil {
		output = os.Stderr
	}

	log := logrus.New()
	log.SetOutput(output)

	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:      true,
		DisableTimestamp: true,
		PadLevelText:     true,
	})

	return &Log{log: log}
}

// Debug logs a debug message.
func (l *Log) Debug(msg string, ctx Context) {
	l.log.Debug(Interpolate(msg, ctx))
}

// Info logs an info message.
func (l *Log) Info(msg string, ctx Context) {
	l.log.Info(Interpolate(msg, ctx))
}

// Warning logs a warning message.
func (l *Log) Warning(msg string, ctx Context) {
	l.log.Warn(Interpolate(msg, ctx))
}

// Error logs an error message.
func (l *Log) Error(msg string, ctx Context) {
	l.log.Error(Interpolate(msg, ctx))
}
