package util

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

type LogLevel int32

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]LogLevel{
	"trace": LevelTrace,
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// Logger wraps the standard library logger with level filtering and an
// optional component name. Children created with Named share the level.
type Logger struct {
	level *atomic.Int32
	base  *log.Logger
	name  string
}

// NewLogger creates a level-aware logger writing to stderr.
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a level-aware logger writing to the provided destination.
func NewLoggerWithWriter(level LogLevel, w io.Writer) *Logger {
	l := &Logger{
		level: new(atomic.Int32),
		base:  log.New(w, "", log.LstdFlags|log.Lmsgprefix),
	}
	l.level.Store(int32(level))
	return l
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLoggerWithWriter(LevelError+1, io.Discard)
}

// Named returns a child logger tagging each line with the component name.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	child := &Logger{level: l.level, base: l.base, name: name}
	if l.name != "" {
		child.name = l.name + "." + name
	}
	return child
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

func (l *Logger) Level() LogLevel {
	return LogLevel(l.level.Load())
}

func (l *Logger) logf(level LogLevel, prefix string, format string, args ...interface{}) {
	if l == nil || level < LogLevel(l.level.Load()) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.name != "" {
		l.base.Printf("[%s] %s: %s", strings.ToUpper(prefix), l.name, msg)
		return
	}
	l.base.Printf("[%s] %s", strings.ToUpper(prefix), msg)
}

func (l *Logger) Tracef(format string, args ...interface{}) {
	l.logf(LevelTrace, "trace", format, args...)
}
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, "debug", format, args...)
}
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, "info", format, args...)
}
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarn, "warn", format, args...)
}
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, "error", format, args...)
}

// ParseLogLevel converts a string into a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl
	}
	return LevelInfo
}

// ValidLogLevel reports whether s names a known level.
func ValidLogLevel(s string) bool {
	_, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	return ok
}
