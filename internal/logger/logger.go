package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelSuccess
	LevelError
)

var levelNames = map[LogLevel]string{
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelWarn:    "WARN",
	LevelSuccess: "SUCCESS",
	LevelError:   "ERROR",
}

var levelColors = map[LogLevel]*color.Color{
	LevelDebug:   color.New(color.FgCyan),
	LevelInfo:    color.New(color.FgGreen),
	LevelWarn:    color.New(color.FgYellow),
	LevelSuccess: color.New(color.FgGreen, color.Bold),
	LevelError:   color.New(color.FgRed, color.Bold),
}

var levelEmojis = map[LogLevel]string{
	LevelDebug:   "🐛",
	LevelInfo:    "ℹ️",
	LevelWarn:    "⚠️",
	LevelSuccess: "✅",
	LevelError:   "❌",
}

// output settings shared by every package logger
var (
	mu         sync.Mutex
	out        io.Writer = os.Stdout
	minLevel             = LevelInfo
	timestamps bool
)

// Logger writes leveled lines tagged with the package it belongs to.
type Logger struct {
	pkg     string
	display string
}

// PackageLogger creates a logger with package-specific settings
func PackageLogger(pkgName string, displayName string) *Logger {
	return &Logger{pkg: pkgName, display: displayName}
}

// SetLevel sets the minimum log level for all package loggers
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// SetOutput sets the output destination for all package loggers
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// EnableTimestamp prefixes every line with the local time.
func EnableTimestamp(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = enable
}

// ParseLevel maps a level name from configuration to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// Log logs a message at a specific level
func (l *Logger) Log(level LogLevel, msg string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level < minLevel {
		return
	}

	var line strings.Builder
	if timestamps {
		line.WriteString(time.Now().Format("15:04:05 "))
	}
	line.WriteString(levelColors[level].Sprint(levelNames[level]))
	line.WriteString(" ")
	line.WriteString(levelEmojis[level])
	line.WriteString(" ")
	if l.display != "" {
		line.WriteString(l.display)
		line.WriteString(" ")
	}
	line.WriteString(fmt.Sprintf(msg, args...))

	// caller info is only useful when chasing a bug
	if minLevel == LevelDebug {
		if _, file, lineNo, ok := runtime.Caller(2); ok {
			parts := strings.Split(file, "/")
			if len(parts) > 2 {
				file = strings.Join(parts[len(parts)-2:], "/")
			}
			line.WriteString(color.HiBlackString(" (%s:%d)", file, lineNo))
		}
	}

	fmt.Fprintln(out, line.String())
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.Log(LevelDebug, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.Log(LevelInfo, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.Log(LevelWarn, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.Log(LevelError, msg, args...)
}

// Success logs a success message
func (l *Logger) Success(msg string, args ...interface{}) {
	l.Log(LevelSuccess, msg, args...)
}

// Timed logs the duration of a function execution
func (l *Logger) Timed(label string, fn func() error) error {
	start := time.Now()
	l.Debug("⏳ Starting %s...", label)
	err := fn()
	l.Debug("Finished %s in %v", label, time.Since(start).Round(time.Millisecond))
	return err
}
