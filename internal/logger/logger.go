// Package logger provides levelled logging for the document loader.
// Warnings are always printed; info, debug and trace messages are printed
// once the level is raised with SetLevel or the --verbose and --trace flags.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level controls which messages are printed.
type Level int

// Levels in increasing verbosity.
const (
	LevelWarn Level = iota
	LevelInfo
	LevelDebug
	LevelTrace
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return LevelWarn, fmt.Errorf("unknown log level %q", s)
	}
}

var (
	mu     sync.RWMutex
	level            = LevelWarn
	output io.Writer = os.Stderr
)

// SetLevel sets the most verbose level that is printed.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current level.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetVerbose switches between debug output and warnings only.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose returns true if info messages are printed.
func IsVerbose() bool {
	return Enabled(LevelInfo)
}

// Enabled reports whether messages at l are printed.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l <= level
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, tag, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l <= level {
		fmt.Fprintf(output, "["+tag+"] "+format+"\n", args...)
	}
}

// Trace prints a message at trace level.
func Trace(format string, args ...any) {
	logf(LevelTrace, "TRACE", format, args...)
}

// Debug prints a message at debug level.
func Debug(format string, args ...any) {
	logf(LevelDebug, "DEBUG", format, args...)
}

// Info prints an informational message.
func Info(format string, args ...any) {
	logf(LevelInfo, "INFO", format, args...)
}

// Warn prints a warning. Warnings are always printed.
func Warn(format string, args ...any) {
	logf(LevelWarn, "WARN", format, args...)
}

// Section prints a section header at info level.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if LevelInfo <= level {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
