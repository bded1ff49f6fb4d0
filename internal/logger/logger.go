// Package logger provides verbose logging for the reportgen CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to follow retrieval, rendering and conversion.
// Errors are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu         sync.RWMutex
	verbose    bool
	timestamps bool
	output     io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetTimestamps prefixes every line with the wall-clock time.
// Long-running modes (mcp serve) enable it.
func SetTimestamps(v bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = v
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(always bool, level, component, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !verbose && !always {
		return
	}
	prefix := "[" + level + "] "
	if timestamps {
		prefix = time.Now().Format("15:04:05.000") + " " + prefix
	}
	if component != "" {
		prefix += component + ": "
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "DEBUG", "", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "INFO", "", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(false, "WARN", "", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	write(true, "ERROR", "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Logger prefixes messages with a component name.
type Logger struct {
	component string
}

// For returns a logger for a component, e.g. logger.For("convertapi").
func For(component string) *Logger {
	return &Logger{component: component}
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	write(false, "DEBUG", l.component, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	write(false, "INFO", l.component, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func (l *Logger) Warn(format string, args ...any) {
	write(false, "WARN", l.component, format, args...)
}

// Error prints an error message regardless of verbose mode.
func (l *Logger) Error(format string, args ...any) {
	write(true, "ERROR", l.component, format, args...)
}
