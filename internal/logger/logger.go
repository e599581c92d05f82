// Package logger provides verbose logging for cinedex.
// When verbose mode is enabled via --verbose or IMDB_VERBOSE, debug messages
// are printed to stderr to follow the ingest and query pipelines.
// Errors are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
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

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// emit serialises writes so concurrent callers never interleave lines.
func emit(always bool, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if always || verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(false, "[DEBUG] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	emit(false, "\n=== ", "%s ===", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit(false, "[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	emit(false, "[WARN] ", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	emit(true, "[ERROR] ", format, args...)
}

// Progress throttles repetitive Info messages such as per-batch counters.
// The first call always logs; later calls log at most once per interval.
type Progress struct {
	limiter rate.Sometimes
}

// NewProgress creates a progress logger that logs at most once per interval.
func NewProgress(interval time.Duration) *Progress {
	return &Progress{limiter: rate.Sometimes{First: 1, Interval: interval}}
}

// Info logs through the throttle.
func (p *Progress) Info(format string, args ...any) {
	if !IsVerbose() {
		return
	}
	p.limiter.Do(func() {
		Info(format, args...)
	})
}
