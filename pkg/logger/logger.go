// Package logger is the process logger for modelfix.
// Info and Warn always go out. Debug and Section only appear in verbose
// mode. Output goes to stderr unless Open is given somewhere else.
package logger

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	lg      = log.New(os.Stderr, "", log.LstdFlags)
	closer  io.Closer
)

// Where decides where to send output.
// "" throws everything away, "stdout" and "stderr" are what they
// say, anything else is a file name which we append to.
// The closer is nil unless we opened a file.
func Where(outinfo string) (io.Writer, io.Closer, error) {
	switch outinfo {
	case "":
		return io.Discard, nil, nil
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	}
	fp, err := os.OpenFile(outinfo, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return fp, fp, nil
}

// Open points the logger at outinfo, as interpreted by Where.
// A file opened by an earlier call is closed.
func Open(outinfo string) error {
	w, c, err := Where(outinfo)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		closer.Close()
	}
	closer = c
	lg.SetOutput(w)
	return nil
}

// Close closes a log file opened by Open and goes back to stderr.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	lg.SetOutput(os.Stderr)
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// SetOutput sets the output writer. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	lg.SetOutput(w)
}

// SetFlags passes flags to the underlying log.Logger.
func SetFlags(flag int) {
	mu.Lock()
	defer mu.Unlock()
	lg.SetFlags(flag)
}

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

// Debug logs a message in verbose mode only.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		lg.Printf("[DEBUG] "+format, args...)
	}
}

// Section logs a header line in verbose mode only.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		lg.Printf("=== %s ===", name)
	}
}

// Info logs an informational message.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	lg.Printf("[INFO] "+format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	lg.Printf("[WARN] "+format, args...)
}
