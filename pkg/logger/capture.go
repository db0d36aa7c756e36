package logger

import (
	"bytes"
	"os"
	"sync"
)

// Capture collects the output of an external program for the length of
// one call. Everything written goes to a log file, and each complete
// line is also passed to Debug with a prefix.
// Get one with NewCapture just before starting the program and Close
// it straight after, whatever happened.
type Capture struct {
	mu     sync.Mutex
	fp     *os.File
	path   string
	prefix string
	part   []byte // line not yet terminated
}

// NewCapture creates (truncating) the log file at path.
func NewCapture(path, prefix string) (*Capture, error) {
	fp, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Capture{fp: fp, path: path, prefix: prefix}, nil
}

// Path is the name of the log file.
func (c *Capture) Path() string { return c.path }

// Write implements io.Writer.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.fp.Write(p)
	c.part = append(c.part, p...)
	for {
		i := bytes.IndexByte(c.part, '\n')
		if i == -1 {
			break
		}
		c.emit(c.part[:i])
		c.part = c.part[i+1:]
	}
	return n, err
}

// emit sends one line to the logger. Blank lines are dropped.
func (c *Capture) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	Debug("%s%s", c.prefix, line)
}

// Close flushes any unterminated line and closes the file.
// It is safe to call more than once.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fp == nil {
		return nil
	}
	if len(c.part) > 0 {
		c.emit(c.part)
		c.part = nil
	}
	err := c.fp.Close()
	c.fp = nil
	return err
}
