// Package brokenio wraps an io.Reader so that it breaks in a way we
// choose. It is for testing readers of structure and sequence files.
//
// Typical use: You have a reader from a file or a strings.Reader. You
// write
//
//	rdr = brokenio.NewReader(rdr, 100)
//
// and everything works as before for the first 100 bytes. Then Read
// returns the error set with SetErr (ErrBroken by default).
// If the error is set to nil, the data just stops, as if the file had
// been cut short.
package brokenio

import (
	"errors"
	"io"
)

// ErrBroken is the default error from a broken reader.
var ErrBroken = errors.New("brokenio: artificial read failure")

// Reader passes through a fixed number of bytes and then fails.
type Reader struct {
	rdr     io.Reader
	left    int   // bytes still to pass through
	err     error // what to return once left reaches zero
	nCalled int
	nByte   int
}

// NewReader returns a reader that fails after n bytes from rIn.
// With n == 0, the very first call fails. With a nil error that looks
// like a zero length file.
func NewReader(rIn io.Reader, n int) *Reader {
	return &Reader{rdr: rIn, left: n, err: ErrBroken}
}

// SetErr sets the error returned when the reader breaks. nil means
// io.EOF, a truncated file.
func (r *Reader) SetErr(err error) { r.err = err }

// NCalled is the number of calls to Read so far.
func (r *Reader) NCalled() int { return r.nCalled }

// NByte is the number of bytes passed through so far.
func (r *Reader) NByte() int { return r.nByte }

// Read wraps the original reader, never handing out more than the bytes
// left before the break.
func (r *Reader) Read(p []byte) (int, error) {
	r.nCalled++
	if len(p) == 0 {
		return 0, nil
	}
	if r.left <= 0 {
		if r.err == nil {
			return 0, io.EOF
		}
		return 0, r.err
	}
	if len(p) > r.left {
		p = p[:r.left]
	}
	n, err := r.rdr.Read(p)
	r.left -= n
	r.nByte += n
	return n, err
}
