// Package input is the trivial external collaborator spec.md §6 and §7
// assign to line reading: it yields a sequence of lines with 1-based line
// numbers, tolerant of ill-formed UTF-8 bytes, leaving whitespace
// normalization to the analyzer core.
package input

import (
	"bufio"
	"io"
)

// Line is one input record: its raw text and its 1-based position in the
// stream.
type Line struct {
	Text   string
	Number int
}

// Reader yields lines from an underlying byte stream. It is a thin
// wrapper around bufio.Scanner; callers drive it with Next in a loop.
type Reader struct {
	scanner *bufio.Scanner
	n       int
}

// NewReader wraps r in a line Reader. The scanner's buffer is grown to
// accommodate lines larger than bufio's default token size, since corpus
// lines (e.g. pre-tokenized sentences) can be long.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	const maxLineBytes = 1 << 20
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{scanner: scanner}
}

// Next advances to the next line, returning false at end-of-input or on a
// read error (callers should check Err after a false return).
func (r *Reader) Next() (Line, bool) {
	if !r.scanner.Scan() {
		return Line{}, false
	}
	r.n++
	return Line{Text: r.scanner.Text(), Number: r.n}, true
}

// Err returns the first non-EOF error encountered by the underlying
// scanner, if any.
func (r *Reader) Err() error {
	return r.scanner.Err()
}
