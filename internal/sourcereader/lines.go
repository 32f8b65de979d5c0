package sourcereader

import (
	"bufio"
	"io"
)

// LineSource is a single-pass stream of text lines.
type LineSource interface {
	Next() bool
	Line() string
	Err() error
}

// LineReader reads decoded lines from an export.
type LineReader struct {
	scanner *bufio.Scanner
}

// NewLineReader returns a LineReader decoding r from charset.
func NewLineReader(r io.Reader, charset string) (*LineReader, error) {
	decoded, err := Decode(r, charset)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &LineReader{scanner: scanner}, nil
}

// Next advances to the next line.
func (l *LineReader) Next() bool {
	return l.scanner.Scan()
}

// Line returns the current line without its line terminator.
func (l *LineReader) Line() string {
	return l.scanner.Text()
}

// Err returns the first read or decode error.
func (l *LineReader) Err() error {
	return l.scanner.Err()
}

// SliceLines is a LineSource over an in-memory slice.
type SliceLines struct {
	lines []string
	pos   int
}

// NewSliceLines returns a LineSource yielding lines in order.
func NewSliceLines(lines []string) *SliceLines {
	return &SliceLines{lines: lines, pos: -1}
}

// Next advances to the next line.
func (s *SliceLines) Next() bool {
	if s.pos+1 >= len(s.lines) {
		s.pos = len(s.lines)
		return false
	}
	s.pos++
	return true
}

// Line returns the current line.
func (s *SliceLines) Line() string {
	return s.lines[s.pos]
}

// Err always returns nil.
func (s *SliceLines) Err() error {
	return nil
}
