package sourcereader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVRowReader yields the data rows of a delimited export. When a sentinel
// is configured, data starts after the row whose first field equals it and
// ends at the next blank row. A later sentinel row starts a new data section.
// A quoted field may span physical lines; the row index is that of its first
// line.
type CSVRowReader struct {
	scanner   *bufio.Scanner
	delimiter rune
	sentinel  string

	inData        bool
	sentinelFound bool
	lineNo        int
	row           RawRow
	err           error
}

// NewCSVRowReader returns a reader decoding r from charset.
func NewCSVRowReader(r io.Reader, charset string, delimiter rune, sentinel string) (*CSVRowReader, error) {
	decoded, err := Decode(r, charset)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &CSVRowReader{
		scanner:   scanner,
		delimiter: delimiter,
		sentinel:  sentinel,
		inData:    sentinel == "",
	}, nil
}

// Next advances to the next data row.
func (c *CSVRowReader) Next() bool {
	if c.err != nil {
		return false
	}
	for c.scanner.Scan() {
		index := c.lineNo
		c.lineNo++
		line := c.scanner.Text()

		if strings.TrimSpace(line) == "" {
			if c.sentinel != "" {
				c.inData = false
			}
			continue
		}

		for c.unbalanced(line) && c.scanner.Scan() {
			c.lineNo++
			line += "\n" + c.scanner.Text()
		}

		fields, err := c.split(line)
		if err != nil {
			c.err = fmt.Errorf("row %d: %w", index, err)
			return false
		}

		if c.inData {
			c.row = RawRow{Index: index, Fields: fields}
			return true
		}
		if len(fields) > 0 && strings.TrimSpace(fields[0]) == c.sentinel {
			c.inData = true
			c.sentinelFound = true
		}
	}
	c.err = c.scanner.Err()
	return false
}

// unbalanced reports whether line ends inside a quoted field. Only a quote at
// the start of a field opens one, so bare quotes in unquoted fields are data.
func (c *CSVRowReader) unbalanced(line string) bool {
	quoted, fieldStart := false, true
	for i := 0; i < len(line); i++ {
		ch := rune(line[i])
		switch {
		case quoted && ch == '"':
			if i+1 < len(line) && line[i+1] == '"' {
				i++
				continue
			}
			quoted = false
		case !quoted && ch == '"' && fieldStart:
			quoted = true
		}
		fieldStart = !quoted && ch == c.delimiter
	}
	return quoted
}

func (c *CSVRowReader) split(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = c.delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.Read()
}

// Row returns the current row.
func (c *CSVRowReader) Row() RawRow { return c.row }

// Err returns the first read or parse error.
func (c *CSVRowReader) Err() error { return c.err }

// SentinelFound reports whether the sentinel row was seen.
func (c *CSVRowReader) SentinelFound() bool {
	return c.sentinel == "" || c.sentinelFound
}
