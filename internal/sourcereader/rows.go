package sourcereader

// RawRow is one tabular record. Index is the zero-based position of the row
// in the source, for error messages.
type RawRow struct {
	Index  int
	Fields []string
}

// Field returns field i, or "" when the row is shorter.
func (r RawRow) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// RowSource is a single-pass stream of rows.
type RowSource interface {
	Next() bool
	Row() RawRow
	Err() error
	// SentinelFound reports whether the data start marker was seen. Sources
	// without a marker always report true.
	SentinelFound() bool
}

// SliceRows is a RowSource over in-memory rows.
type SliceRows struct {
	rows []RawRow
	pos  int
}

// NewSliceRows returns a RowSource over fields, numbering rows from zero.
func NewSliceRows(fields ...[]string) *SliceRows {
	rows := make([]RawRow, len(fields))
	for i, f := range fields {
		rows[i] = RawRow{Index: i, Fields: f}
	}
	return &SliceRows{rows: rows, pos: -1}
}

// Next advances to the next row.
func (s *SliceRows) Next() bool {
	if s.pos+1 >= len(s.rows) {
		s.pos = len(s.rows)
		return false
	}
	s.pos++
	return true
}

// Row returns the current row.
func (s *SliceRows) Row() RawRow { return s.rows[s.pos] }

// Err always returns nil.
func (s *SliceRows) Err() error { return nil }

// SentinelFound always returns true.
func (s *SliceRows) SentinelFound() bool { return true }
