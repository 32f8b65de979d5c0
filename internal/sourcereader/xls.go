package sourcereader

import (
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
)

// XLSRowReader yields the rows of one worksheet of a legacy Excel file.
// Rows with no non-empty cell are skipped.
type XLSRowReader struct {
	rows []RawRow
	pos  int
}

// NewXLSRowReader reads sheet from r, skipping headerRows leading rows.
func NewXLSRowReader(r io.ReadSeeker, sheet, headerRows int) (*XLSRowReader, error) {
	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("error opening XLS file: %w", err)
	}
	if wb == nil {
		return nil, fmt.Errorf("no workbook stream found")
	}
	if wb.NumSheets() <= sheet {
		return nil, fmt.Errorf("sheet %d not found (file has %d)", sheet, wb.NumSheets())
	}
	ws := wb.GetSheet(sheet)
	if ws == nil {
		return nil, fmt.Errorf("could not get sheet %d", sheet)
	}

	reader := &XLSRowReader{pos: -1}
	for i := headerRows; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			continue
		}
		fields := make([]string, 0, row.LastCol())
		empty := true
		for col := 0; col < row.LastCol(); col++ {
			value := strings.TrimSpace(row.Col(col))
			if value != "" {
				empty = false
			}
			fields = append(fields, value)
		}
		if empty {
			continue
		}
		reader.rows = append(reader.rows, RawRow{Index: i, Fields: fields})
	}
	return reader, nil
}

// Next advances to the next row.
func (x *XLSRowReader) Next() bool {
	if x.pos+1 >= len(x.rows) {
		x.pos = len(x.rows)
		return false
	}
	x.pos++
	return true
}

// Row returns the current row.
func (x *XLSRowReader) Row() RawRow { return x.rows[x.pos] }

// Err always returns nil; the workbook is read eagerly.
func (x *XLSRowReader) Err() error { return nil }

// SentinelFound always returns true.
func (x *XLSRowReader) SentinelFound() bool { return true }
