package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/models"
)

// Writer renders records with every value quoted.
type Writer struct {
	opts   Options
	logger logging.Logger
}

// NewWriter creates a Writer. A nil logger uses the default logger.
func NewWriter(opts Options, logger logging.Logger) *Writer {
	if len(opts.Columns) == 0 {
		opts.Columns = FullSchema
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	if opts.DateLayout == "" {
		opts.DateLayout = "2006-01-02"
	}
	return &Writer{opts: opts, logger: logging.OrDefault(logger)}
}

// Options returns the writer's effective options.
func (w *Writer) Options() Options {
	return w.opts
}

// Select applies the unclassified filter and the output order to records.
// The input slice is not modified.
func (w *Writer) Select(records []models.Record) []models.Record {
	out := make([]models.Record, 0, len(records))
	for i := range records {
		if w.opts.UnclassifiedOnly && !records[i].IsUnclassified() {
			continue
		}
		out = append(out, records[i])
	}
	if w.opts.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// Write writes the header and the selected records to dst and returns the
// number of data rows written.
func (w *Writer) Write(dst io.Writer, records []models.Record) (int, error) {
	bw := bufio.NewWriter(dst)

	header := make([]string, len(w.opts.Columns))
	for i, c := range w.opts.Columns {
		header[i] = string(c)
	}
	if err := w.writeRow(bw, header, false); err != nil {
		return 0, fmt.Errorf("error writing header: %w", err)
	}

	selected := w.Select(records)
	row := make([]string, len(w.opts.Columns))
	for n := range selected {
		for i, c := range w.opts.Columns {
			row[i] = value(&selected[n], c, w.opts.DateLayout)
		}
		if err := w.writeRow(bw, row, w.opts.TrailingDelimiter); err != nil {
			return n, fmt.Errorf("error writing record %d: %w", n+1, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return len(selected), fmt.Errorf("error flushing output: %w", err)
	}
	return len(selected), nil
}

func (w *Writer) writeRow(bw *bufio.Writer, fields []string, trailing bool) error {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteRune(w.opts.Delimiter)
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
		sb.WriteByte('"')
	}
	if trailing {
		sb.WriteRune(w.opts.Delimiter)
	}
	sb.WriteByte('\n')
	_, err := bw.WriteString(sb.String())
	return err
}

// WriteFile writes records to path, creating parent directories as needed.
// An empty path or "-" writes to stdout.
func (w *Writer) WriteFile(path string, records []models.Record) (int, error) {
	if path == "" || path == "-" {
		return w.Write(os.Stdout, records)
	}

	w.logger.Info("Writing records to CSV file",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(records)))

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		w.logger.WithError(err).Error("Failed to create directory")
		return 0, fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(path) // #nosec G304 -- output path chosen by the user
	if err != nil {
		w.logger.WithError(err).Error("Failed to create CSV file")
		return 0, fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			w.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	n, err := w.Write(file, records)
	if err != nil {
		w.logger.WithError(err).Error("Failed to write records")
		return n, err
	}

	w.logger.Info("Successfully wrote records to CSV file",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, n))
	return n, nil
}
