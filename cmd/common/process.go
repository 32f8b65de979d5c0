// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/statement-csv/internal/format"
	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/output"
	"fjacquet/statement-csv/internal/pipeline"
	"fjacquet/statement-csv/internal/validation"

	"github.com/sirupsen/logrus"
)

// ErrNoInput is returned when no input file was given.
var ErrNoInput = errors.New("input file must be specified with --input")

// Converter builds the per-format collaborators of a conversion.
type Converter interface {
	Pipeline(name string) (*pipeline.Pipeline, error)
	Writer(desc *format.Descriptor, unclassifiedOnly bool) (*output.Writer, error)
}

// ProcessFileWithError converts inputFile with the named format and writes
// the result to outputFile (stdout when empty).
func ProcessFileWithError(ctx context.Context, c Converter, formatName, inputFile, outputFile string, unclassified bool, log logging.Logger) (*pipeline.Result, error) {
	if inputFile == "" {
		return nil, ErrNoInput
	}
	log = logging.OrDefault(log)

	p, err := c.Pipeline(formatName)
	if err != nil {
		return nil, err
	}
	w, err := c.Writer(p.Format(), unclassified)
	if err != nil {
		return nil, err
	}

	if err := validation.IsInputFile(inputFile); err != nil {
		return nil, err
	}

	log.Info("Converting file",
		logging.F(logging.FieldInputFile, inputFile),
		logging.F(logging.FieldOutputFile, outputFile),
		logging.F(logging.FieldFormat, formatName))

	res, err := p.RunFile(ctx, inputFile)
	if err != nil {
		return res, fmt.Errorf("error converting %s: %w", inputFile, err)
	}

	written, err := w.WriteFile(outputFile, res.Records)
	if err != nil {
		return res, err
	}

	log.Info("Conversion completed",
		logging.F(logging.FieldRunID, res.RunID),
		logging.F(logging.FieldCount, written),
		logging.F(logging.FieldSkipped, len(res.Skipped)))
	return res, nil
}

// ProcessFile converts a single file and exits on failure.
func ProcessFile(ctx context.Context, c Converter, formatName, inputFile, outputFile string, unclassified bool, log *logrus.Logger) {
	adapter := logging.NewLogrusAdapterFromLogger(log)
	if _, err := ProcessFileWithError(ctx, c, formatName, inputFile, outputFile, unclassified, adapter); err != nil {
		log.Fatalf("Error converting to CSV: %v", err)
	}
}
