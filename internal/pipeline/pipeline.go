// Package pipeline composes source reader, segmenter, extractor and
// classifier for one format descriptor and applies the error policies.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"fjacquet/statement-csv/internal/classifier"
	"fjacquet/statement-csv/internal/config"
	"fjacquet/statement-csv/internal/extractor"
	"fjacquet/statement-csv/internal/format"
	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/models"
	"fjacquet/statement-csv/internal/parsererror"
	"fjacquet/statement-csv/internal/segmenter"
	"fjacquet/statement-csv/internal/sourcereader"

	"github.com/google/uuid"
)

// Options holds the per-run error policies.
type Options struct {
	OnMalformed  string
	OnIncomplete string
}

// DefaultOptions fails on malformed fields and skips incomplete blocks.
func DefaultOptions() Options {
	return Options{OnMalformed: config.PolicyFail, OnIncomplete: config.PolicySkip}
}

// OptionsFromConfig reads the policies from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	return Options{OnMalformed: cfg.Pipeline.OnMalformed, OnIncomplete: cfg.Pipeline.OnIncomplete}
}

// Result is the outcome of one run.
type Result struct {
	RunID  string
	Format string
	// Records are classified and in input order.
	Records []models.Record
	// Skipped holds the record-level errors tolerated by the policies.
	Skipped []error
	// Preamble holds lines discarded before the first block.
	Preamble []string
	// Ignored counts lines dropped by the ignore set.
	Ignored int
	// SentinelMissing is set when a tabular source never reached its data.
	SentinelMissing bool
}

// Pipeline converts inputs of one format.
type Pipeline struct {
	desc       *format.Descriptor
	extractor  *extractor.Extractor
	classifier *classifier.Classifier
	opts       Options
	logger     logging.Logger
}

// New builds a Pipeline for desc. cls must have been built for the same format.
func New(desc *format.Descriptor, cls *classifier.Classifier, opts Options, logger logging.Logger) (*Pipeline, error) {
	if desc == nil {
		return nil, fmt.Errorf("format descriptor is required")
	}
	if cls == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if opts.OnMalformed == "" {
		opts.OnMalformed = config.PolicyFail
	}
	if opts.OnIncomplete == "" {
		opts.OnIncomplete = config.PolicySkip
	}

	logger = logging.OrDefault(logger)
	ex, err := extractor.New(desc, logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		desc:       desc,
		extractor:  ex,
		classifier: cls,
		opts:       opts,
		logger:     logger.WithField(logging.FieldFormat, desc.Name),
	}, nil
}

// Format returns the descriptor the pipeline was built for.
func (p *Pipeline) Format() *format.Descriptor {
	return p.desc
}

// RunFile opens path and runs the pipeline on it.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Result, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file does not exist: %s", path)
	}
	f, err := os.Open(path) // #nosec G304 -- input path chosen by the user
	if err != nil {
		return nil, fmt.Errorf("error opening input file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			p.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	res, err := p.Run(ctx, f)
	if err != nil {
		var formatErr *parsererror.InvalidFormatError
		if errors.As(err, &formatErr) && formatErr.FilePath == "" {
			formatErr.FilePath = path
		}
		return res, err
	}
	return res, nil
}

// Run reads r with the format's source reader and returns the classified
// records. A fatal record error aborts the run; the partial result is
// returned alongside the error.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*Result, error) {
	if p.desc.IsLineSource() {
		src, err := sourcereader.NewLineReader(r, p.desc.Source.Charset)
		if err != nil {
			return nil, err
		}
		return p.RunLines(ctx, src)
	}

	src, err := OpenRows(p.desc, r)
	if err != nil {
		return nil, err
	}
	return p.RunRows(ctx, src)
}

// OpenRows returns the row source of a tabular format.
func OpenRows(desc *format.Descriptor, r io.Reader) (sourcereader.RowSource, error) {
	switch desc.Source.Kind {
	case format.SourceCSV:
		src, err := sourcereader.NewCSVRowReader(r, desc.Source.Charset, []rune(desc.Source.Delimiter)[0], desc.Source.Sentinel)
		if err != nil {
			return nil, err
		}
		return src, nil

	case format.SourceXLS:
		rs, ok := r.(io.ReadSeeker)
		if !ok {
			data, err := io.ReadAll(r)
			if err != nil {
				return nil, fmt.Errorf("error reading spreadsheet: %w", err)
			}
			rs = bytes.NewReader(data)
		}
		src, err := sourcereader.NewXLSRowReader(rs, desc.Source.Sheet, desc.Source.HeaderRows)
		if err != nil {
			return nil, &parsererror.InvalidFormatError{ExpectedFormat: desc.Name, Msg: err.Error()}
		}
		return src, nil
	}
	return nil, fmt.Errorf("format %s: unsupported source kind %q", desc.Name, desc.Source.Kind)
}

// RunLines segments src into blocks and converts each block.
func (p *Pipeline) RunLines(ctx context.Context, src sourcereader.LineSource) (*Result, error) {
	res, log := p.start()

	seg, err := segmenter.New(src, p.desc.Segmenter.SegmenterConfig(), log)
	if err != nil {
		return res, err
	}

	for seg.Next() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		block := seg.Block()
		rec, err := p.extractor.FromBlock(block)
		if err != nil {
			if err := p.tolerate(res, log, err); err != nil {
				return res, err
			}
			continue
		}
		res.Records = append(res.Records, p.classifier.Classify(ctx, rec))
	}
	res.Preamble = seg.Preamble()
	res.Ignored = seg.Ignored()
	if err := seg.Err(); err != nil {
		return res, err
	}

	if len(res.Preamble) > 0 {
		log.Debug("Discarded lines before first block", logging.F(logging.FieldCount, len(res.Preamble)))
	}
	p.finish(res, log)
	return res, nil
}

// RunRows converts every data row of src.
func (p *Pipeline) RunRows(ctx context.Context, src sourcereader.RowSource) (*Result, error) {
	res, log := p.start()

	for src.Next() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := p.extractor.FromRow(src.Row())
		if err != nil {
			if err := p.tolerate(res, log, err); err != nil {
				return res, err
			}
			continue
		}
		res.Records = append(res.Records, p.classifier.Classify(ctx, rec))
	}
	if err := src.Err(); err != nil {
		return res, fmt.Errorf("error reading rows: %w", err)
	}

	if !src.SentinelFound() {
		res.SentinelMissing = true
		log.Warn("Sentinel header not found, no records extracted",
			logging.F("sentinel", p.desc.Source.Sentinel))
	}
	p.finish(res, log)
	return res, nil
}

func (p *Pipeline) start() (*Result, logging.Logger) {
	res := &Result{RunID: uuid.New().String(), Format: p.desc.Name}
	log := p.logger.WithField(logging.FieldRunID, res.RunID)
	log.Debug("Starting conversion")
	return res, log
}

func (p *Pipeline) finish(res *Result, log logging.Logger) {
	log.Info("Conversion finished",
		logging.F(logging.FieldCount, len(res.Records)),
		logging.F(logging.FieldSkipped, len(res.Skipped)))
}

// tolerate applies the error policies. It returns err when the run must stop.
func (p *Pipeline) tolerate(res *Result, log logging.Logger, err error) error {
	switch {
	case errors.Is(err, parsererror.ErrIncompleteBlock):
		if p.opts.OnIncomplete == config.PolicyFail {
			return err
		}
		log.WithError(err).Warn("Skipping incomplete block")

	case errors.Is(err, parsererror.ErrAmbiguousBlock):
		if p.opts.OnIncomplete == config.PolicyFail {
			return err
		}
		log.WithError(err).Warn("Skipping ambiguous block")

	case parsererror.IsRecordError(err):
		if p.opts.OnMalformed == config.PolicyFail {
			return err
		}
		log.WithError(err).Error("Skipping malformed record")

	default:
		return err
	}
	res.Skipped = append(res.Skipped, err)
	return nil
}
