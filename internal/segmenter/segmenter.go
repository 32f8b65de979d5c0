// Package segmenter groups the flat line stream of a statement dump into
// one block per operation.
package segmenter

import (
	"fmt"
	"strings"

	"fjacquet/statement-csv/internal/dateutils"
	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/sourcereader"
)

// Strategies
const (
	SentinelOpen  = "sentinel-open"
	SentinelClose = "sentinel-close"
)

// RawBlock is the trimmed, non-ignored lines of one operation in input
// order. Index counts blocks from zero.
type RawBlock struct {
	Index int
	Lines []string
	// Terminated is false in sentinel-close mode for a block flushed at end
	// of input or closed by the date line of the next operation.
	Terminated bool
}

// Config declares how a line stream is segmented.
type Config struct {
	Strategy      string
	Ignore        []string
	Terminators   []string
	DetailsPrefix string
	// DetailsTerminates makes a details line close the block in
	// sentinel-close mode.
	DetailsTerminates bool
}

// IsTerminator reports whether line is one of the known terminator labels.
func (c Config) IsTerminator(line string) bool {
	for _, t := range c.Terminators {
		if line == t {
			return true
		}
	}
	return false
}

// IsDetails reports whether line starts with the details marker.
func (c Config) IsDetails(line string) bool {
	return c.DetailsPrefix != "" && strings.HasPrefix(line, c.DetailsPrefix)
}

func (c Config) closes(line string) bool {
	return c.IsTerminator(line) || (c.DetailsTerminates && c.IsDetails(line))
}

// Segmenter lazily yields RawBlocks from a LineSource. It is single pass.
type Segmenter struct {
	src    sourcereader.LineSource
	cfg    Config
	ignore map[string]bool
	logger logging.Logger

	current  []string
	block    RawBlock
	next     int
	ignored  int
	preamble []string
	done     bool
	err      error
}

// New returns a Segmenter over src.
func New(src sourcereader.LineSource, cfg Config, logger logging.Logger) (*Segmenter, error) {
	if cfg.Strategy != SentinelOpen && cfg.Strategy != SentinelClose {
		return nil, fmt.Errorf("unknown segmentation strategy %q", cfg.Strategy)
	}
	ignore := make(map[string]bool, len(cfg.Ignore)+1)
	ignore[""] = true
	for _, l := range cfg.Ignore {
		ignore[strings.TrimSpace(l)] = true
	}
	return &Segmenter{
		src:    src,
		cfg:    cfg,
		ignore: ignore,
		logger: logging.OrDefault(logger).WithField(logging.FieldStrategy, cfg.Strategy),
	}, nil
}

// Next advances to the next block.
func (s *Segmenter) Next() bool {
	if s.done {
		return false
	}

	for s.src.Next() {
		line := strings.TrimSpace(s.src.Line())
		if s.ignore[line] {
			s.ignored++
			continue
		}

		switch s.cfg.Strategy {
		case SentinelOpen:
			if dateutils.IsEuropeanDate(line) {
				ready := len(s.current) > 0
				if ready {
					s.emit(true)
				}
				s.current = append(s.current, line)
				if ready {
					return true
				}
				continue
			}
			if len(s.current) == 0 {
				s.preamble = append(s.preamble, line)
				s.logger.Debug("Discarding line before first date", logging.F(logging.FieldLine, line))
				continue
			}
			s.current = append(s.current, line)

		case SentinelClose:
			if dateutils.IsEuropeanDate(line) && s.datedBody() {
				s.logger.Warn("Date line without preceding terminator, starting a new block",
					logging.F(logging.FieldBlock, s.next),
					logging.F(logging.FieldLine, line))
				s.emit(false)
				s.current = append(s.current, line)
				return true
			}
			s.current = append(s.current, line)
			if s.cfg.closes(line) {
				s.emit(true)
				return true
			}
		}
	}

	s.done = true
	if err := s.src.Err(); err != nil {
		s.err = fmt.Errorf("reading lines: %w", err)
		return false
	}

	if len(s.current) > 0 {
		terminated := s.cfg.Strategy == SentinelOpen
		if !terminated {
			s.logger.Warn("Flushing trailing block without terminator",
				logging.F(logging.FieldBlock, s.next),
				logging.F(logging.FieldLine, s.current[0]))
		}
		s.emit(terminated)
		return true
	}
	return false
}

// datedBody reports whether the open block already has a date line followed
// by at least one other line. Consecutive date lines stay in one block.
func (s *Segmenter) datedBody() bool {
	n := len(s.current)
	if n == 0 || dateutils.IsEuropeanDate(s.current[n-1]) {
		return false
	}
	for _, l := range s.current {
		if dateutils.IsEuropeanDate(l) {
			return true
		}
	}
	return false
}

func (s *Segmenter) emit(terminated bool) {
	s.block = RawBlock{Index: s.next, Lines: s.current, Terminated: terminated}
	s.next++
	s.current = nil
}

// Block returns the current block.
func (s *Segmenter) Block() RawBlock {
	return s.block
}

// Err returns the error that stopped iteration, if any.
func (s *Segmenter) Err() error {
	return s.err
}

// Ignored returns how many lines matched the ignore set so far.
func (s *Segmenter) Ignored() int {
	return s.ignored
}

// Preamble returns the lines discarded before the first date line in
// sentinel-open mode.
func (s *Segmenter) Preamble() []string {
	return s.preamble
}

// Collect drains the segmenter into a slice.
func (s *Segmenter) Collect() ([]RawBlock, error) {
	var blocks []RawBlock
	for s.Next() {
		blocks = append(blocks, s.Block())
	}
	return blocks, s.Err()
}
