// Package survey inspects a statement before rules are written for it: which
// lines look like payees, which look like terminators, and which
// descriptions no rule matches yet.
package survey

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"fjacquet/statement-csv/internal/classifier"
	"fjacquet/statement-csv/internal/dateutils"
	"fjacquet/statement-csv/internal/extractor"
	"fjacquet/statement-csv/internal/format"
	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/models"
	"fjacquet/statement-csv/internal/pipeline"
	"fjacquet/statement-csv/internal/rules"
	"fjacquet/statement-csv/internal/segmenter"
	"fjacquet/statement-csv/internal/sourcereader"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the minimum similarity for a rule suggestion.
const DefaultThreshold = 0.5

// Count is a distinct line and how often it occurred.
type Count struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// Suggestion pairs an unmatched description with the closest rule.
type Suggestion struct {
	Description string  `json:"description"`
	Occurrences int     `json:"occurrences"`
	Payee       string  `json:"payee,omitempty"`
	Pattern     string  `json:"pattern,omitempty"`
	Similarity  float64 `json:"similarity"`
}

// Report is the outcome of a survey.
type Report struct {
	// Payees are lines directly following a date line.
	Payees []Count `json:"payees"`
	// Terminators are lines directly preceding a date line.
	Terminators []Count `json:"terminators"`
	// Unmatched are descriptions no rule matches, most frequent first.
	Unmatched []Suggestion `json:"unmatched"`
}

// Surveyor runs surveys for one format and rule table.
type Surveyor struct {
	desc       *format.Descriptor
	table      *rules.Table
	classifier *classifier.Classifier
	extractor  *extractor.Extractor
	threshold  float64
	logger     logging.Logger
}

// New returns a Surveyor. A threshold of zero uses DefaultThreshold.
func New(desc *format.Descriptor, table *rules.Table, threshold float64, logger logging.Logger) (*Surveyor, error) {
	logger = logging.OrDefault(logger)
	cls, err := classifier.New(table, classifier.OptionsFromDescriptor(desc, ""), logger)
	if err != nil {
		return nil, err
	}
	ex, err := extractor.New(desc, logger)
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Surveyor{
		desc:       desc,
		table:      table,
		classifier: cls,
		extractor:  ex,
		threshold:  threshold,
		logger:     logger.WithField(logging.FieldFormat, desc.Name),
	}, nil
}

// Run surveys r.
func (s *Surveyor) Run(ctx context.Context, r io.Reader) (*Report, error) {
	if s.desc.IsLineSource() {
		src, err := sourcereader.NewLineReader(r, s.desc.Source.Charset)
		if err != nil {
			return nil, err
		}
		return s.Lines(ctx, src)
	}

	src, err := pipeline.OpenRows(s.desc, r)
	if err != nil {
		return nil, err
	}
	return s.Rows(ctx, src)
}

// Lines surveys a line dump.
func (s *Surveyor) Lines(ctx context.Context, src sourcereader.LineSource) (*Report, error) {
	cfg := s.desc.Segmenter.SegmenterConfig()
	ignore := map[string]bool{"": true}
	for _, l := range cfg.Ignore {
		ignore[strings.TrimSpace(l)] = true
	}

	var kept []string
	for src.Next() {
		line := strings.TrimSpace(src.Line())
		if !ignore[line] {
			kept = append(kept, line)
		}
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}

	payees := map[string]int{}
	terminators := map[string]int{}
	for i, line := range kept {
		if !dateutils.IsEuropeanDate(line) {
			continue
		}
		if i > 0 && !dateutils.IsEuropeanDate(kept[i-1]) {
			terminators[kept[i-1]]++
		}
		if i+1 < len(kept) && !dateutils.IsEuropeanDate(kept[i+1]) {
			payees[kept[i+1]]++
		}
	}

	seg, err := segmenter.New(sourcereader.NewSliceLines(kept), cfg, s.logger)
	if err != nil {
		return nil, err
	}
	var records []models.Record
	for seg.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.extractor.FromBlock(seg.Block())
		if err != nil {
			s.logger.Debug("Block left out of survey", logging.F(logging.FieldBlock, seg.Block().Index), logging.F("reason", err.Error()))
			continue
		}
		records = append(records, rec)
	}
	if err := seg.Err(); err != nil {
		return nil, err
	}

	return &Report{
		Payees:      sortCounts(payees),
		Terminators: sortCounts(terminators),
		Unmatched:   s.unmatched(records),
	}, nil
}

// Rows surveys a tabular export. Only unmatched descriptions are reported.
func (s *Surveyor) Rows(ctx context.Context, src sourcereader.RowSource) (*Report, error) {
	var records []models.Record
	for src.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.extractor.FromRow(src.Row())
		if err != nil {
			s.logger.Debug("Row left out of survey", logging.F(logging.FieldRow, src.Row().Index), logging.F("reason", err.Error()))
			continue
		}
		records = append(records, rec)
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}
	return &Report{Unmatched: s.unmatched(records)}, nil
}

func (s *Surveyor) unmatched(records []models.Record) []Suggestion {
	seen := map[string]*Suggestion{}
	var order []string
	for i := range records {
		if _, _, ok := s.classifier.MatchRule(&records[i]); ok {
			continue
		}
		desc := s.classifier.StripPrefix(records[i].Description)
		if desc == "" {
			continue
		}
		if sg, ok := seen[desc]; ok {
			sg.Occurrences++
			continue
		}
		sg := s.Nearest(desc)
		sg.Occurrences = 1
		seen[desc] = &sg
		order = append(order, desc)
	}

	out := make([]Suggestion, 0, len(order))
	for _, d := range order {
		out = append(out, *seen[d])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Occurrences > out[j].Occurrences
	})
	s.logger.Info("Survey finished", logging.F("unmatched", len(out)))
	return out
}

// Nearest returns the rule whose pattern or payee is most similar to
// description. Payee and pattern stay empty below the threshold.
func (s *Surveyor) Nearest(description string) Suggestion {
	best := Suggestion{Description: description}
	for _, r := range s.table.Rules() {
		sim := similarity(description, r.Pattern)
		if p := similarity(description, r.Payee); p > sim {
			sim = p
		}
		if sim > best.Similarity {
			best.Similarity = sim
			best.Payee = r.Payee
			best.Pattern = r.Pattern
		}
	}
	if best.Similarity < s.threshold {
		best.Payee = ""
		best.Pattern = ""
	}
	return best
}

// similarity compares the pattern-length prefix of text with target,
// case-insensitively, on a 0..1 scale.
func similarity(text, target string) float64 {
	if target == "" {
		return 0
	}
	a := []rune(strings.ToUpper(text))
	b := []rune(strings.ToUpper(target))
	if len(a) > len(b) {
		a = a[:len(b)]
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return 1 - float64(levenshtein.ComputeDistance(string(a), string(b)))/float64(longest)
}

func sortCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for text, n := range m {
		out = append(out, Count{Text: text, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Text < out[j].Text
	})
	return out
}
