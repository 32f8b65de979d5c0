// Package extractor turns one raw block or row into a partially populated
// record: date, amount and sign, description and the format's defaults.
package extractor

import (
	"fmt"
	"strings"

	"fjacquet/statement-csv/internal/dateutils"
	"fjacquet/statement-csv/internal/format"
	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/models"
	"fjacquet/statement-csv/internal/parsererror"
	"fjacquet/statement-csv/internal/segmenter"
	"fjacquet/statement-csv/internal/sourcereader"
)

// Extractor applies one format's field grammar.
type Extractor struct {
	desc   *format.Descriptor
	seg    segmenter.Config
	amount *AmountParser
	logger logging.Logger
}

// New returns an Extractor for desc.
func New(desc *format.Descriptor, logger logging.Logger) (*Extractor, error) {
	amount, err := NewAmountParser(desc.Amount.Grammar, desc.Amount.Currency)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", desc.Name, err)
	}
	return &Extractor{
		desc:   desc,
		seg:    desc.Segmenter.SegmenterConfig(),
		amount: amount,
		logger: logging.OrDefault(logger).WithField(logging.FieldFormat, desc.Name),
	}, nil
}

// FromBlock extracts a record from a line block. The first date line is
// used and later date lines are ignored; a second amount line makes the
// block ambiguous. Every other line that is neither a details line nor a
// terminator becomes a rule candidate.
func (e *Extractor) FromBlock(b segmenter.RawBlock) (models.Record, error) {
	rec := e.newRecord()
	rec.Lines = b.Lines

	var haveDate bool
	var amountLine string
	for _, line := range b.Lines {
		switch {
		case dateutils.IsEuropeanDate(line):
			if haveDate {
				continue
			}
			d, err := dateutils.ParseEuropean(line)
			if err != nil {
				return rec, &parsererror.MalformedDateError{Token: line, Record: b.Index}
			}
			rec.Date = d
			haveDate = true

		case e.amount.Match(line):
			if amountLine != "" {
				return rec, &parsererror.AmbiguousBlockError{Block: b.Index, First: amountLine, Second: line}
			}
			v, negative, _ := e.amount.Parse(line)
			rec.SetAmount(v, negative)
			amountLine = line

		case e.amount.LooksLikeAmount(line):
			return rec, &parsererror.MalformedAmountError{Token: line, Record: b.Index}

		case e.seg.IsDetails(line), e.seg.IsTerminator(line):

		default:
			rec.Candidates = append(rec.Candidates, line)
		}
	}

	if !haveDate || amountLine == "" {
		missing := "date"
		if haveDate {
			missing = "amount"
		}
		first := ""
		if len(b.Lines) > 0 {
			first = b.Lines[0]
		}
		return rec, &parsererror.IncompleteBlockError{Block: b.Index, MissingFor: missing, FirstLine: first}
	}

	if i := e.desc.Fields.DescriptionIndex(); i < len(b.Lines) {
		rec.Description = b.Lines[i]
	}
	return rec, nil
}

// FromRow extracts a record from a tabular row.
func (e *Extractor) FromRow(r sourcereader.RawRow) (models.Record, error) {
	rec := e.newRecord()
	rec.Fields = r.Fields

	dateToken := strings.TrimSpace(r.Field(e.desc.Fields.Date))
	d, err := dateutils.ParseTabular(dateToken)
	if err != nil {
		if d, err = dateutils.ParseEuropean(dateToken); err != nil {
			return rec, &parsererror.MalformedDateError{Token: dateToken, Record: r.Index}
		}
	}
	rec.Date = d

	amountToken := r.Field(e.desc.Fields.Amount)
	v, negative, err := e.amount.Parse(amountToken)
	if err != nil {
		e.logger.Debug("Amount token rejected", logging.F(logging.FieldRow, r.Index), logging.F("reason", err.Error()))
		return rec, &parsererror.MalformedAmountError{Token: amountToken, Record: r.Index}
	}
	rec.SetAmount(v, negative)

	rec.Description = strings.TrimSpace(r.Field(e.desc.Fields.Description))
	if rec.Description != "" {
		rec.Candidates = []string{rec.Description}
	}

	if hint := e.desc.Fields.AccountHint; hint != nil {
		rec.Account = e.account(r.Field(*hint))
	}
	return rec, nil
}

func (e *Extractor) account(hint string) string {
	for _, m := range e.desc.Account.Markers {
		if strings.Contains(hint, m.Contains) {
			return m.Account
		}
	}
	return e.desc.Account.Default
}

func (e *Extractor) newRecord() models.Record {
	d := e.desc
	return models.Record{
		Bank:          d.Record.Bank,
		Account:       d.Account.Default,
		AccountNumber: d.Account.Number,
		Unit:          d.Record.Unit,
		Status:        d.Record.Status,
		Tracker:       d.Record.Tracker,
		Bookmarked:    d.Record.Bookmarked,
	}
}
