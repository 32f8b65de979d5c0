// Package output renders classified records as the quoted, delimited CSV
// accepted by Skrooge's import.
package output

import (
	"fmt"
	"strings"

	"fjacquet/statement-csv/internal/config"
	"fjacquet/statement-csv/internal/dateutils"
	"fjacquet/statement-csv/internal/format"
	"fjacquet/statement-csv/internal/models"
)

// Column names one output column.
type Column string

// Output columns
const (
	ColDate        Column = "date"
	ColBank        Column = "bank"
	ColAccount     Column = "account"
	ColNumber      Column = "number"
	ColMode        Column = "mode"
	ColPayee       Column = "payee"
	ColComment     Column = "comment"
	ColQuantity    Column = "quantity"
	ColUnit        Column = "unit"
	ColAmount      Column = "amount"
	ColSign        Column = "sign"
	ColCategory    Column = "category"
	ColStatus      Column = "status"
	ColTracker     Column = "tracker"
	ColBookmarked  Column = "bookmarked"
	ColDescription Column = "description"
)

// Schema presets
const (
	SchemaFull   = "full"
	SchemaLegacy = "legacy"
)

// FullSchema is the complete Skrooge import header.
var FullSchema = []Column{
	ColDate, ColBank, ColAccount, ColNumber, ColMode, ColPayee, ColComment,
	ColQuantity, ColUnit, ColAmount, ColSign, ColCategory, ColStatus, ColTracker, ColBookmarked,
}

// LegacySchema is the 11-column header of the older line-dump exports.
var LegacySchema = []Column{
	ColDate, ColAccount, ColNumber, ColMode, ColPayee, ColComment,
	ColQuantity, ColUnit, ColAmount, ColSign, ColCategory,
}

var knownColumns = func() map[Column]bool {
	m := make(map[Column]bool, len(FullSchema)+1)
	for _, c := range FullSchema {
		m[c] = true
	}
	m[ColDescription] = true
	return m
}()

// ParseSchema resolves a preset name or an explicit column list.
// An explicit list wins over the preset; an empty preset means full.
func ParseSchema(preset string, columns []string) ([]Column, error) {
	if len(columns) > 0 {
		out := make([]Column, 0, len(columns))
		for _, name := range columns {
			c := Column(strings.ToLower(strings.TrimSpace(name)))
			if !knownColumns[c] {
				return nil, fmt.Errorf("unknown output column: %q", name)
			}
			out = append(out, c)
		}
		return out, nil
	}

	switch preset {
	case "", SchemaFull:
		return FullSchema, nil
	case SchemaLegacy:
		return LegacySchema, nil
	default:
		return nil, fmt.Errorf("unknown output schema: %q", preset)
	}
}

// Options controls how records are written.
type Options struct {
	Columns           []Column
	Delimiter         rune
	TrailingDelimiter bool
	DateLayout        string
	Reverse           bool
	// UnclassifiedOnly keeps only records missing a mode or a payee.
	UnclassifiedOnly bool
}

// DefaultOptions returns the full schema, ';' separated, newest first.
func DefaultOptions() Options {
	return Options{
		Columns:    FullSchema,
		Delimiter:  ';',
		DateLayout: dateutils.DateLayoutISO,
		Reverse:    true,
	}
}

// OptionsFromConfig merges the run configuration with the format's output
// defaults. Explicit configuration wins over the format's schema, the
// format's reverse flag wins over the configured one.
func OptionsFromConfig(cfg *config.Config, desc *format.Descriptor) (Options, error) {
	opts := DefaultOptions()
	if cfg == nil {
		cfg = config.Default()
	}

	preset := cfg.Output.Schema
	if preset == "" && desc != nil {
		preset = desc.Output.Schema
	}
	cols, err := ParseSchema(preset, cfg.Output.Columns)
	if err != nil {
		return opts, err
	}
	opts.Columns = cols

	if d := []rune(cfg.CSV.Delimiter); len(d) == 1 {
		opts.Delimiter = d[0]
	}
	opts.TrailingDelimiter = cfg.CSV.TrailingDelimiter
	if cfg.Output.DateLayout != "" {
		opts.DateLayout = cfg.Output.DateLayout
	}
	opts.Reverse = cfg.Output.Reverse
	if desc != nil && desc.Output.Reverse != nil {
		opts.Reverse = *desc.Output.Reverse
	}
	return opts, nil
}

// value renders one column of rec.
func value(rec *models.Record, c Column, dateLayout string) string {
	switch c {
	case ColDate:
		if rec.Date.IsZero() {
			return ""
		}
		return dateutils.FormatDate(rec.Date, dateLayout)
	case ColBank:
		return rec.Bank
	case ColAccount:
		return rec.Account
	case ColNumber:
		return rec.AccountNumber
	case ColMode:
		return rec.Mode
	case ColPayee:
		return rec.Payee
	case ColComment:
		return rec.Comment
	case ColQuantity:
		return rec.Quantity.StringFixed(2)
	case ColUnit:
		return rec.Unit
	case ColAmount:
		return rec.Amount.StringFixed(2)
	case ColSign:
		return rec.Sign.String()
	case ColCategory:
		return rec.Category
	case ColStatus:
		return rec.Status
	case ColTracker:
		return rec.Tracker
	case ColBookmarked:
		return rec.Bookmarked
	case ColDescription:
		return rec.Description
	}
	return ""
}
