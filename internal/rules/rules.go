// Package rules loads and compiles the ordered payee rule table.
package rules

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"

	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/models"
	"fjacquet/statement-csv/internal/parsererror"
	"fjacquet/statement-csv/internal/store"
)

// Rule maps descriptions starting with Pattern to a payee and optional
// category, mode and comment.
type Rule struct {
	Row      int
	Pattern  string
	Payee    string
	Category models.Override
	Mode     models.Override
	Comment  models.Override

	re *regexp.Regexp
}

// Matches reports whether text starts with the rule's pattern.
func (r *Rule) Matches(text string) bool {
	return r.re.MatchString(text)
}

// Table is an ordered, compiled rule table. It is never modified after
// construction and may be shared between goroutines.
type Table struct {
	rules []Rule
}

// Compile builds a rule with its anchored pattern.
func Compile(row int, pattern, payee string, category, mode, comment models.Override) (Rule, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return Rule{}, &parsererror.RuleError{Row: row, Pattern: pattern, Err: err}
	}
	return Rule{
		Row:      row,
		Pattern:  pattern,
		Payee:    payee,
		Category: category,
		Mode:     mode,
		Comment:  comment,
		re:       re,
	}, nil
}

// NewTable returns a table holding rules in order.
func NewTable(rules ...Rule) *Table {
	return &Table{rules: append([]Rule(nil), rules...)}
}

// Len returns the number of rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Rules returns a copy of the rules in order.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	return append([]Rule(nil), t.rules...)
}

// Match returns the first rule whose pattern matches text.
func (t *Table) Match(text string) (*Rule, bool) {
	if t == nil {
		return nil, false
	}
	for i := range t.rules {
		if t.rules[i].Matches(text) {
			return &t.rules[i], true
		}
	}
	return nil, false
}

// Load reads a delimited rule table. Rows are [pattern, payee, category?,
// mode?, comment?]. Rows without fields are skipped; an empty optional
// field is treated as absent. Row numbers in errors are 1-based lines.
func Load(r io.Reader, delimiter rune, logger logging.Logger) (*Table, error) {
	logger = logging.OrDefault(logger)

	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := &Table{}
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading rules: %w", err)
		}
		row, _ := reader.FieldPos(0)

		if isEmptyRow(fields) {
			continue
		}
		if fields[0] == "" {
			logger.Warn("Rule with empty pattern matches every description", logging.F(logging.FieldRow, row))
		}

		rule, err := Compile(row, fields[0], field(fields, 1),
			optional(fields, 2), optional(fields, 3), optional(fields, 4))
		if err != nil {
			return nil, err
		}
		table.rules = append(table.rules, rule)
	}

	logger.Debug("Loaded rule table", logging.F(logging.FieldCount, len(table.rules)))
	return table, nil
}

// LoadFile resolves filename through s and loads it.
func LoadFile(s store.Store, filename string, delimiter rune, logger logging.Logger) (*Table, error) {
	rc, path, err := s.Open(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	table, err := Load(rc, delimiter, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.OrDefault(logger).Info("Rules loaded",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, table.Len()))
	return table, nil
}

func isEmptyRow(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func optional(fields []string, i int) models.Override {
	if i < len(fields) {
		return models.OverrideFromField(fields[i])
	}
	return models.Override{}
}
