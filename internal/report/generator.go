// Package report summarizes a converted run: totals per category and per
// payee, rendered as CSV or JSON.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"

	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Report formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Groups
const (
	GroupCategory = "category"
	GroupPayee    = "payee"
)

// Unassigned names the group of records with an empty key.
const Unassigned = "(none)"

// Line is one aggregated group.
type Line struct {
	Group    string `csv:"group" json:"-"`
	Name     string `csv:"name" json:"name"`
	Count    int    `csv:"count" json:"count"`
	Income   string `csv:"income" json:"income"`
	Expenses string `csv:"expenses" json:"expenses"`
	Net      string `csv:"net" json:"net"`
}

// Summary aggregates the records of one or more runs.
type Summary struct {
	Records      int    `json:"records"`
	Unclassified int    `json:"unclassified"`
	Income       string `json:"income"`
	Expenses     string `json:"expenses"`
	Net          string `json:"net"`
	Categories   []Line `json:"categories"`
	Payees       []Line `json:"payees"`
}

type totals struct {
	count    int
	income   decimal.Decimal
	expenses decimal.Decimal
}

func (t *totals) add(rec *models.Record) {
	t.count++
	if rec.Sign == models.SignNegative {
		t.expenses = t.expenses.Add(rec.Amount)
	} else {
		t.income = t.income.Add(rec.Amount)
	}
}

func (t *totals) line(group, name string) Line {
	return Line{
		Group:    group,
		Name:     name,
		Count:    t.count,
		Income:   t.income.StringFixed(2),
		Expenses: t.expenses.StringFixed(2),
		Net:      t.income.Sub(t.expenses).StringFixed(2),
	}
}

// Generator builds and renders summaries.
type Generator struct {
	logger    logging.Logger
	delimiter rune
}

// NewGenerator creates a Generator writing CSV with delimiter.
func NewGenerator(delimiter rune, logger logging.Logger) *Generator {
	if delimiter == 0 {
		delimiter = ';'
	}
	return &Generator{
		logger:    logging.OrDefault(logger).WithField("component", "ReportGenerator"),
		delimiter: delimiter,
	}
}

// Summarize aggregates records. Groups are sorted by absolute net value,
// largest first, then by name.
func (g *Generator) Summarize(records []models.Record) *Summary {
	var all totals
	categories := map[string]*totals{}
	payees := map[string]*totals{}
	unclassified := 0

	for i := range records {
		rec := &records[i]
		all.add(rec)
		if rec.IsUnclassified() {
			unclassified++
		}
		bucket(categories, rec.Category).add(rec)
		bucket(payees, rec.Payee).add(rec)
	}

	s := &Summary{
		Records:      all.count,
		Unclassified: unclassified,
		Income:       all.income.StringFixed(2),
		Expenses:     all.expenses.StringFixed(2),
		Net:          all.income.Sub(all.expenses).StringFixed(2),
		Categories:   lines(GroupCategory, categories),
		Payees:       lines(GroupPayee, payees),
	}
	g.logger.Debug("Summary built",
		logging.F(logging.FieldCount, s.Records),
		logging.F("categories", len(s.Categories)),
		logging.F("payees", len(s.Payees)))
	return s
}

func bucket(m map[string]*totals, key string) *totals {
	if key == "" {
		key = Unassigned
	}
	t, ok := m[key]
	if !ok {
		t = &totals{}
		m[key] = t
	}
	return t
}

func lines(group string, m map[string]*totals) []Line {
	type entry struct {
		name string
		net  decimal.Decimal
		t    *totals
	}
	entries := make([]entry, 0, len(m))
	for name, t := range m {
		entries = append(entries, entry{name: name, net: t.income.Sub(t.expenses).Abs(), t: t})
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].net.Cmp(entries[j].net); c != 0 {
			return c > 0
		}
		return entries[i].name < entries[j].name
	})

	out := make([]Line, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.t.line(group, e.name))
	}
	return out
}

// Generate renders s in the given format (csv or json).
func (g *Generator) Generate(s *Summary, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return g.generateJSON(s)
	case FormatCSV:
		return g.generateCSV(s)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) generateJSON(s *Summary) ([]byte, error) {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return out, nil
}

// generateCSV writes category lines followed by payee lines.
func (g *Generator) generateCSV(s *Summary) ([]byte, error) {
	rows := make([]Line, 0, len(s.Categories)+len(s.Payees))
	rows = append(rows, s.Categories...)
	rows = append(rows, s.Payees...)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = g.delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(w)); err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV report")
		return nil, fmt.Errorf("failed to marshal CSV report: %w", err)
	}
	return buf.Bytes(), nil
}
