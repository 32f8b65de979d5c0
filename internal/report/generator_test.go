package report

import (
	"encoding/json"
	"strings"
	"testing"

	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(payee, category, mode, amount string, negative bool) models.Record {
	r := models.Record{Payee: payee, Category: category, Mode: mode}
	r.SetAmount(decimal.RequireFromString(amount), negative)
	return r
}

func sample() []models.Record {
	return []models.Record{
		rec("Biedronka", "jedzenie", "terminal", "15.99", true),
		rec("Biedronka", "jedzenie", "terminal", "4.01", true),
		rec("Pracodawca", "pensja", "przelew", "5000", false),
		rec("", "", "bankomat", "200", true),
	}
}

func TestSummarize(t *testing.T) {
	g := NewGenerator(';', logging.NewMockLogger())
	s := g.Summarize(sample())

	assert.Equal(t, 4, s.Records)
	assert.Equal(t, 1, s.Unclassified)
	assert.Equal(t, "5000.00", s.Income)
	assert.Equal(t, "220.00", s.Expenses)
	assert.Equal(t, "4780.00", s.Net)

	require.Len(t, s.Categories, 3)
	assert.Equal(t, "pensja", s.Categories[0].Name)
	assert.Equal(t, Unassigned, s.Categories[1].Name)
	assert.Equal(t, "-200.00", s.Categories[1].Net)

	food := s.Categories[2]
	assert.Equal(t, "jedzenie", food.Name)
	assert.Equal(t, 2, food.Count)
	assert.Equal(t, "20.00", food.Expenses)
	assert.Equal(t, "0.00", food.Income)
	assert.Equal(t, GroupCategory, food.Group)

	require.Len(t, s.Payees, 3)
	assert.Equal(t, GroupPayee, s.Payees[0].Group)
}

func TestSummarize_Empty(t *testing.T) {
	s := NewGenerator(0, nil).Summarize(nil)
	assert.Equal(t, 0, s.Records)
	assert.Equal(t, "0.00", s.Net)
	assert.Empty(t, s.Categories)
}

func TestGenerate_JSON(t *testing.T) {
	g := NewGenerator(';', nil)
	out, err := g.Generate(g.Summarize(sample()), FormatJSON)
	require.NoError(t, err)

	var decoded Summary
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, 4, decoded.Records)
	assert.Len(t, decoded.Categories, 3)
	assert.Equal(t, "", decoded.Categories[0].Group, "group is not serialized to JSON")
}

func TestGenerate_CSV(t *testing.T) {
	g := NewGenerator(';', nil)
	out, err := g.Generate(g.Summarize(sample()), FormatCSV)
	require.NoError(t, err)

	rows := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, rows, 7)
	assert.Equal(t, "group;name;count;income;expenses;net", rows[0])
	assert.Equal(t, "category;pensja;1;5000.00;0.00;5000.00", rows[1])
	assert.True(t, strings.HasPrefix(rows[4], "payee;"))
}

func TestGenerate_Unsupported(t *testing.T) {
	g := NewGenerator(';', nil)
	_, err := g.Generate(&Summary{}, "xml")
	assert.Error(t, err)
}
