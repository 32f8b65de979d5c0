package survey

import (
	"context"
	"strings"
	"testing"

	"fjacquet/statement-csv/internal/format"
	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/rules"
	"fjacquet/statement-csv/internal/sourcereader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSurveyor(t *testing.T, name, ruleText string) *Surveyor {
	t.Helper()
	reg, err := format.NewRegistry()
	require.NoError(t, err)
	desc, err := reg.Get(name)
	require.NoError(t, err)
	table, err := rules.Load(strings.NewReader(ruleText), ',', nil)
	require.NoError(t, err)

	s, err := New(desc, table, 0, logging.NewMockLogger())
	require.NoError(t, err)
	return s
}

func TestLines(t *testing.T) {
	s := newSurveyor(t, "mbank-dump", "BIEDRONKA,Biedronka,jedzenie\n")

	dump := strings.Join([]string{
		"15.03.2024", "SHOP ONE", "-1,00 PLN", "Płatność kartą",
		"Ok?",
		"16.03.2024", "BIEDRONKX 12", "-2,00 PLN", "Płatność kartą",
		"17.03.2024", "SHOP ONE", "-3,00 PLN", "Przelew",
		"18.03.2024", "BIEDRONKA 7", "-4,00 PLN", "Płatność kartą",
	}, "\n")

	report, err := s.Run(context.Background(), strings.NewReader(dump))
	require.NoError(t, err)

	require.NotEmpty(t, report.Payees)
	assert.Equal(t, Count{Text: "SHOP ONE", Count: 2}, report.Payees[0])
	assert.Len(t, report.Payees, 3)

	require.Len(t, report.Terminators, 2)
	assert.Equal(t, Count{Text: "Płatność kartą", Count: 2}, report.Terminators[0])
	assert.Equal(t, Count{Text: "Przelew", Count: 1}, report.Terminators[1])

	require.Len(t, report.Unmatched, 2)
	assert.Equal(t, "SHOP ONE", report.Unmatched[0].Description)
	assert.Equal(t, 2, report.Unmatched[0].Occurrences)
	assert.Empty(t, report.Unmatched[0].Payee)

	near := report.Unmatched[1]
	assert.Equal(t, "BIEDRONKX 12", near.Description)
	assert.Equal(t, "Biedronka", near.Payee)
	assert.Equal(t, "BIEDRONKA", near.Pattern)
	assert.InDelta(t, 8.0/9.0, near.Similarity, 0.001)
}

func TestRows(t *testing.T) {
	s := newSurveyor(t, "mbank-csv", "ZAKUP,Sklep\n")

	src := sourcereader.NewSliceRows(
		[]string{"2024-03-15", "ZAKUP BLIK", "eKONTO", "", "-1,00 PLN"},
		[]string{"2024-03-16", "PRZELEW DO JANA", "eKONTO", "", "-2,00 PLN"},
		[]string{"not a date", "BROKEN", "eKONTO", "", "-2,00 PLN"},
	)
	report, err := s.Rows(context.Background(), src)
	require.NoError(t, err)

	assert.Empty(t, report.Payees)
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, "PRZELEW DO JANA", report.Unmatched[0].Description)
}

func TestNearest(t *testing.T) {
	s := newSurveyor(t, "mbank-dump", "ORLEN,Orlen,paliwo\nLIDL,Lidl\n")

	tests := []struct {
		description string
		payee       string
	}{
		{description: "ORLEM STACJA 12", payee: "Orlen"},
		{description: "lidl sp. z o.o.", payee: "Lidl"},
		{description: "ZUPEŁNIE INNY", payee: ""},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.payee, s.Nearest(tt.description).Payee)
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("BIEDRONKA 12", "BIEDRONKA"))
	assert.Equal(t, 0.0, similarity("X", ""))
	assert.InDelta(t, 0.5, similarity("AB", "ABCD"), 0.001)
}
