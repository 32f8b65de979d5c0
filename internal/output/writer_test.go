package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/statement-csv/internal/config"
	"fjacquet/statement-csv/internal/format"
	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(day int, amount string, negative bool, payee, mode string) models.Record {
	r := models.Record{
		Date:          time.Date(2016, time.May, day, 0, 0, 0, 0, time.UTC),
		Bank:          "mBank",
		Account:       "eKONTO",
		AccountNumber: "0",
		Mode:          mode,
		Payee:         payee,
		Unit:          "zł",
		Status:        "N",
		Bookmarked:    "N",
	}
	r.SetAmount(decimal.RequireFromString(amount), negative)
	return r
}

func TestParseSchema(t *testing.T) {
	tests := []struct {
		name    string
		preset  string
		columns []string
		want    []Column
		wantErr bool
	}{
		{name: "empty preset is full", want: FullSchema},
		{name: "full", preset: "full", want: FullSchema},
		{name: "legacy", preset: "legacy", want: LegacySchema},
		{name: "explicit columns win", preset: "legacy", columns: []string{"date", " Payee ", "amount"}, want: []Column{ColDate, ColPayee, ColAmount}},
		{name: "description column", columns: []string{"description"}, want: []Column{ColDescription}},
		{name: "unknown preset", preset: "wide", wantErr: true},
		{name: "unknown column", columns: []string{"date", "iban"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSchema(tt.preset, tt.columns)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchemaSizes(t *testing.T) {
	assert.Len(t, FullSchema, 15)
	assert.Len(t, LegacySchema, 11)
}

func TestValue_DateColumn(t *testing.T) {
	rec := &models.Record{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, "2024-03-05", value(rec, ColDate, ""))
	assert.Equal(t, "05.03.2024", value(rec, ColDate, "02.01.2006"))
	assert.Equal(t, "", value(&models.Record{}, ColDate, "02.01.2006"))
}

func TestWrite_FullSchemaQuotesEverything(t *testing.T) {
	w := NewWriter(Options{Columns: FullSchema, Delimiter: ';', DateLayout: "2006-01-02"}, logging.NewMockLogger())

	rec := record(3, "12.5", true, "Biedronka", models.ModeTerminal)
	rec.Category = "jedzenie"

	var buf bytes.Buffer
	n, err := w.Write(&buf, []models.Record{rec})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"date";"bank";"account";"number";"mode";"payee";"comment";"quantity";"unit";"amount";"sign";"category";"status";"tracker";"bookmarked"`, lines[0])
	assert.Equal(t, `"2016-05-03";"mBank";"eKONTO";"0";"terminal";"Biedronka";"";"12.50";"zł";"12.50";"-";"jedzenie";"N";"";"N"`, lines[1])
}

func TestWrite_LegacySchemaWithTrailingDelimiter(t *testing.T) {
	w := NewWriter(Options{
		Columns:           LegacySchema,
		Delimiter:         ';',
		TrailingDelimiter: true,
		DateLayout:        "20060102",
	}, nil)

	var buf bytes.Buffer
	_, err := w.Write(&buf, []models.Record{record(9, "100", false, "Jan Kowalski", models.ModeTransfer)})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"date";"account";"number";"mode";"payee";"comment";"quantity";"unit";"amount";"sign";"category"`, lines[0])
	assert.Equal(t, `"20160509";"eKONTO";"0";"przelew";"Jan Kowalski";"";"100.00";"zł";"100.00";"+";"";`, lines[1])
}

func TestWrite_EscapesQuotes(t *testing.T) {
	w := NewWriter(Options{Columns: []Column{ColPayee}}, nil)

	var buf bytes.Buffer
	_, err := w.Write(&buf, []models.Record{record(1, "1", false, `Sklep "Pod Lipą"`, "")})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"Sklep ""Pod Lipą"""`)
}

func TestWrite_EmptyInputWritesHeaderOnly(t *testing.T) {
	w := NewWriter(Options{Columns: LegacySchema}, nil)

	var buf bytes.Buffer
	n, err := w.Write(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestSelect(t *testing.T) {
	records := []models.Record{
		record(1, "1", false, "A", models.ModeTransfer),
		record(2, "2", false, "", models.ModeTransfer),
		record(3, "3", false, "C", ""),
		record(4, "4", false, "D", models.ModeTerminal),
	}

	t.Run("reverse", func(t *testing.T) {
		w := NewWriter(Options{Reverse: true}, nil)
		got := w.Select(records)
		require.Len(t, got, 4)
		assert.Equal(t, "D", got[0].Payee)
		assert.Equal(t, "A", got[3].Payee)
		assert.Equal(t, "A", records[0].Payee, "input must not be reordered")
	})

	t.Run("input order", func(t *testing.T) {
		w := NewWriter(Options{}, nil)
		got := w.Select(records)
		assert.Equal(t, "A", got[0].Payee)
	})

	t.Run("unclassified only", func(t *testing.T) {
		w := NewWriter(Options{UnclassifiedOnly: true}, nil)
		got := w.Select(records)
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[0].Date.Day())
		assert.Equal(t, 3, got[1].Date.Day())
	})
}

func TestOptionsFromConfig(t *testing.T) {
	desc := &format.Descriptor{Name: "x", Output: format.OutputSpec{Schema: SchemaLegacy}}

	t.Run("format schema used when config has none", func(t *testing.T) {
		opts, err := OptionsFromConfig(config.Default(), desc)
		require.NoError(t, err)
		assert.Equal(t, LegacySchema, opts.Columns)
		assert.Equal(t, ';', opts.Delimiter)
		assert.True(t, opts.Reverse)
		assert.Equal(t, "2006-01-02", opts.DateLayout)
	})

	t.Run("config schema wins", func(t *testing.T) {
		cfg := config.Default()
		cfg.Output.Schema = SchemaFull
		cfg.CSV.Delimiter = ","
		opts, err := OptionsFromConfig(cfg, desc)
		require.NoError(t, err)
		assert.Equal(t, FullSchema, opts.Columns)
		assert.Equal(t, ',', opts.Delimiter)
	})

	t.Run("format reverse flag wins", func(t *testing.T) {
		keep := false
		d := &format.Descriptor{Name: "y", Output: format.OutputSpec{Reverse: &keep}}
		opts, err := OptionsFromConfig(config.Default(), d)
		require.NoError(t, err)
		assert.False(t, opts.Reverse)
	})

	t.Run("bad column", func(t *testing.T) {
		cfg := config.Default()
		cfg.Output.Columns = []string{"nope"}
		_, err := OptionsFromConfig(cfg, desc)
		assert.Error(t, err)
	})
}

func TestWriteFile_CreatesDirectories(t *testing.T) {
	logger := logging.NewMockLogger()
	w := NewWriter(Options{Columns: LegacySchema, Reverse: true}, logger)

	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	n, err := w.WriteFile(path, []models.Record{
		record(1, "1", false, "A", models.ModeTransfer),
		record(2, "2", true, "B", models.ModeTerminal),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], `"B"`)
	assert.Contains(t, lines[2], `"A"`)
	assert.True(t, logger.HasEntry("INFO", "Successfully wrote records to CSV file"))
}
