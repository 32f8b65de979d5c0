package sourcereader

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func cp1250(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.Windows1250.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func collectLines(t *testing.T, src LineSource) []string {
	t.Helper()
	var out []string
	for src.Next() {
		out = append(out, src.Line())
	}
	require.NoError(t, src.Err())
	return out
}

func collectRows(t *testing.T, src RowSource) []RawRow {
	t.Helper()
	var out []RawRow
	for src.Next() {
		out = append(out, src.Row())
	}
	require.NoError(t, src.Err())
	return out
}

func TestLineReader_Charsets(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		charset string
	}{
		{name: "utf-8", input: []byte("15.03.2024\nPłatność kartą\n"), charset: ""},
		{name: "utf-8 with bom", input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("15.03.2024\nPłatność kartą\n")...), charset: "utf-8"},
		{name: "cp1250 alias", input: cp1250(t, "15.03.2024\r\nPłatność kartą\r\n"), charset: "cp1250"},
		{name: "windows-1250", input: cp1250(t, "15.03.2024\nPłatność kartą"), charset: "windows-1250"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewLineReader(bytes.NewReader(tt.input), tt.charset)
			require.NoError(t, err)
			lines := collectLines(t, r)
			require.Len(t, lines, 2)
			assert.Equal(t, "15.03.2024", strings.TrimSpace(lines[0]))
			assert.Equal(t, "Płatność kartą", strings.TrimSpace(lines[1]))
		})
	}
}

func TestLineReader_UnknownCharset(t *testing.T) {
	_, err := NewLineReader(strings.NewReader(""), "klingon")
	assert.Error(t, err)
}

func TestSliceLines(t *testing.T) {
	src := NewSliceLines([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, collectLines(t, src))
	assert.False(t, src.Next())
}

func TestCSVRowReader_Sentinel(t *testing.T) {
	content := strings.Join([]string{
		"mBank S.A. Bankowość Detaliczna;",
		"#Klient;",
		"Jan Kowalski;",
		"",
		"#Data operacji;#Opis operacji;#Rachunek;#Kategoria;#Kwota;",
		"2024-03-15;ZAKUP PRZY UŻYCIU KARTY W KRAJU  SKLEP;eKONTO 1111;Zakupy;-15,99 PLN;",
		`2024-03-14;"PRZELEW ZEWNĘTRZNY; CZYNSZ";eKONTO 1111;Dom;-1 200,00 PLN;`,
		"",
		"#Saldo końcowe;",
		"10 000,00 PLN;",
	}, "\r\n")

	r, err := NewCSVRowReader(bytes.NewReader(cp1250(t, content)), "windows-1250", ';', "#Data operacji")
	require.NoError(t, err)

	rows := collectRows(t, r)
	require.Len(t, rows, 2)
	assert.True(t, r.SentinelFound())
	assert.Equal(t, 5, rows[0].Index)
	assert.Equal(t, "ZAKUP PRZY UŻYCIU KARTY W KRAJU  SKLEP", rows[0].Field(1))
	assert.Equal(t, "-15,99 PLN", rows[0].Field(4))
	assert.Equal(t, "PRZELEW ZEWNĘTRZNY; CZYNSZ", rows[1].Field(1))
	assert.Equal(t, "", rows[1].Field(42))
}

func TestCSVRowReader_QuotedFieldSpansLines(t *testing.T) {
	content := strings.Join([]string{
		"#Data operacji;#Opis operacji;#Kwota;",
		`2024-03-15;"PRZELEW ZEWNĘTRZNY`,
		`TYTUŁ: CZYNSZ ""MARZEC""";-1 200,00 PLN;`,
		`2024-03-16;SKLEP 5"5;-1,00 PLN;`,
		"",
	}, "\n")

	r, err := NewCSVRowReader(strings.NewReader(content), "", ';', "#Data operacji")
	require.NoError(t, err)

	rows := collectRows(t, r)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, "PRZELEW ZEWNĘTRZNY\nTYTUŁ: CZYNSZ \"MARZEC\"", rows[0].Field(1))
	assert.Equal(t, "-1 200,00 PLN", rows[0].Field(2))
	assert.Equal(t, 3, rows[1].Index)
	assert.Equal(t, `SKLEP 5"5`, rows[1].Field(1))
}

func TestCSVRowReader_UnterminatedQuote(t *testing.T) {
	r, err := NewCSVRowReader(strings.NewReader("a;\"open\nb;c\n"), "", ';', "")
	require.NoError(t, err)

	rows := collectRows(t, r)
	require.Len(t, rows, 1)
	assert.True(t, strings.HasPrefix(rows[0].Field(1), "open\nb;c"))
}

func TestCSVRowReader_MissingSentinel(t *testing.T) {
	r, err := NewCSVRowReader(strings.NewReader("a;b\nc;d\n"), "", ';', "#Data operacji")
	require.NoError(t, err)

	assert.Empty(t, collectRows(t, r))
	assert.False(t, r.SentinelFound())
}

func TestCSVRowReader_NoSentinel(t *testing.T) {
	r, err := NewCSVRowReader(strings.NewReader("a,b\n\nc,d\n"), "", ',', "")
	require.NoError(t, err)

	rows := collectRows(t, r)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"c", "d"}, rows[1].Fields)
	assert.True(t, r.SentinelFound())
}

func TestNewXLSRowReader_NotAWorkbook(t *testing.T) {
	_, err := NewXLSRowReader(bytes.NewReader([]byte("definitely not a workbook")), 0, 1)
	assert.Error(t, err)
}

func TestSliceRows(t *testing.T) {
	src := NewSliceRows([]string{"x"}, []string{"y", "z"})
	rows := collectRows(t, src)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[1].Index)
	assert.True(t, src.SentinelFound())
}
