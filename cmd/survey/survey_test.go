package survey_test

import (
	"bytes"
	"encoding/json"
	"testing"

	surveycmd "fjacquet/statement-csv/cmd/survey"
	"fjacquet/statement-csv/internal/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *survey.Report {
	return &survey.Report{
		Payees:      []survey.Count{{Text: "BIEDRONKA 123", Count: 3}, {Text: "ORLEN", Count: 1}},
		Terminators: []survey.Count{{Text: "Płatność kartą", Count: 4}},
		Unmatched: []survey.Suggestion{
			{Description: "BIEDRONKA 999", Occurrences: 2, Payee: "Biedronka", Pattern: "BIEDRONKA", Similarity: 0.9},
			{Description: "XYZ", Occurrences: 1},
		},
	}
}

func TestSurveyCommand_Metadata(t *testing.T) {
	assert.Equal(t, "survey", surveycmd.Cmd.Use)
	assert.NotNil(t, surveycmd.Cmd.Flags().Lookup("json"))
	assert.Equal(t, "mbank-dump", surveycmd.Cmd.Flags().Lookup("format").DefValue)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, surveycmd.WriteText(&buf, sampleReport(), 0))

	out := buf.String()
	assert.Contains(t, out, "Payee candidates (2):")
	assert.Contains(t, out, "BIEDRONKA 123")
	assert.Contains(t, out, "Terminator candidates (1):")
	assert.Contains(t, out, "(closest: BIEDRONKA -> Biedronka, 0.90)")
	assert.Contains(t, out, "XYZ")
}

func TestWriteText_Limit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, surveycmd.WriteText(&buf, sampleReport(), 1))
	assert.NotContains(t, buf.String(), "ORLEN")
	assert.NotContains(t, buf.String(), "XYZ")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, surveycmd.WriteJSON(&buf, sampleReport()))

	var got survey.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got.Unmatched, 2)
	assert.Equal(t, "Płatność kartą", got.Terminators[0].Text)
}
