package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEuropean(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "15.03.2024", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{input: "01.01.2000", want: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{input: "31.13.2024", wantErr: true},
		{input: "1.3.2024", wantErr: true},
		{input: "15.03.2024 x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEuropean(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsEuropeanDate(t *testing.T) {
	assert.True(t, IsEuropeanDate("15.03.2024"))
	assert.False(t, IsEuropeanDate("-15,99 PLN"))
	assert.False(t, IsEuropeanDate("2024-03-15"))
}

func TestParseTabular(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{name: "iso", input: "2024-03-15"},
		{name: "compact", input: "20240315"},
		{name: "slashed", input: "2024/03/15"},
		{name: "spreadsheet timestamp", input: "2024-03-15 00:00:00"},
		{name: "iso timestamp", input: "2024-03-15T00:00:00"},
		{name: "padded", input: "  2024-03-15 "},
		{name: "serial day", input: "45366"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTabular(tt.input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := ParseTabular("yesterday")
	assert.Error(t, err)
}

func TestParseWithLayouts_ReportsLayout(t *testing.T) {
	_, layout, err := ParseWithLayouts("20240315", TabularFormats)
	require.NoError(t, err)
	assert.Equal(t, DateLayoutCompact, layout)
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-05", FormatDate(d, ""))
	assert.Equal(t, "20240305", FormatDate(d, DateLayoutCompact))
	assert.Equal(t, "2024-03-05", ToISODate(d))
}

func TestCleanDateString(t *testing.T) {
	assert.Equal(t, "2024-03-15 00:00:00", CleanDateString(" 2024-03-15   00:00:00\t"))
}
