package segmenter

import (
	"errors"
	"strings"
	"testing"

	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/sourcereader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mbankTerminators = []string{"Inna operacja", "Nierozliczone", "Operacja gotówkowa", "Przelew", "Płatność kartą"}

func closeConfig() Config {
	return Config{
		Strategy:      SentinelClose,
		Ignore:        []string{"", "Ok?"},
		Terminators:   mbankTerminators,
		DetailsPrefix: "Szczegóły ",
	}
}

func openConfig() Config {
	cfg := closeConfig()
	cfg.Strategy = SentinelOpen
	return cfg
}

func segment(t *testing.T, lines []string, cfg Config, logger logging.Logger) (*Segmenter, []RawBlock) {
	t.Helper()
	s, err := New(sourcereader.NewSliceLines(lines), cfg, logger)
	require.NoError(t, err)
	blocks, err := s.Collect()
	require.NoError(t, err)
	return s, blocks
}

func TestSegmenter_SentinelClose(t *testing.T) {
	lines := []string{
		"  15.03.2024  ",
		"SOME SHOP WARSAW",
		"-15, 99 PLN",
		"Płatność kartą",
		"",
		"Ok?",
		"14.03.2024",
		"JAN KOWALSKI",
		"Szczegóły operacji",
		"1 200,00 PLN",
		"Przelew",
	}

	_, blocks := segment(t, lines, closeConfig(), logging.NewMockLogger())
	require.Len(t, blocks, 2)
	assert.Equal(t, []string{"15.03.2024", "SOME SHOP WARSAW", "-15, 99 PLN", "Płatność kartą"}, blocks[0].Lines)
	assert.True(t, blocks[0].Terminated)
	assert.Equal(t, []string{"14.03.2024", "JAN KOWALSKI", "Szczegóły operacji", "1 200,00 PLN", "Przelew"}, blocks[1].Lines)
	assert.Equal(t, 1, blocks[1].Index)
}

func TestSegmenter_DetailsTerminates(t *testing.T) {
	cfg := closeConfig()
	cfg.DetailsTerminates = true

	_, blocks := segment(t, []string{"14.03.2024", "JAN", "Szczegóły operacji", "1,00 PLN", "Przelew"}, cfg, nil)
	require.Len(t, blocks, 2)
	assert.Equal(t, []string{"14.03.2024", "JAN", "Szczegóły operacji"}, blocks[0].Lines)
}

func TestSegmenter_SentinelOpen(t *testing.T) {
	lines := []string{
		"Historia rachunku",
		"15.03.2024",
		"SHOP",
		"-1,00 PLN",
		"16.03.2024",
		"OTHER",
		"2,00 PLN",
	}

	s, blocks := segment(t, lines, openConfig(), logging.NewMockLogger())
	require.Len(t, blocks, 2)
	assert.Equal(t, []string{"15.03.2024", "SHOP", "-1,00 PLN"}, blocks[0].Lines)
	assert.Equal(t, []string{"16.03.2024", "OTHER", "2,00 PLN"}, blocks[1].Lines)
	assert.True(t, blocks[1].Terminated)
	assert.Equal(t, []string{"Historia rachunku"}, s.Preamble())
}

func TestSegmenter_TrailingBlockIsFlushed(t *testing.T) {
	lines := []string{
		"15.03.2024", "SHOP", "-1,00 PLN", "Płatność kartą",
		"16.03.2024", "UNFINISHED", "-2,00 PLN",
	}

	for _, cfg := range []Config{closeConfig(), openConfig()} {
		t.Run(cfg.Strategy, func(t *testing.T) {
			logger := logging.NewMockLogger()
			_, blocks := segment(t, lines, cfg, logger)
			require.Len(t, blocks, 2)
			assert.Equal(t, []string{"16.03.2024", "UNFINISHED", "-2,00 PLN"}, blocks[1].Lines)

			if cfg.Strategy == SentinelClose {
				assert.False(t, blocks[1].Terminated)
				assert.True(t, logger.HasEntry("WARN", "Flushing trailing block without terminator"))
			} else {
				assert.Empty(t, logger.EntriesByLevel("WARN"))
			}
		})
	}
}

func TestSegmenter_DateLineWithoutTerminator(t *testing.T) {
	logger := logging.NewMockLogger()
	lines := []string{
		"15.03.2024", "SHOP A", "-10,00 PLN",
		"16.03.2024", "SHOP B", "-20,00 PLN", "Przelew",
	}

	_, blocks := segment(t, lines, closeConfig(), logger)
	require.Len(t, blocks, 2)
	assert.Equal(t, []string{"15.03.2024", "SHOP A", "-10,00 PLN"}, blocks[0].Lines)
	assert.False(t, blocks[0].Terminated)
	assert.Equal(t, []string{"16.03.2024", "SHOP B", "-20,00 PLN", "Przelew"}, blocks[1].Lines)
	assert.True(t, blocks[1].Terminated)
	assert.True(t, logger.HasEntry("WARN", "Date line without preceding terminator, starting a new block"))
}

func TestSegmenter_ConsecutiveDateLinesStayTogether(t *testing.T) {
	logger := logging.NewMockLogger()
	lines := []string{"15.03.2024", "16.03.2024", "SHOP", "-1,00 PLN", "Przelew"}

	_, blocks := segment(t, lines, closeConfig(), logger)
	require.Len(t, blocks, 1)
	assert.Equal(t, lines, blocks[0].Lines)
	assert.Empty(t, logger.EntriesByLevel("WARN"))
}

func TestSegmenter_RoundTrip(t *testing.T) {
	input := []string{
		"preamble",
		"15.03.2024", "SHOP", "Ok?", "-1,00 PLN", "Płatność kartą", "",
		"16.03.2024", "  OTHER  ", "Szczegóły x", "2,00 PLN", "Przelew",
		"17.03.2024", "TAIL",
	}

	for _, cfg := range []Config{closeConfig(), openConfig()} {
		t.Run(cfg.Strategy, func(t *testing.T) {
			s, blocks := segment(t, input, cfg, nil)

			var filtered []string
			ignored := 0
			for _, l := range input {
				l = strings.TrimSpace(l)
				if l == "" || l == "Ok?" {
					ignored++
					continue
				}
				filtered = append(filtered, l)
			}

			got := append([]string(nil), s.Preamble()...)
			for _, b := range blocks {
				got = append(got, b.Lines...)
			}
			assert.Equal(t, filtered, got)
			assert.Equal(t, ignored, s.Ignored())
		})
	}
}

func TestSegmenter_Empty(t *testing.T) {
	_, blocks := segment(t, []string{"", "Ok?"}, closeConfig(), nil)
	assert.Empty(t, blocks)
}

type failingLines struct{ sourcereader.SliceLines }

func (f *failingLines) Err() error { return errors.New("disk gone") }

func TestSegmenter_SourceError(t *testing.T) {
	s, err := New(&failingLines{}, closeConfig(), nil)
	require.NoError(t, err)
	assert.False(t, s.Next())
	assert.ErrorContains(t, s.Err(), "disk gone")
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := New(sourcereader.NewSliceLines(nil), Config{Strategy: "middle"}, nil)
	assert.Error(t, err)
}

func TestConfig_Predicates(t *testing.T) {
	cfg := closeConfig()
	assert.True(t, cfg.IsTerminator("Przelew"))
	assert.False(t, cfg.IsTerminator("Przelew na rachunek"))
	assert.True(t, cfg.IsDetails("Szczegóły operacji"))
	assert.False(t, cfg.IsDetails("Szczegóły"))
}
