// Package dateutils provides the date layouts understood by statement
// sources and the helpers to parse and format them.
package dateutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date layouts found in bank exports
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutCompact  = "20060102"
	DateLayoutSlashed  = "2006/01/02"
	DateLayoutFull     = "2006-01-02 15:04:05"
	DateLayoutISOTime  = "2006-01-02T15:04:05"
)

// TabularFormats are the ISO-like layouts tabular sources use.
var TabularFormats = []string{
	DateLayoutISO,
	DateLayoutFull,
	DateLayoutISOTime,
	DateLayoutCompact,
	DateLayoutSlashed,
}

// EuropeanDatePattern matches a whole DD.MM.YYYY line.
var EuropeanDatePattern = regexp.MustCompile(`^([0-9]{2})\.([0-9]{2})\.([0-9]{4})$`)

var whitespace = regexp.MustCompile(`\s+`)

// spreadsheet serial day 0
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// IsEuropeanDate reports whether s is exactly a DD.MM.YYYY token.
func IsEuropeanDate(s string) bool {
	return EuropeanDatePattern.MatchString(s)
}

// ParseEuropean parses a DD.MM.YYYY token.
func ParseEuropean(s string) (time.Time, error) {
	if !IsEuropeanDate(s) {
		return time.Time{}, fmt.Errorf("not a DD.MM.YYYY date: %q", s)
	}
	return time.Parse(DateLayoutEuropean, s)
}

// ParseWithLayouts tries each layout in order and returns the first that
// parses, together with the layout used.
func ParseWithLayouts(dateStr string, layouts []string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)

	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, layout, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// ParseTabular parses an ISO-like date cell. Spreadsheet serial day
// numbers are accepted as well.
func ParseTabular(dateStr string) (time.Time, error) {
	t, _, err := ParseWithLayouts(dateStr, TabularFormats)
	if err == nil {
		return t, nil
	}
	if serial, ok := parseSerial(CleanDateString(dateStr)); ok {
		return serial, nil
	}
	return time.Time{}, err
}

func parseSerial(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 || f > 2958465 {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(f)), true
}

// FormatDate formats a time.Time value according to the specified layout
// If no layout is provided, DateLayoutISO is used
func FormatDate(date time.Time, layout string) string {
	if layout == "" {
		layout = DateLayoutISO
	}
	return date.Format(layout)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
