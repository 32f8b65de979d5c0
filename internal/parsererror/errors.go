package parsererror

import (
	"errors"
	"fmt"
)

// Sentinel errors for records and blocks that cannot be converted.
var (
	ErrMalformedAmount = errors.New("malformed amount")
	ErrMalformedDate   = errors.New("malformed date")
	ErrIncompleteBlock = errors.New("incomplete block")
	ErrAmbiguousBlock  = errors.New("ambiguous block")
)

// MalformedAmountError is returned when an amount token does not match the
// format's amount grammar.
type MalformedAmountError struct {
	Token  string
	Record int
}

func (e *MalformedAmountError) Error() string {
	return fmt.Sprintf("record %d: malformed amount %q", e.Record, e.Token)
}

func (e *MalformedAmountError) Unwrap() error {
	return ErrMalformedAmount
}

// MalformedDateError is returned when a date token matches no known layout.
type MalformedDateError struct {
	Token  string
	Record int
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("record %d: malformed date %q", e.Record, e.Token)
}

func (e *MalformedDateError) Unwrap() error {
	return ErrMalformedDate
}

// IncompleteBlockError is returned when a line block lacks a date line or an
// amount line.
type IncompleteBlockError struct {
	Block      int
	MissingFor string
	FirstLine  string
}

func (e *IncompleteBlockError) Error() string {
	return fmt.Sprintf("block %d (%q): no %s line", e.Block, e.FirstLine, e.MissingFor)
}

func (e *IncompleteBlockError) Unwrap() error {
	return ErrIncompleteBlock
}

// AmbiguousBlockError is returned when a line block holds two amount lines,
// so it cannot be told which one belongs to the operation.
type AmbiguousBlockError struct {
	Block  int
	First  string
	Second string
}

func (e *AmbiguousBlockError) Error() string {
	return fmt.Sprintf("block %d: second amount line %q after %q", e.Block, e.Second, e.First)
}

func (e *AmbiguousBlockError) Unwrap() error {
	return ErrAmbiguousBlock
}

// RuleError reports a rule table row that could not be compiled.
type RuleError struct {
	Row     int
	Pattern string
	Err     error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule row %d: invalid pattern %q: %v", e.Row, e.Pattern, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an error where the input does not conform
// to the expected format for a specific format descriptor.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// IsRecordError reports whether err affects a single record rather than the
// whole run.
func IsRecordError(err error) bool {
	return errors.Is(err, ErrMalformedAmount) || errors.Is(err, ErrMalformedDate)
}
