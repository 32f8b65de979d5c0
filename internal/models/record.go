// Package models holds the canonical record produced by the conversion
// pipeline and the small value types shared between components.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is the canonical, bank-agnostic representation of one operation.
// Amount and Quantity hold the absolute value; Sign carries the direction.
type Record struct {
	Date          time.Time
	Bank          string
	Account       string
	AccountNumber string
	Mode          string
	Payee         string
	Comment       string
	Category      string
	Quantity      decimal.Decimal
	Unit          string
	Amount        decimal.Decimal
	Sign          Sign
	Status        string
	Tracker       string
	Bookmarked    string

	// Description is the text rules are matched against.
	Description string
	// Lines holds the raw block a line-oriented record was extracted from.
	Lines []string
	// Fields holds the raw row a tabular record was extracted from.
	Fields []string
	// Candidates are the texts rules are tried against, in order.
	Candidates []string
}

// SignedAmount returns the amount with its sign applied.
func (r *Record) SignedAmount() decimal.Decimal {
	if r.Sign == SignNegative {
		return r.Amount.Neg()
	}
	return r.Amount
}

// SetAmount stores the absolute value of amount rounded to two decimals and
// derives the sign from negative. The sign is passed explicitly because a
// value such as -0,50 parses to a magnitude whose integer part is zero.
func (r *Record) SetAmount(amount decimal.Decimal, negative bool) {
	abs := amount.Abs().Round(2)
	r.Amount = abs
	r.Quantity = abs
	if negative {
		r.Sign = SignNegative
	} else {
		r.Sign = SignPositive
	}
}

// IsUnclassified reports whether mode or payee is still empty.
func (r *Record) IsUnclassified() bool {
	return strings.TrimSpace(r.Mode) == "" || strings.TrimSpace(r.Payee) == ""
}
