package models

// Classification tags produced by the built-in formats. Rule tables may
// introduce any other mode string.
const (
	ModeTransfer = "przelew"
	ModeTerminal = "terminal"
	ModeATM      = "bankomat"

	CategoryTransfer = "transfer"
)

// Bookkeeping flag defaults for full-schema output.
const (
	StatusNone     = "N"
	BookmarkedNone = "N"
)
