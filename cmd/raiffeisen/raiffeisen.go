// Package raiffeisen handles the Raiffeisen spreadsheet export
package raiffeisen

import "fjacquet/statement-csv/cmd/convert"

// Cmd represents the raiffeisen command
var Cmd = convert.NewFormatCommand(
	"raiffeisen",
	"Convert a Raiffeisen spreadsheet export",
	`Convert a Raiffeisen .xls export. Fee and interest rows are attributed
to the bank.

Example:
  statement-csv raiffeisen -i historia.xls -o raiffeisen.skrooge.csv`,
	"raiffeisen-xls",
)
