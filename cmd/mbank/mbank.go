// Package mbank handles the mBank CSV history export
package mbank

import "fjacquet/statement-csv/cmd/convert"

// Cmd represents the mbank command
var Cmd = convert.NewFormatCommand(
	"mbank",
	"Convert an mBank CSV history export",
	`Convert an mBank CSV history export (cp1250, semicolon separated).

Example:
  statement-csv mbank -i lista_operacji.csv -o mbank.skrooge.csv`,
	"mbank-csv",
)
