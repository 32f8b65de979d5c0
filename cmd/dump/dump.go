// Package dump handles statements copied from the mBank web view
package dump

import (
	"fjacquet/statement-csv/cmd/convert"

	"github.com/spf13/cobra"
)

var open bool

// Cmd represents the dump command
var Cmd = &cobra.Command{
	Use:   "dump",
	Short: "Convert an mBank statement dump",
	Long: `Convert an mBank statement copied from the web view.

Operations are closed by their type line (Przelew, Płatność kartą, ...).
With --open every date line starts a new operation instead.

Example:
  statement-csv dump -i dump.txt -o dump.skrooge.csv -r rules.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		name := "mbank-dump"
		if open {
			name = "mbank-dump-open"
		}
		convert.Run(cmd, name)
	},
}

func init() {
	Cmd.Flags().BoolVar(&open, "open", false, "Start a new operation at every date line")
}
