// Package convert handles conversion of a statement in any registered format
package convert

import (
	"fjacquet/statement-csv/cmd/common"
	"fjacquet/statement-csv/cmd/root"

	"github.com/spf13/cobra"
)

var formatName string

// Cmd represents the convert command
var Cmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a statement using a named format",
	Long: `Convert a statement using any built-in or user-defined format.

Example:
  statement-csv convert --format mbank-csv -i history.csv -o history.skrooge.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		Run(cmd, formatName)
	},
}

func init() {
	Cmd.Flags().StringVarP(&formatName, "format", "f", "", "Format name (see the formats command)")
	_ = Cmd.MarkFlagRequired("format")
}

// Run converts the shared --input file with the named format.
func Run(cmd *cobra.Command, name string) {
	root.Log.Infof("Input file: %s", root.SharedFlags.Input)
	root.Log.Infof("Output file: %s", root.SharedFlags.Output)

	c := root.GetContainer()
	if c == nil {
		root.Log.Fatal("Container not initialized")
	}
	common.ProcessFile(root.Context(cmd), c, name, root.SharedFlags.Input, root.SharedFlags.Output, root.SharedFlags.Unclassified, root.Log)
}

// NewFormatCommand returns a command converting with one fixed format.
func NewFormatCommand(use, short, long, name string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Run: func(cmd *cobra.Command, args []string) {
			Run(cmd, name)
		},
	}
}
