// Package formats lists the available statement formats
package formats

import (
	"fmt"
	"io"
	"text/tabwriter"

	"fjacquet/statement-csv/cmd/root"
	"fjacquet/statement-csv/internal/format"

	"github.com/spf13/cobra"
)

// Cmd represents the formats command
var Cmd = &cobra.Command{
	Use:   "formats",
	Short: "List the available statement formats",
	Long: `List the built-in statement formats and those loaded from formats.file.

Example:
  statement-csv formats`,
	Run: func(cmd *cobra.Command, args []string) {
		c := root.GetContainer()
		if c == nil {
			root.Log.Fatal("Container not initialized")
		}
		if err := List(cmd.OutOrStdout(), c.GetRegistry()); err != nil {
			root.Log.Fatalf("Error listing formats: %v", err)
		}
	},
}

// List writes one line per registered format.
func List(w io.Writer, reg *format.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSOURCE\tORIGIN")
	for _, name := range reg.Names() {
		d, err := reg.Get(name)
		if err != nil {
			return err
		}
		origin := "user"
		if reg.IsBuiltin(name) {
			origin = "built-in"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, d.Source.Kind, origin)
	}
	return tw.Flush()
}
