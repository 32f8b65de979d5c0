// Package summary prints totals per category and payee
package summary

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/statement-csv/cmd/root"
	"fjacquet/statement-csv/internal/pipeline"
	"fjacquet/statement-csv/internal/report"
	"fjacquet/statement-csv/internal/validation"

	"github.com/spf13/cobra"
)

var (
	formatName   string
	reportFormat string
)

// Cmd represents the summary command
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize a statement by category and payee",
	Long: `Convert a statement and print income, expenses and net totals per
category and per payee instead of the Skrooge CSV.

Example:
  statement-csv summary --format mbank-csv -i history.csv --report-format json`,
	Run: func(cmd *cobra.Command, args []string) {
		if root.SharedFlags.Input == "" {
			root.Log.Fatal("Input file must be specified with --input")
		}
		if err := validation.IsValidReportFormat(reportFormat, report.FormatCSV, report.FormatJSON); err != nil {
			root.Log.Fatal(err)
		}
		c := root.GetContainer()
		if c == nil {
			root.Log.Fatal("Container not initialized")
		}
		p, err := c.Pipeline(formatName)
		if err != nil {
			root.Log.Fatalf("Error summarizing file: %v", err)
		}
		res, err := p.RunFile(root.Context(cmd), root.SharedFlags.Input)
		if err != nil {
			root.Log.Fatalf("Error summarizing file: %v", err)
		}

		delimiter := ';'
		if d := []rune(c.GetConfig().CSV.Delimiter); len(d) == 1 {
			delimiter = d[0]
		}
		gen := report.NewGenerator(delimiter, root.GetLogrusAdapter())
		if err := Write(root.SharedFlags.Output, cmd.OutOrStdout(), gen, res, reportFormat); err != nil {
			root.Log.Fatalf("Error writing summary: %v", err)
		}
	},
}

func init() {
	Cmd.Flags().StringVarP(&formatName, "format", "f", "", "Format name (see the formats command)")
	Cmd.Flags().StringVar(&reportFormat, "report-format", report.FormatCSV, "Report format: csv or json")
	_ = Cmd.MarkFlagRequired("format")
}

// Write renders the summary of res to path, or to stdout when path is empty.
func Write(path string, stdout io.Writer, gen *report.Generator, res *pipeline.Result, format string) error {
	data, err := gen.Generate(gen.Summarize(res.Records), format)
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
