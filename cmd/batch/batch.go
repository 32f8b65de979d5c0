// Package batch handles batch processing of files
package batch

import (
	"fmt"
	"os"
	"strings"

	"fjacquet/statement-csv/cmd/root"
	"fjacquet/statement-csv/internal/batch"
	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/validation"

	"github.com/spf13/cobra"
)

var (
	formatName string
	workers    int
	extensions []string
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch process files from a directory",
	Long: `Batch process files from an input directory and output them to another directory.

Every matching file in the input directory is converted with the same format
and written as <name>.skrooge.csv. A failing file is reported and does not
stop the others.

Example:
  statement-csv batch --format mbank-csv --ext csv -i input_dir/ -o output_dir/`,
	Run: batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&formatName, "format", "f", "", "Format name (see the formats command)")
	Cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of files converted concurrently")
	Cmd.Flags().StringSliceVar(&extensions, "ext", nil, "File extensions to process (default: all files)")
	_ = Cmd.MarkFlagRequired("format")

	// Override the usage text for the input/output flags in batch context
	Cmd.SetUsageTemplate(`Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags (for batch, -i/-o refer to directories):
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`)
}

func batchFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Batch command called")

	inputDir := root.SharedFlags.Input
	outputDir := root.SharedFlags.Output

	root.Log.Infof("Input directory: %s", inputDir)
	root.Log.Infof("Output directory: %s", outputDir)

	if inputDir == "" || outputDir == "" {
		root.Log.Fatal("Input and output directories must be specified")
	}
	if err := validation.IsInputDir(inputDir); err != nil {
		root.Log.Fatalf("Invalid input directory: %v", err)
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		root.Log.Fatalf("Failed to create output directory: %v", err)
	}

	appContainer := root.GetContainer()
	if appContainer == nil {
		root.Log.Fatal("Container not initialized")
	}

	p, err := appContainer.Pipeline(formatName)
	if err != nil {
		root.Log.Fatalf("Failed to build pipeline: %v", err)
	}
	w, err := appContainer.Writer(p.Format(), root.SharedFlags.Unclassified)
	if err != nil {
		root.Log.Fatalf("Failed to build writer: %v", err)
	}

	jobs, err := batch.Plan(inputDir, outputDir, extensions)
	if err != nil {
		root.Log.Fatalf("Error during batch conversion: %v", err)
	}
	if len(jobs) == 0 {
		root.Log.Warn("No supported files found in input directory")
		return
	}
	logger := root.GetLogrusAdapter()
	logger.Info("Found files for processing", logging.F(logging.FieldCount, len(jobs)))

	summary, err := batch.NewProcessor(p, w, workers, logger).Run(root.Context(cmd), jobs)
	if err != nil {
		root.Log.Fatalf("Error during batch conversion: %v", err)
	}

	var failed []string
	for _, f := range summary.Files {
		if f.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", f.Input, f.Err))
		}
	}
	if len(failed) > 0 {
		root.Log.Errorf("Failed files:\n  %s", strings.Join(failed, "\n  "))
	}

	root.Log.Info(fmt.Sprintf("Batch processing completed. %d of %d files converted, %d records (%s).",
		summary.Succeeded, len(jobs), summary.Records, summary.DateRange))
}
