// Package survey helps write rules for an unfamiliar statement
package survey

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fjacquet/statement-csv/cmd/root"
	"fjacquet/statement-csv/internal/survey"

	"github.com/spf13/cobra"
)

var (
	formatName string
	threshold  float64
	asJSON     bool
	limit      int
)

// Cmd represents the survey command
var Cmd = &cobra.Command{
	Use:   "survey",
	Short: "Survey a statement to help write rules",
	Long: `Survey a statement and print the distinct lines that follow and precede
date lines (payee and terminator candidates), plus every description no rule
matches together with the closest existing rule.

Example:
  statement-csv survey --format mbank-dump -i dump.txt -r rules.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		if root.SharedFlags.Input == "" {
			root.Log.Fatal("Input file must be specified with --input")
		}
		c := root.GetContainer()
		if c == nil {
			root.Log.Fatal("Container not initialized")
		}
		desc, err := c.Format(formatName)
		if err != nil {
			root.Log.Fatalf("Error surveying file: %v", err)
		}
		s, err := survey.New(desc, c.GetRules(), threshold, root.GetLogrusAdapter())
		if err != nil {
			root.Log.Fatalf("Error surveying file: %v", err)
		}

		f, err := os.Open(root.SharedFlags.Input)
		if err != nil {
			root.Log.Fatalf("Error opening input file: %v", err)
		}
		defer f.Close()

		report, err := s.Run(root.Context(cmd), f)
		if err != nil {
			root.Log.Fatalf("Error surveying file: %v", err)
		}
		if asJSON {
			err = WriteJSON(cmd.OutOrStdout(), report)
		} else {
			err = WriteText(cmd.OutOrStdout(), report, limit)
		}
		if err != nil {
			root.Log.Fatalf("Error writing survey: %v", err)
		}
	},
}

func init() {
	Cmd.Flags().StringVarP(&formatName, "format", "f", "mbank-dump", "Format name (see the formats command)")
	Cmd.Flags().Float64Var(&threshold, "threshold", survey.DefaultThreshold, "Minimum similarity for a rule suggestion")
	Cmd.Flags().BoolVar(&asJSON, "json", false, "Print the survey as JSON")
	Cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many entries per section (0 for all)")
}

// WriteJSON prints the report as indented JSON.
func WriteJSON(w io.Writer, r *survey.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText prints the report as plain sections.
func WriteText(w io.Writer, r *survey.Report, limit int) error {
	sections := []struct {
		title  string
		counts []survey.Count
	}{
		{"Payee candidates", r.Payees},
		{"Terminator candidates", r.Terminators},
	}
	for _, sec := range sections {
		if _, err := fmt.Fprintf(w, "%s (%d):\n", sec.title, len(sec.counts)); err != nil {
			return err
		}
		for i, c := range sec.counts {
			if limit > 0 && i >= limit {
				break
			}
			fmt.Fprintf(w, "  %5d  %s\n", c.Count, c.Text)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Unmatched descriptions (%d):\n", len(r.Unmatched))
	for i, u := range r.Unmatched {
		if limit > 0 && i >= limit {
			break
		}
		if u.Pattern == "" {
			fmt.Fprintf(w, "  %5d  %s\n", u.Occurrences, u.Description)
			continue
		}
		fmt.Fprintf(w, "  %5d  %s  (closest: %s -> %s, %.2f)\n", u.Occurrences, u.Description, u.Pattern, u.Payee, u.Similarity)
	}
	return nil
}
