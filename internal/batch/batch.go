// Package batch converts every statement of one format found in a directory.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/models"
	"fjacquet/statement-csv/internal/output"
	"fjacquet/statement-csv/internal/pipeline"
)

// OutputSuffix replaces the input extension in output file names.
const OutputSuffix = ".skrooge.csv"

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s", dr.Start.Format("2006-01-02"), dr.End.Format("2006-01-02"))
}

// Merge combines this date range with another, returning the overall range
func (dr DateRange) Merge(other DateRange) DateRange {
	start, end := dr.Start, dr.End
	if start.IsZero() || (!other.Start.IsZero() && other.Start.Before(start)) {
		start = other.Start
	}
	if end.IsZero() || (!other.End.IsZero() && other.End.After(end)) {
		end = other.End
	}
	return DateRange{Start: start, End: end}
}

// RangeOf returns the dates spanned by records.
func RangeOf(records []models.Record) DateRange {
	var dr DateRange
	for i := range records {
		d := records[i].Date
		if d.IsZero() {
			continue
		}
		dr = dr.Merge(DateRange{Start: d, End: d})
	}
	return dr
}

// Job is one input file and its output path.
type Job struct {
	Input  string
	Output string
}

// FileResult is the outcome of one job.
type FileResult struct {
	Job
	RunID     string
	Records   int
	Written   int
	Skipped   int
	DateRange DateRange
	Err       error
}

// Summary aggregates the results of a batch.
type Summary struct {
	Files     []FileResult
	Succeeded int
	Failed    int
	Records   int
	DateRange DateRange
}

// Processor converts files with one pipeline and one writer. Pipelines share
// only the read-only rule table, so files may be converted concurrently.
type Processor struct {
	pipeline *pipeline.Pipeline
	writer   *output.Writer
	workers  int
	logger   logging.Logger
}

// NewProcessor creates a Processor. workers below 1 means sequential.
func NewProcessor(p *pipeline.Pipeline, w *output.Writer, workers int, logger logging.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{pipeline: p, writer: w, workers: workers, logger: logging.OrDefault(logger)}
}

// OutputName returns the output file name for input.
func OutputName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + OutputSuffix
}

// Plan lists the regular files of inputDir whose extension is in exts
// (case-insensitive, all files when exts is empty) and maps each to
// outputDir. Previous outputs are never picked up as inputs.
func Plan(inputDir, outputDir string, exts []string) ([]Job, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		allowed[e] = true
	}

	var jobs []Job
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, OutputSuffix) || strings.HasPrefix(name, ".") {
			continue
		}
		if len(allowed) > 0 && !allowed[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		jobs = append(jobs, Job{
			Input:  filepath.Join(inputDir, name),
			Output: filepath.Join(outputDir, OutputName(name)),
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Input < jobs[j].Input })
	return jobs, nil
}

// Run converts every job. A failing file is recorded and does not stop
// the others; cancellation of ctx does.
func (b *Processor) Run(ctx context.Context, jobs []Job) (*Summary, error) {
	results := make([]FileResult, len(jobs))

	if b.workers == 1 || len(jobs) < 2 {
		for i, job := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = b.convert(ctx, job)
		}
	} else {
		b.runConcurrent(ctx, jobs, results)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	s := &Summary{Files: results}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.Records += r.Written
		s.DateRange = s.DateRange.Merge(r.DateRange)
	}

	b.logger.Info("Batch processing completed",
		logging.F("succeeded", s.Succeeded),
		logging.F("failed", s.Failed),
		logging.F(logging.FieldCount, s.Records),
		logging.F("date_range", s.DateRange.String()))
	return s, nil
}

type indexedJob struct {
	index int
	job   Job
}

func (b *Processor) runConcurrent(ctx context.Context, jobs []Job, results []FileResult) {
	work := make(chan indexedJob)
	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ij := range work {
				results[ij.index] = b.convert(ctx, ij.job)
			}
		}()
	}

	for i, job := range jobs {
		select {
		case work <- indexedJob{index: i, job: job}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(work)
	wg.Wait()

	b.logger.Debug("Concurrent processing completed",
		logging.F("files", len(jobs)),
		logging.F("workers", b.workers))
}

func (b *Processor) convert(ctx context.Context, job Job) FileResult {
	log := b.logger.WithFields(
		logging.F(logging.FieldInputFile, job.Input),
		logging.F(logging.FieldOutputFile, job.Output))
	fr := FileResult{Job: job}

	res, err := b.pipeline.RunFile(ctx, job.Input)
	if err != nil {
		log.WithError(err).Error("Failed to convert file")
		fr.Err = err
		return fr
	}
	fr.RunID = res.RunID
	fr.Records = len(res.Records)
	fr.Skipped = len(res.Skipped)
	fr.DateRange = RangeOf(res.Records)
	b.detectAndLogDuplicates(res.Records, log)

	written, err := b.writer.WriteFile(job.Output, res.Records)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Written = written
	log.Info("File converted",
		logging.F(logging.FieldRunID, res.RunID),
		logging.F(logging.FieldCount, written))
	return fr
}

// detectAndLogDuplicates warns about records sharing date, signed amount and
// description. Duplicates are kept.
func (b *Processor) detectAndLogDuplicates(records []models.Record, log logging.Logger) {
	seen := make(map[string]bool, len(records))
	duplicates := 0
	for i := range records {
		r := &records[i]
		key := r.Date.Format("2006-01-02") + "|" + r.SignedAmount().StringFixed(2) + "|" + strings.ToLower(strings.TrimSpace(r.Description))
		if seen[key] {
			duplicates++
			log.Debug("Potential duplicate record",
				logging.F("date", r.Date.Format("2006-01-02")),
				logging.F("amount", r.SignedAmount().StringFixed(2)),
				logging.F(logging.FieldDescription, r.Description))
			continue
		}
		seen[key] = true
	}
	if duplicates > 0 {
		log.Warn("Found potential duplicate records", logging.F(logging.FieldCount, duplicates))
	}
}
