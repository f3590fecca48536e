// Package processor drives one run: load the file, hand the records to the
// aggregator, assemble the Summary.
package processor

import (
	"fmt"
	"time"

	"cruncher/internal/aggregator"
	"cruncher/internal/metrics"
	"cruncher/internal/models"
	"cruncher/internal/parser"
)

// Run processes the file at path with the given options and returns the
// Summary. Elapsed covers everything from the start of the load through the
// final merge. Input-access errors and fully undecodable files are fatal;
// individual malformed rows are skipped and reported in SkippedRows.
func Run(path string, opts aggregator.Options) (models.Summary, error) {
	start := time.Now()

	records, skipped, err := parser.Load(path)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return models.Summary{}, fmt.Errorf("failed to process %q: %w", path, err)
	}

	res := aggregator.Aggregate(records, opts)
	elapsed := time.Since(start)

	avg, ok := res.Average()
	summary := models.Summary{
		TotalRows:    res.Total,
		RetainedRows: res.Retained.Count,
		RemovedRows:  res.Total - res.Retained.Count,
		SkippedRows:  skipped,
		Average:      avg,
		AverageValid: ok,
		PerSensor:    res.PerSensor,
		Elapsed:      elapsed,
	}

	metrics.ObserveRun(summary.TotalRows, summary.RetainedRows, summary.SkippedRows, elapsed.Seconds())
	return summary, nil
}
