package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"

	"cruncher/internal/aggregator"
	"cruncher/internal/models"
	"cruncher/internal/processor"
)

func main() {
	input := flag.String("input", "", "path to the input CSV file (Timestamp,SensorID,Value)")
	threshold := flag.Float64("threshold", 0.0, "keep only rows where Value > threshold")
	verbose := flag.Bool("verbose", false, "print per-sensor statistics after processing")
	workers := flag.Int("workers", runtime.NumCPU(), "number of aggregation workers")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "missing required -input flag")
		flag.Usage()
		os.Exit(2)
	}

	info, err := os.Stat(*input)
	if err != nil {
		log.Fatalf("Input file %q does not exist or is not readable: %v", *input, err)
	}
	if info.IsDir() {
		log.Fatalf("%q is not a regular file", *input)
	}

	fmt.Printf("Input file      : %s\n", *input)
	fmt.Printf("Filter threshold: %g\n", *threshold)
	fmt.Printf("Workers         : %d\n", *workers)
	fmt.Println()

	summary, err := processor.Run(*input, aggregator.Options{
		Threshold: *threshold,
		Workers:   *workers,
		PerSensor: *verbose,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	printReport(summary, *verbose)
}

func printReport(s models.Summary, verbose bool) {
	fmt.Println("Processing complete")
	fmt.Printf("    Total rows read      : %d\n", s.TotalRows)
	fmt.Printf("    Rows after filter    : %d\n", s.RetainedRows)
	fmt.Printf("    Rows removed         : %d (%.2f%%)\n", s.RemovedRows, s.RemovedPercent())
	if verbose && s.SkippedRows > 0 {
		fmt.Printf("    Rows skipped (bad)   : %d\n", s.SkippedRows)
	}
	if s.AverageValid {
		fmt.Printf("    Average value        : %.6f\n", s.Average)
	} else {
		fmt.Println("    Average value        : N/A (no rows passed the filter)")
	}

	if verbose && len(s.PerSensor) > 0 {
		printSensorTable(s.PerSensor)
	}

	fmt.Printf("Wall-clock time : %v\n", s.Elapsed)
}

func printSensorTable(perSensor map[string]models.SensorStats) {
	ids := make([]string, 0, len(perSensor))
	for id := range perSensor {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println()
	fmt.Printf("  %-20s %10s %16s\n", "Sensor ID", "Row Count", "Average Value")
	fmt.Printf("  %-20s %10s %16s\n", "--------------------", "----------", "----------------")
	for _, id := range ids {
		st := perSensor[id]
		fmt.Printf("  %-20s %10d %16.6f\n", id, st.Count, st.Average())
	}
	fmt.Println()
}
