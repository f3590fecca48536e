package processor

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"cruncher/internal/aggregator"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestRun_FilterAndAverage(t *testing.T) {
	path := writeTempCSV(t, `Timestamp,SensorID,Value
2024-01-01T00:00:00,S1,10.0
2024-01-01T00:00:01,S2,60.0
2024-01-01T00:00:02,S1,80.0
2024-01-01T00:00:03,S3,30.0
`)

	s, err := Run(path, aggregator.Options{Threshold: 50.0, Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.TotalRows != 4 {
		t.Errorf("Expected 4 total rows, got %d", s.TotalRows)
	}
	if s.RetainedRows != 2 {
		t.Errorf("Expected 2 retained rows, got %d", s.RetainedRows)
	}
	if s.RetainedRows+s.RemovedRows != s.TotalRows {
		t.Errorf("Invariant violated: %d + %d != %d", s.RetainedRows, s.RemovedRows, s.TotalRows)
	}
	if !s.AverageValid {
		t.Fatal("Expected a defined average")
	}
	if math.Abs(s.Average-70.0) > 1e-9 {
		t.Errorf("Expected average 70.0, got %f", s.Average)
	}
	if s.Elapsed <= 0 {
		t.Error("Expected positive elapsed time")
	}
}

func TestRun_NoRowsPassFilter(t *testing.T) {
	path := writeTempCSV(t, `Timestamp,SensorID,Value
2024-01-01T00:00:00,S1,1.0
2024-01-01T00:00:01,S2,2.0
`)

	s, err := Run(path, aggregator.Options{Threshold: 100.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RetainedRows != 0 {
		t.Errorf("Expected 0 retained rows, got %d", s.RetainedRows)
	}
	if s.AverageValid {
		t.Error("Average must be undefined when nothing passes the filter")
	}
}

func TestRun_AllRowsPassFilter(t *testing.T) {
	path := writeTempCSV(t, `Timestamp,SensorID,Value
2024-01-01T00:00:00,S1,100.0
2024-01-01T00:00:01,S2,200.0
`)

	s, err := Run(path, aggregator.Options{Threshold: 0.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TotalRows != 2 || s.RetainedRows != 2 {
		t.Errorf("Expected 2/2 rows, got %d/%d", s.TotalRows, s.RetainedRows)
	}
	if math.Abs(s.Average-150.0) > 1e-9 {
		t.Errorf("Expected average 150.0, got %f", s.Average)
	}
}

func TestRun_PerSensorBreakdown(t *testing.T) {
	path := writeTempCSV(t, `Timestamp,SensorID,Value
2024-01-01T00:00:00,S1,60.0
2024-01-01T00:00:01,S1,80.0
2024-01-01T00:00:02,S2,90.0
2024-01-01T00:00:03,S2,10.0
`)

	s, err := Run(path, aggregator.Options{Threshold: 50.0, PerSensor: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s.PerSensor) != 2 {
		t.Fatalf("Expected 2 sensors, got %d", len(s.PerSensor))
	}
	s1 := s.PerSensor["S1"]
	if s1.Count != 2 || math.Abs(s1.Average()-70.0) > 1e-9 {
		t.Errorf("S1 mismatch: count=%d avg=%f", s1.Count, s1.Average())
	}
	s2 := s.PerSensor["S2"]
	if s2.Count != 1 || math.Abs(s2.Average()-90.0) > 1e-9 {
		t.Errorf("S2 mismatch: count=%d avg=%f", s2.Count, s2.Average())
	}
}

func TestRun_SkipsMalformedRows(t *testing.T) {
	path := writeTempCSV(t, `Timestamp,SensorID,Value
2024-01-01T00:00:00,S1,60.0
2024-01-01T00:00:01,S2,not-a-number
2024-01-01T00:00:02,S3,40.0
`)

	s, err := Run(path, aggregator.Options{Threshold: 50.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SkippedRows != 1 {
		t.Errorf("Expected 1 skipped row, got %d", s.SkippedRows)
	}
	// Skipped rows count toward neither retained nor removed.
	if s.TotalRows != 2 {
		t.Errorf("Expected 2 decoded rows, got %d", s.TotalRows)
	}
	if s.RetainedRows != 1 || s.RemovedRows != 1 {
		t.Errorf("Expected 1/1 retained/removed, got %d/%d", s.RetainedRows, s.RemovedRows)
	}
}

func TestRun_HeaderOnlyFile(t *testing.T) {
	path := writeTempCSV(t, "Timestamp,SensorID,Value\n")

	s, err := Run(path, aggregator.Options{Threshold: 0.0})
	if err != nil {
		t.Fatalf("Header-only input must succeed, got: %v", err)
	}
	if s.TotalRows != 0 || s.RetainedRows != 0 {
		t.Errorf("Expected empty summary, got %+v", s)
	}
	if s.AverageValid {
		t.Error("Average must be undefined for an empty run")
	}
}

func TestRun_MissingFile(t *testing.T) {
	_, err := Run(filepath.Join(t.TempDir(), "nope.csv"), aggregator.Options{})
	if err == nil {
		t.Fatal("Expected error for missing input file")
	}
}

func TestRun_CatastrophicInput(t *testing.T) {
	path := writeTempCSV(t, `Timestamp,SensorID,Value
garbage
more,garbage
`)

	_, err := Run(path, aggregator.Options{})
	if err == nil {
		t.Fatal("Expected run-level failure when every row is malformed")
	}
}
