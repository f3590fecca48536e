package models

import "time"

// Record is one parsed input row. Timestamp and SensorID are kept as opaque
// strings: nothing downstream orders or compares them.
type Record struct {
	Timestamp string  `json:"timestamp"`
	SensorID  string  `json:"sensor_id"`
	Value     float64 `json:"value"`
}

// SensorStats accumulates retained rows for a single sensor.
type SensorStats struct {
	Count uint64  `json:"count"`
	Sum   float64 `json:"sum"`
}

// Average returns the mean of the retained values for this sensor.
func (s SensorStats) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Summary is the single result object of a run.
//
// Invariant: RetainedRows + RemovedRows == TotalRows. Rows that failed to
// decode are counted in SkippedRows and contribute to neither side.
// AverageValid is false when no row passed the filter; Average stays 0 in
// that case so the struct remains JSON-encodable (NaN is not).
type Summary struct {
	TotalRows    uint64                 `json:"total_rows"`
	RetainedRows uint64                 `json:"retained_rows"`
	RemovedRows  uint64                 `json:"removed_rows"`
	SkippedRows  uint64                 `json:"skipped_rows"`
	Average      float64                `json:"average"`
	AverageValid bool                   `json:"average_valid"`
	PerSensor    map[string]SensorStats `json:"per_sensor,omitempty"`
	Elapsed      time.Duration          `json:"elapsed_ns"`
}

// RemovedPercent returns the share of decoded rows the filter dropped.
func (s Summary) RemovedPercent() float64 {
	if s.TotalRows == 0 {
		return 0
	}
	return float64(s.RemovedRows) / float64(s.TotalRows) * 100
}

// ProcessRequest is the body of POST /process.
type ProcessRequest struct {
	Path      string  `json:"path"`
	Threshold float64 `json:"threshold"`
	Verbose   bool    `json:"verbose"`
	Workers   int     `json:"workers,omitempty"`
}

// ProcessResponse wraps a Summary for the HTTP API.
type ProcessResponse struct {
	Summary Summary `json:"summary"`
	Cached  bool    `json:"cached"`
}

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Redis     string    `json:"redis"`
	Uptime    string    `json:"uptime"`
}
