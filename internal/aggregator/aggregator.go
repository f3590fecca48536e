// Package aggregator implements the parallel filter-and-reduce over a loaded
// record set. Records are split into contiguous chunks, one goroutine per
// worker reduces its chunk into a thread-local partial, and the partials are
// merged once all workers finish. The merge is associative and commutative,
// so chunk boundaries and scheduling order cannot change the result beyond
// float summation order (least-significant bits may differ across worker
// counts; compare with an epsilon, not bit-exact).
package aggregator

import (
	"runtime"
	"sync"

	"cruncher/internal/models"
)

// Accumulator is the reduction state for one chunk: how many rows passed the
// filter and the sum of their values.
type Accumulator struct {
	Count uint64
	Sum   float64
}

// Add folds one retained value into the accumulator.
func (a *Accumulator) Add(v float64) {
	a.Count++
	a.Sum += v
}

// Merge combines another accumulator into this one. Counts and sums add, so
// Merge is associative and commutative.
func (a *Accumulator) Merge(other Accumulator) {
	a.Count += other.Count
	a.Sum += other.Sum
}

// Options configures one aggregation run. Workers <= 0 means one worker per
// CPU; the worker count is always passed in explicitly rather than read from
// ambient state so runs stay reproducible under test.
type Options struct {
	Threshold float64
	Workers   int
	PerSensor bool
}

// Result is the raw reduction output, before the processor wraps it into a
// Summary.
type Result struct {
	Total     uint64
	Retained  Accumulator
	PerSensor map[string]models.SensorStats
}

// partial is one worker's thread-local state. Nothing is shared while the
// workers run; per-sensor maps are merged key-wise afterwards.
type partial struct {
	acc       Accumulator
	perSensor map[string]models.SensorStats
}

// Aggregate filters records by value > opts.Threshold (strict: a value equal
// to the threshold is removed) and reduces the survivors to a count and sum,
// plus a per-sensor breakdown when opts.PerSensor is set. An empty input
// yields a zero Result, never a fault.
func Aggregate(records []models.Record, opts Options) Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(records) {
		workers = len(records)
	}
	if workers == 0 {
		return Result{}
	}

	partials := make([]partial, workers)

	// Even split with the remainder spread over the first len%workers
	// chunks: every chunk is non-empty and in bounds for any worker count.
	chunk := len(records) / workers
	rem := len(records) % workers

	var wg sync.WaitGroup
	lo := 0
	for w := 0; w < workers; w++ {
		hi := lo + chunk
		if w < rem {
			hi++
		}

		wg.Add(1)
		go func(p *partial, recs []models.Record) {
			defer wg.Done()
			if opts.PerSensor {
				p.perSensor = make(map[string]models.SensorStats)
			}
			for _, r := range recs {
				if r.Value > opts.Threshold {
					p.acc.Add(r.Value)
					if opts.PerSensor {
						s := p.perSensor[r.SensorID]
						s.Count++
						s.Sum += r.Value
						p.perSensor[r.SensorID] = s
					}
				}
			}
		}(&partials[w], records[lo:hi])
		lo = hi
	}
	wg.Wait()

	res := Result{Total: uint64(len(records))}
	if opts.PerSensor {
		res.PerSensor = make(map[string]models.SensorStats)
	}
	for _, p := range partials {
		res.Retained.Merge(p.acc)
		if opts.PerSensor {
			res.PerSensor = MergeSensorStats(res.PerSensor, p.perSensor)
		}
	}
	return res
}

// MergeSensorStats folds src into dst key-wise and returns dst. Same-key
// counts and sums add, so the merge is order-independent.
func MergeSensorStats(dst, src map[string]models.SensorStats) map[string]models.SensorStats {
	if dst == nil {
		dst = make(map[string]models.SensorStats, len(src))
	}
	for id, s := range src {
		d := dst[id]
		d.Count += s.Count
		d.Sum += s.Sum
		dst[id] = d
	}
	return dst
}

// Average returns the mean of the retained values, or false when no row was
// retained.
func (r Result) Average() (float64, bool) {
	if r.Retained.Count == 0 {
		return 0, false
	}
	return r.Retained.Sum / float64(r.Retained.Count), true
}
