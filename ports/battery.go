package ports

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"gostreak/domain/core"
	"gostreak/domain/outcome"
	"gostreak/domain/streak"
)

// SignificancePort runs permutation significance tests on one unit's sequence
type SignificancePort interface {
	Test(ctx context.Context, unit outcome.UnitID, seq outcome.Sequence, measure streak.Measure, trials int) (*SignificanceResult, error)
}

// NullDistribution holds the measure values of every permuted sequence
type NullDistribution struct {
	Unit    outcome.UnitID `json:"unit"`
	Samples []float64      `json:"samples"`
}

// Len returns the number of trials behind the distribution
func (n NullDistribution) Len() int {
	return len(n.Samples)
}

// NullSummary condenses a null distribution
type NullSummary struct {
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Percentile95 float64 `json:"percentile_95"`
	Percentile99 float64 `json:"percentile_99"`
}

// SignificanceResult contains the outcome of a permutation test. PValue is
// the share of null samples at or above the observed value.
type SignificanceResult struct {
	RunID          core.RunID       `json:"run_id"`
	Unit           outcome.UnitID   `json:"unit"`
	Measure        string           `json:"measure"`
	Observed       float64          `json:"observed"`
	Null           NullDistribution `json:"null"`
	PValue         float64          `json:"p_value"`
	Trials         int              `json:"trials"`
	Summary        NullSummary      `json:"summary"`
	NullPercentile float64          `json:"null_percentile"`
}

// Significant reports whether the result clears the given level
func (r *SignificanceResult) Significant(alpha float64) bool {
	return r.PValue < alpha
}

// Histogram is a binned view of a null distribution for plotting
type Histogram struct {
	Dividers []float64 `json:"dividers"`
	Counts   []float64 `json:"counts"`
}

// Histogram bins the samples into equal-width bins spanning their range
func (n NullDistribution) Histogram(bins int) (*Histogram, error) {
	if bins < 1 {
		return nil, core.NewParameterError("bins", "at least one bin is required")
	}
	if len(n.Samples) == 0 {
		return nil, core.ErrEmptySequence
	}

	sorted := make([]float64, len(n.Samples))
	copy(sorted, n.Samples)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	// the top divider is exclusive
	hi = math.Nextafter(hi, math.Inf(1))

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	dividers[bins] = hi
	counts := stat.Histogram(make([]float64, bins), dividers, sorted, nil)
	return &Histogram{Dividers: dividers, Counts: counts}, nil
}
