package battery

import (
	"context"
	"fmt"
	"strconv"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"gostreak/domain/core"
	"gostreak/domain/outcome"
	"gostreak/domain/streak"
	"gostreak/internal"
	"gostreak/ports"
)

const (
	// DefaultTrials is the number of permutations when the caller does not choose
	DefaultTrials = 200
	defaultSeed   = 42
)

// PermutationReferee judges streakiness by comparing a measure on the
// observed order against the same measure on random reorderings
type PermutationReferee struct {
	rngPort ports.RNGPort
	workers int
	seed    int64
	logger  *internal.Logger
}

// NewPermutationReferee creates a referee with four workers and seed 42
func NewPermutationReferee(rngPort ports.RNGPort) *PermutationReferee {
	return &PermutationReferee{
		rngPort: rngPort,
		workers: 4,
		seed:    defaultSeed,
		logger:  internal.DefaultLogger.With("permutation_referee"),
	}
}

// SetWorkers bounds the number of trials evaluated concurrently
func (pr *PermutationReferee) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	pr.workers = n
}

// SetSeed changes the base seed every trial stream is derived from
func (pr *PermutationReferee) SetSeed(seed int64) {
	pr.seed = seed
}

// SetLogger replaces the referee's logger
func (pr *PermutationReferee) SetLogger(l *internal.Logger) {
	pr.logger = l
}

// Test evaluates the measure on seq, then on trials uniform permutations of
// the same outcomes, and reports the upper-tail p-value.
func (pr *PermutationReferee) Test(ctx context.Context, unit outcome.UnitID, seq outcome.Sequence, measure streak.Measure, trials int) (*ports.SignificanceResult, error) {
	if len(seq) == 0 {
		return nil, core.NewNoGamesError(unit.String())
	}
	if measure == nil {
		return nil, core.NewUnknownMeasureError("<nil>")
	}
	if trials < 1 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidTrials, trials)
	}

	observed, err := streak.Evaluate(measure, seq)
	if err != nil {
		return nil, err
	}

	runID := core.NewRunID()
	logger := pr.logger.WithFields(map[string]interface{}{
		"run_id":  runID.String(),
		"unit":    unit.String(),
		"measure": measure.Name(),
	})
	logger.Debug("running %d permutation trials on %d games", trials, len(seq))

	samples, err := pr.nullSamples(ctx, unit, seq, measure, trials)
	if err != nil {
		logger.Warn("permutation test aborted: %v", err)
		return nil, err
	}

	pValue := upperTail(observed, samples)
	logger.Debug("observed %.4f, p=%.4f over %d trials", observed, pValue, trials)

	return &ports.SignificanceResult{
		RunID:    runID,
		Unit:     unit,
		Measure:  measure.Name(),
		Observed: observed,
		Null: ports.NullDistribution{
			Unit:    outcome.SimulatedUnit,
			Samples: samples,
		},
		PValue:         pValue,
		Trials:         trials,
		Summary:        summarize(samples),
		NullPercentile: nullPercentile(observed, samples),
	}, nil
}

// nullSamples runs every trial on its own RNG stream and result slot. Streams
// depend on unit, measure, trial and seed only, so reruns reproduce exactly.
func (pr *PermutationReferee) nullSamples(ctx context.Context, unit outcome.UnitID, seq outcome.Sequence, measure streak.Measure, trials int) ([]float64, error) {
	samples := make([]float64, trials)

	stage := "permutation:" + measure.Kind().Slug() + ":" + measure.Polarity().String()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pr.workers)

	for trial := 0; trial < trials; trial++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng, err := pr.rngPort.Stream(gctx, unit.String(), stage, strconv.Itoa(trial), pr.seed)
			if err != nil {
				return fmt.Errorf("trial %d rng: %w", trial, err)
			}
			value, err := streak.Evaluate(measure, seq.Shuffled(rng))
			if err != nil {
				return err
			}
			samples[trial] = value
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}

// upperTail is the share of null samples greater than or equal to observed
func upperTail(observed float64, samples []float64) float64 {
	extreme := 0
	for _, v := range samples {
		if v >= observed {
			extreme++
		}
	}
	return float64(extreme) / float64(len(samples))
}

// nullPercentile is the share of null samples at or below observed
func nullPercentile(observed float64, samples []float64) float64 {
	below := 0
	for _, v := range samples {
		if v <= observed {
			below++
		}
	}
	return float64(below) / float64(len(samples))
}

func summarize(samples []float64) ports.NullSummary {
	data := stats.Float64Data(samples)
	mean, _ := data.Mean()
	stdDev, _ := data.StandardDeviation()
	minimum, _ := data.Min()
	maximum, _ := data.Max()
	p95, _ := data.Percentile(95)
	p99, _ := data.Percentile(99)
	return ports.NullSummary{
		Mean:         mean,
		StdDev:       stdDev,
		Min:          minimum,
		Max:          maximum,
		Percentile95: p95,
		Percentile99: p99,
	}
}
