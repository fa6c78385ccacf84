package app

import (
	"context"
	"iter"
	"time"

	"gostreak/adapters/stats/measures"
	"gostreak/domain/core"
	"gostreak/domain/outcome"
	"gostreak/domain/selection"
	"gostreak/domain/streak"
	"gostreak/internal"
	"gostreak/internal/analysis"
	"gostreak/internal/config"
	"gostreak/internal/errors"
	"gostreak/ports"
)

// StreakService is the entry point for streak measures, permutation tests
// and the exact selection-bias engine
type StreakService struct {
	config    *config.Config
	referee   ports.SignificancePort
	schedules ports.SchedulePort
	logger    *internal.Logger
}

// SweepRow is one unit × measure permutation test
type SweepRow struct {
	Unit           outcome.UnitID `json:"unit"`
	Measure        string         `json:"measure"`
	Observed       float64        `json:"observed"`
	PValue         float64        `json:"p_value"`
	NullPercentile float64        `json:"null_percentile"`
}

// SweepResult contains every test of a sweep, ordered by unit then measure
type SweepResult struct {
	SweepID   core.ID        `json:"sweep_id"`
	StartedAt core.Timestamp `json:"started_at"`
	Polarity  string         `json:"polarity"`
	Trials    int            `json:"trials"`
	Rows      []SweepRow     `json:"rows"`
	RuntimeMs int64          `json:"runtime_ms"`
}

// NewStreakService creates a streak service
func NewStreakService(cfg *config.Config, referee ports.SignificancePort, schedules ports.SchedulePort) *StreakService {
	return &StreakService{
		config:    cfg,
		referee:   referee,
		schedules: schedules,
		logger:    internal.DefaultLogger.With("streak_service"),
	}
}

// SetLogger replaces the service logger
func (s *StreakService) SetLogger(l *internal.Logger) {
	s.logger = l
}

// LoadSchedule reads the schedule from the configured source
func (s *StreakService) LoadSchedule(ctx context.Context) (outcome.Schedule, error) {
	if s.schedules == nil {
		return nil, errors.ConfigInvalid("no schedule source configured")
	}
	schedule, err := s.schedules.LoadSchedule(ctx)
	if err != nil {
		return nil, errors.FromCore(err, "failed to load schedule")
	}
	s.logger.Debug("schedule has %d games", len(schedule))
	return schedule, nil
}

// ComputeMeasure evaluates one measure for every unit of the schedule
func (s *StreakService) ComputeMeasure(schedule outcome.Schedule, kind streak.Kind, polarity outcome.Polarity) (*measures.Result, error) {
	m, err := measures.New(kind, polarity)
	if err != nil {
		return nil, errors.FromCore(err, "unknown measure")
	}
	calc, err := measures.NewCalculator(m)
	if err != nil {
		return nil, errors.FromCore(err, "failed to build calculator")
	}
	result, err := calc.Calculate(schedule)
	if err != nil {
		return nil, errors.FromCore(err, "measure computation failed")
	}
	return result, nil
}

// SignificanceTest runs the permutation test for one unit. A non-positive
// trial count falls back to the configured default.
func (s *StreakService) SignificanceTest(ctx context.Context, schedule outcome.Schedule, kind streak.Kind, polarity outcome.Polarity, unit outcome.UnitID, trials int) (*ports.SignificanceResult, error) {
	m, err := measures.New(kind, polarity)
	if err != nil {
		return nil, errors.FromCore(err, "unknown measure")
	}
	seq, err := schedule.UnitSequence(unit)
	if err != nil {
		return nil, errors.FromCore(err, "no sequence for unit")
	}

	result, err := s.referee.Test(ctx, unit, seq, m, s.trials(trials))
	if err != nil {
		return nil, errors.FromCore(err, "significance test failed")
	}
	return result, nil
}

// SelectionBiasExpectation returns the exact expected proportion of
// successes right after k straight successes in n independent trials
func (s *StreakService) SelectionBiasExpectation(n, k int, p float64) (float64, error) {
	engine, err := selection.NewCountEngine(n, k, p)
	if err != nil {
		return 0, errors.FromCore(err, "invalid selection-bias parameters")
	}
	expected, err := engine.Expectation()
	if err != nil {
		return 0, errors.FromCore(err, "selection-bias expectation undefined")
	}
	return expected, nil
}

// ExpectationCurve yields the expectation for every sequence length k+1..n
func (s *StreakService) ExpectationCurve(n, k int, p float64) (iter.Seq2[int, float64], error) {
	engine, err := selection.NewCountEngine(n, k, p)
	if err != nil {
		return nil, errors.FromCore(err, "invalid selection-bias parameters")
	}
	return engine.Curve(), nil
}

// Sweep runs a permutation test for every unit and measure. Tests run one
// after another; each test parallelises its own trials. Empty kinds means
// every measure.
func (s *StreakService) Sweep(ctx context.Context, schedule outcome.Schedule, kinds []streak.Kind, polarity outcome.Polarity, trials int) (*SweepResult, error) {
	startTime := time.Now()
	if err := schedule.Validate(); err != nil {
		return nil, errors.FromCore(err, "invalid schedule")
	}
	if len(kinds) == 0 {
		kinds = streak.AllKinds
	}
	trials = s.trials(trials)

	units := schedule.Units()
	result := &SweepResult{
		SweepID:   core.NewID(),
		StartedAt: core.Timestamp(startTime),
		Polarity:  polarity.String(),
		Trials:    trials,
		Rows:      make([]SweepRow, 0, len(units)*len(kinds)),
	}
	logger := s.logger.WithFields(map[string]interface{}{"sweep_id": result.SweepID.String()})
	logger.Info("sweeping %d units x %d measures with %d trials", len(units), len(kinds), trials)

	for _, unit := range units {
		for _, kind := range kinds {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "sweep cancelled")
			}
			test, err := s.SignificanceTest(ctx, schedule, kind, polarity, unit, trials)
			if err != nil {
				return nil, err
			}
			result.Rows = append(result.Rows, SweepRow{
				Unit:           unit,
				Measure:        test.Measure,
				Observed:       test.Observed,
				PValue:         test.PValue,
				NullPercentile: test.NullPercentile,
			})
		}
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	logger.Info("sweep finished in %dms", result.RuntimeMs)
	return result, nil
}

// Summary builds the combined measure table
func (s *StreakService) Summary(schedule outcome.Schedule) ([]analysis.SummaryRow, error) {
	rows, err := analysis.Summary(schedule)
	if err != nil {
		return nil, errors.FromCore(err, "summary failed")
	}
	return rows, nil
}

// Autocorrelation builds the post-streak report for streaks of length k.
// A non-positive k falls back to the configured streak length.
func (s *StreakService) Autocorrelation(schedule outcome.Schedule, k int) (*analysis.AutocorrelationReport, error) {
	if k <= 0 && s.config != nil {
		k = s.config.Selection.StreakLength
	}
	report, err := analysis.Autocorrelation(schedule, k)
	if err != nil {
		return nil, errors.FromCore(err, "autocorrelation failed")
	}
	return report, nil
}

func (s *StreakService) trials(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.config != nil && s.config.MonteCarlo.Trials > 0 {
		return s.config.MonteCarlo.Trials
	}
	return 200
}
