package analysis

import (
	"encoding/json"
	"math"

	"github.com/montanaflynn/stats"

	"gostreak/domain/core"
	"gostreak/domain/outcome"
	"gostreak/domain/selection"
)

// AutocorrelationRow compares a unit's record right after k straight wins
// with its overall record and with the exact selection-bias expectation
type AutocorrelationRow struct {
	Unit                    outcome.UnitID `json:"unit"`
	Games                   int            `json:"games"`
	Candidates              int            `json:"candidates"`
	StreakMean              float64        `json:"streak_mean"`
	OverallMean             float64        `json:"overall_mean"`
	Difference              float64        `json:"difference"`
	ExpectedStreakMean      float64        `json:"expected_streak_mean"`
	DifferenceToExpectation float64        `json:"difference_to_expectation"`
}

// AutocorrelationReport holds one row per unit plus the mean differences
// over every unit whose row is defined
type AutocorrelationReport struct {
	K                           int                  `json:"k"`
	Rows                        []AutocorrelationRow `json:"rows"`
	MeanDifference              float64              `json:"mean_difference"`
	MeanDifferenceToExpectation float64              `json:"mean_difference_to_expectation"`
}

// MarshalJSON encodes undefined statistics as null
func (r AutocorrelationRow) MarshalJSON() ([]byte, error) {
	type row AutocorrelationRow
	return json.Marshal(struct {
		row
		StreakMean              *float64 `json:"streak_mean"`
		Difference              *float64 `json:"difference"`
		ExpectedStreakMean      *float64 `json:"expected_streak_mean"`
		DifferenceToExpectation *float64 `json:"difference_to_expectation"`
	}{
		row:                     row(r),
		StreakMean:              core.NullableFloat(r.StreakMean),
		Difference:              core.NullableFloat(r.Difference),
		ExpectedStreakMean:      core.NullableFloat(r.ExpectedStreakMean),
		DifferenceToExpectation: core.NullableFloat(r.DifferenceToExpectation),
	})
}

// MarshalJSON encodes undefined aggregates as null
func (r AutocorrelationReport) MarshalJSON() ([]byte, error) {
	type report AutocorrelationReport
	return json.Marshal(struct {
		report
		MeanDifference              *float64 `json:"mean_difference"`
		MeanDifferenceToExpectation *float64 `json:"mean_difference_to_expectation"`
	}{
		report:                      report(r),
		MeanDifference:              core.NullableFloat(r.MeanDifference),
		MeanDifferenceToExpectation: core.NullableFloat(r.MeanDifferenceToExpectation),
	})
}

// PostStreakOutcomes returns the outcome of every game preceded by k wins in
// a row. Windows overlap, so a run of k+2 wins yields two entries.
func PostStreakOutcomes(seq outcome.Sequence, k int) outcome.Sequence {
	out := make(outcome.Sequence, 0)
	run := 0
	for _, won := range seq {
		if run >= k {
			out = append(out, won)
		}
		if won {
			run++
		} else {
			run = 0
		}
	}
	return out
}

// Autocorrelation builds the post-streak report for every unit of the schedule
func Autocorrelation(schedule outcome.Schedule, k int) (*AutocorrelationReport, error) {
	if k < 1 {
		return nil, core.NewParameterError("k", "streak length must be at least one")
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	report := &AutocorrelationReport{K: k, Rows: make([]AutocorrelationRow, 0)}
	var diffs, diffsToExpected stats.Float64Data

	for _, unit := range schedule.Units() {
		seq, err := schedule.UnitSequence(unit)
		if err != nil {
			return nil, err
		}
		row := autocorrelationRow(unit, seq, k)
		report.Rows = append(report.Rows, row)

		if !math.IsNaN(row.Difference) {
			diffs = append(diffs, row.Difference)
		}
		if !math.IsNaN(row.DifferenceToExpectation) {
			diffsToExpected = append(diffsToExpected, row.DifferenceToExpectation)
		}
	}

	report.MeanDifference = meanOrNaN(diffs)
	report.MeanDifferenceToExpectation = meanOrNaN(diffsToExpected)
	return report, nil
}

func autocorrelationRow(unit outcome.UnitID, seq outcome.Sequence, k int) AutocorrelationRow {
	overall, _ := seq.WinRate()
	candidates := PostStreakOutcomes(seq, k)

	row := AutocorrelationRow{
		Unit:                    unit,
		Games:                   len(seq),
		Candidates:              len(candidates),
		StreakMean:              math.NaN(),
		OverallMean:             overall,
		Difference:              math.NaN(),
		ExpectedStreakMean:      math.NaN(),
		DifferenceToExpectation: math.NaN(),
	}

	if engine, err := selection.NewCountEngine(len(seq), k, overall); err == nil {
		if expected, err := engine.Expectation(); err == nil {
			row.ExpectedStreakMean = expected
		}
	}

	if len(candidates) > 0 {
		row.StreakMean, _ = candidates.WinRate()
		row.Difference = row.StreakMean - overall
		row.DifferenceToExpectation = row.StreakMean - row.ExpectedStreakMean
	}
	return row
}

func meanOrNaN(data stats.Float64Data) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	mean, _ := data.Mean()
	return mean
}
