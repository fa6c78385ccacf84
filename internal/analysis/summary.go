package analysis

import (
	"encoding/json"
	"math"

	"gostreak/adapters/stats/measures"
	"gostreak/domain/core"
	"gostreak/domain/outcome"
	"gostreak/domain/streak"
)

// SummaryRow combines the record, streak statistics and every streak
// measure of one unit
type SummaryRow struct {
	Unit         outcome.UnitID       `json:"unit"`
	Wins         int                  `json:"wins"`
	Losses       int                  `json:"losses"`
	WinPct       float64              `json:"win_pct"`
	WinStreaks   measures.StreakStats `json:"win_streaks"`
	LossStreaks  measures.StreakStats `json:"loss_streaks"`
	Runs         float64              `json:"runs"`
	RunsZ        float64              `json:"runs_z"`
	RunsP        float64              `json:"runs_p"`
	Gap          float64              `json:"gap"`
	ClumpWins    float64              `json:"clump_wins"`
	SecondMoment float64              `json:"second_moment"`
	Entropy      float64              `json:"entropy"`
	LogUtility   float64              `json:"log_utility"`
	ClumpLosses  float64              `json:"clump_losses"`
}

// MarshalJSON encodes the runs test of a degenerate unit as null
func (r SummaryRow) MarshalJSON() ([]byte, error) {
	type row SummaryRow
	return json.Marshal(struct {
		row
		RunsZ *float64 `json:"runs_z"`
		RunsP *float64 `json:"runs_p"`
	}{row(r), core.NullableFloat(r.RunsZ), core.NullableFloat(r.RunsP)})
}

type summaryColumn struct {
	kind     streak.Kind
	polarity outcome.Polarity
	set      func(row *SummaryRow, v float64)
}

var summaryColumns = []summaryColumn{
	{streak.Gap, outcome.Wins, func(r *SummaryRow, v float64) { r.Gap = v }},
	{streak.Clump, outcome.Wins, func(r *SummaryRow, v float64) { r.ClumpWins = v }},
	{streak.SecondMoment, outcome.Wins, func(r *SummaryRow, v float64) { r.SecondMoment = v }},
	{streak.Entropy, outcome.Wins, func(r *SummaryRow, v float64) { r.Entropy = v }},
	{streak.LogUtility, outcome.Wins, func(r *SummaryRow, v float64) { r.LogUtility = v }},
	{streak.Clump, outcome.Losses, func(r *SummaryRow, v float64) { r.ClumpLosses = v }},
}

// Summary runs every measure over the schedule and joins the results by
// unit, in order of first appearance. Runs-test statistics are NaN for a
// unit that never won or never lost.
func Summary(schedule outcome.Schedule) ([]SummaryRow, error) {
	calc, err := measures.NewCalculator(measures.MustNew(streak.Runs, outcome.Wins))
	if err != nil {
		return nil, err
	}
	base, err := calc.Calculate(schedule)
	if err != nil {
		return nil, err
	}

	rows := make([]SummaryRow, len(base.Units))
	index := make(map[outcome.UnitID]int, len(base.Units))
	for i, u := range base.Units {
		index[u.Unit] = i
		rows[i] = SummaryRow{
			Unit:        u.Unit,
			Wins:        u.Wins,
			Losses:      u.Losses,
			WinPct:      u.WinPct,
			WinStreaks:  u.WinStreaks,
			LossStreaks: u.LossStreaks,
			Runs:        u.Value,
			RunsZ:       math.NaN(),
			RunsP:       math.NaN(),
		}
		if u.RunsTest != nil {
			rows[i].RunsZ = u.RunsTest.Z
			rows[i].RunsP = u.RunsTest.PValue
		}
	}

	for _, col := range summaryColumns {
		calc, err := measures.NewCalculator(measures.MustNew(col.kind, col.polarity))
		if err != nil {
			return nil, err
		}
		res, err := calc.Calculate(schedule)
		if err != nil {
			return nil, err
		}
		for _, u := range res.Units {
			col.set(&rows[index[u.Unit]], u.Value)
		}
	}
	return rows, nil
}
