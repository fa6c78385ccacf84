package measures

import (
	"encoding/json"
	"math"

	"github.com/montanaflynn/stats"

	"gostreak/domain/core"
	"gostreak/domain/outcome"
	"gostreak/domain/streak"
)

// StreakStats describes the lengths of one kind of run
type StreakStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// MarshalJSON encodes the undefined mean and deviation of an empty list as null
func (s StreakStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Count  int      `json:"count"`
		Mean   *float64 `json:"mean"`
		StdDev *float64 `json:"std_dev"`
	}{s.Count, core.NullableFloat(s.Mean), core.NullableFloat(s.StdDev)})
}

// UnitResult is the final state of one unit after a pass. RunsTest is nil,
// and RunsTestErr set, when the unit never won or never lost.
type UnitResult struct {
	Unit        outcome.UnitID `json:"unit"`
	Games       int            `json:"games"`
	Value       float64        `json:"value"`
	Wins        int            `json:"wins"`
	Losses      int            `json:"losses"`
	WinPct      float64        `json:"win_pct"`
	WinStreaks  StreakStats    `json:"win_streaks"`
	LossStreaks StreakStats    `json:"loss_streaks"`
	RunsTest    *RunsTest      `json:"runs_test,omitempty"`
	RunsTestErr error          `json:"-"`
}

// GameTrace records the running measure of both participants after a game
type GameTrace struct {
	GameID    string         `json:"game_id"`
	Home      outcome.UnitID `json:"home"`
	Away      outcome.UnitID `json:"away"`
	HomeValue float64        `json:"home_value"`
	AwayValue float64        `json:"away_value"`
}

// Result is the immutable outcome of one measurement pass
type Result struct {
	Measure  string           `json:"measure"`
	Kind     streak.Kind      `json:"kind"`
	Polarity outcome.Polarity `json:"polarity"`
	Units    []UnitResult     `json:"units"`
	Trace    []GameTrace      `json:"trace,omitempty"`
}

// Values maps each unit to its final scalar
func (r *Result) Values() map[outcome.UnitID]float64 {
	values := make(map[outcome.UnitID]float64, len(r.Units))
	for _, u := range r.Units {
		values[u.Unit] = u.Value
	}
	return values
}

// Unit looks up one unit's result
func (r *Result) Unit(unit outcome.UnitID) (UnitResult, bool) {
	for _, u := range r.Units {
		if u.Unit == unit {
			return u, true
		}
	}
	return UnitResult{}, false
}

// Calculator drives a measure over chronological outcome data
type Calculator struct {
	measure streak.Measure
}

// NewCalculator creates a calculator for the given measure
func NewCalculator(m streak.Measure) (*Calculator, error) {
	if m == nil {
		return nil, core.NewUnknownMeasureError("<nil>")
	}
	return &Calculator{measure: m}, nil
}

// Measure returns the measure this calculator applies
func (c *Calculator) Measure() streak.Measure {
	return c.measure
}

// unitPass holds the per-unit bookkeeping of one pass. The tally always
// tracks wins so streak statistics keep their meaning for either polarity.
type unitPass struct {
	unit  outcome.UnitID
	state streak.State
	tally *runsState
	games int
}

func (c *Calculator) newPass(unit outcome.UnitID) *unitPass {
	return &unitPass{unit: unit, state: c.measure.NewState(), tally: &runsState{}}
}

func (p *unitPass) observe(won bool, polarity outcome.Polarity) {
	p.state.Observe(polarity.Success(won))
	p.tally.Observe(won)
	p.games++
}

// Calculate runs a pass over every unit in the schedule. The home unit sees
// HomeWin and the away unit sees its negation.
func (c *Calculator) Calculate(schedule outcome.Schedule) (*Result, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	units := schedule.Units()
	passes := make(map[outcome.UnitID]*unitPass, len(units))
	for _, u := range units {
		passes[u] = c.newPass(u)
	}

	trace := make([]GameTrace, 0, len(schedule))
	polarity := c.measure.Polarity()
	for _, g := range schedule {
		home := passes[g.Home]
		away := passes[g.Away]
		home.observe(g.HomeWin, polarity)
		away.observe(!g.HomeWin, polarity)
		trace = append(trace, GameTrace{
			GameID:    g.ID,
			Home:      g.Home,
			Away:      g.Away,
			HomeValue: home.state.Value(),
			AwayValue: away.state.Value(),
		})
	}

	result := c.newResult()
	for _, u := range units {
		result.Units = append(result.Units, finish(passes[u]))
	}
	result.Trace = trace
	return result, nil
}

// CalculateUnit runs a pass for a single unit of the schedule
func (c *Calculator) CalculateUnit(schedule outcome.Schedule, unit outcome.UnitID) (*Result, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	seq, err := schedule.UnitSequence(unit)
	if err != nil {
		return nil, err
	}
	return c.CalculateSequence(unit, seq)
}

// CalculateSequence runs a pass over a bare outcome sequence
func (c *Calculator) CalculateSequence(unit outcome.UnitID, seq outcome.Sequence) (*Result, error) {
	if len(seq) == 0 {
		return nil, core.NewNoGamesError(unit.String())
	}

	pass := c.newPass(unit)
	polarity := c.measure.Polarity()
	for _, won := range seq {
		pass.observe(won, polarity)
	}

	result := c.newResult()
	result.Units = append(result.Units, finish(pass))
	return result, nil
}

// Evaluate returns only the scalar for a sequence
func (c *Calculator) Evaluate(seq outcome.Sequence) (float64, error) {
	return streak.Evaluate(c.measure, seq)
}

func (c *Calculator) newResult() *Result {
	return &Result{
		Measure:  c.measure.Name(),
		Kind:     c.measure.Kind(),
		Polarity: c.measure.Polarity(),
		Units:    make([]UnitResult, 0),
	}
}

func finish(p *unitPass) UnitResult {
	t := p.tally
	res := UnitResult{
		Unit:        p.unit,
		Games:       p.games,
		Value:       p.state.Value(),
		Wins:        t.successes,
		Losses:      t.failures,
		WinPct:      float64(t.successes) / float64(p.games),
		WinStreaks:  streakStats(t.successRuns),
		LossStreaks: streakStats(t.failureRuns),
	}
	res.RunsTest, res.RunsTestErr = t.Test()
	return res
}

func streakStats(lengths []int) StreakStats {
	if len(lengths) == 0 {
		return StreakStats{Count: 0, Mean: math.NaN(), StdDev: math.NaN()}
	}

	data := make(stats.Float64Data, len(lengths))
	for i, l := range lengths {
		data[i] = float64(l)
	}
	mean, _ := stats.Mean(data)
	stdDev, _ := stats.StandardDeviation(data)
	return StreakStats{Count: len(lengths), Mean: mean, StdDev: stdDev}
}
