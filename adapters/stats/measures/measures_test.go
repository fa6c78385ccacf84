package measures

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostreak/domain/core"
	"gostreak/domain/outcome"
	"gostreak/domain/streak"
	"gostreak/internal/testkit"
)

func mustSequence(t *testing.T, s string) outcome.Sequence {
	t.Helper()
	seq, err := outcome.FromString(s)
	require.NoError(t, err)
	return seq
}

// TestHandComputedValues checks every measure on T,T,T,F,T
func TestHandComputedValues(t *testing.T) {
	seq := mustSequence(t, "TTTFT")

	tests := []struct {
		kind     streak.Kind
		polarity outcome.Polarity
		want     float64
	}{
		{streak.Gap, outcome.Wins, math.Sqrt(5.4)},
		{streak.Clump, outcome.Wins, 1},
		{streak.SecondMoment, outcome.Wins, 1},
		{streak.Entropy, outcome.Wins, 0},
		{streak.LogUtility, outcome.Wins, 0},
		{streak.Runs, outcome.Wins, 3},
		{streak.Gap, outcome.Losses, math.Sqrt(0.4)},
		{streak.Clump, outcome.Losses, 9},
		{streak.Entropy, outcome.Losses, 3 * math.Log(3)},
		{streak.LogUtility, outcome.Losses, -math.Log(3)},
		{streak.Runs, outcome.Losses, 3},
	}

	for _, tt := range tests {
		t.Run(tt.kind.Slug()+"_"+tt.polarity.String(), func(t *testing.T) {
			got, err := streak.Evaluate(MustNew(tt.kind, tt.polarity), seq)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestClumpEqualsSecondMoment(t *testing.T) {
	sequences := []string{"T", "F", "TFTFTF", "TTTTFFFFTT", "FFFTFFTTTFTFFFFT", "WLLWWWLWLLLLWW"}
	for _, s := range sequences {
		seq := mustSequence(t, s)
		for _, pol := range []outcome.Polarity{outcome.Wins, outcome.Losses} {
			clump, err := streak.Evaluate(MustNew(streak.Clump, pol), seq)
			require.NoError(t, err)
			second, err := streak.Evaluate(MustNew(streak.SecondMoment, pol), seq)
			require.NoError(t, err)
			assert.Equal(t, clump, second, "sequence %s polarity %s", s, pol)
		}
	}
}

// Gaps of zero and one contribute nothing to the log-based measures
func TestUnitGapsContributeNothing(t *testing.T) {
	seq := mustSequence(t, "TFTFTTFT")
	for _, kind := range []streak.Kind{streak.Entropy, streak.LogUtility} {
		got, err := streak.Evaluate(MustNew(kind, outcome.Wins), seq)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got, kind.String())
	}
}

func TestLogMeasuresDependOnlyOnGapLengths(t *testing.T) {
	// both sequences have win gaps 0,0,0,0,0,2,2,3 in different orders
	a := mustSequence(t, "LLWLLWWWWWWLLLWL")
	b := mustSequence(t, "WWWWWLLWLLLWLLWL")
	for _, kind := range []streak.Kind{streak.Entropy, streak.LogUtility, streak.Clump} {
		va, err := streak.Evaluate(MustNew(kind, outcome.Wins), a)
		require.NoError(t, err)
		vb, err := streak.Evaluate(MustNew(kind, outcome.Wins), b)
		require.NoError(t, err)
		assert.Equal(t, va, vb, kind.String())
	}
}

func TestLogMeasuresInvariantUnderGapReordering(t *testing.T) {
	kit, err := testkit.NewTestKit()
	require.NoError(t, err)
	rng, err := kit.RNGAdapter().Stream(context.Background(), "measures", "gaps", "reorder", 7)
	require.NoError(t, err)

	gaps := []int{0, 1, 2, 2, 3, 3, 3, 5, 7, 0, 4, 11, 2, 6}
	build := func(order []int) outcome.Sequence {
		seq := outcome.Sequence{}
		for _, g := range order {
			for range g {
				seq = append(seq, false)
			}
			seq = append(seq, true)
		}
		return append(seq, false, false)
	}

	for _, kind := range []streak.Kind{streak.Entropy, streak.LogUtility} {
		want, err := streak.Evaluate(MustNew(kind, outcome.Wins), build(gaps))
		require.NoError(t, err)
		for trial := 0; trial < 200; trial++ {
			order := append([]int(nil), gaps...)
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
			got, err := streak.Evaluate(MustNew(kind, outcome.Wins), build(order))
			require.NoError(t, err)
			require.Equal(t, want, got, "%s with gaps %v", kind, order)
		}
	}
}

func TestRunsInvariantUnderPolarity(t *testing.T) {
	seq := mustSequence(t, "WWLWLLLWWWWLW")

	winCalc, err := NewCalculator(MustNew(streak.Runs, outcome.Wins))
	require.NoError(t, err)
	lossCalc, err := NewCalculator(MustNew(streak.Runs, outcome.Losses))
	require.NoError(t, err)

	winRes, err := winCalc.CalculateSequence("X", seq)
	require.NoError(t, err)
	lossRes, err := lossCalc.CalculateSequence("X", seq)
	require.NoError(t, err)

	assert.Equal(t, winRes.Units[0].Value, lossRes.Units[0].Value)
	assert.Equal(t, 7.0, winRes.Units[0].Value)

	// the normal approximation is symmetric in W and L
	require.NotNil(t, winRes.Units[0].RunsTest)
	require.NotNil(t, lossRes.Units[0].RunsTest)
	assert.InDelta(t, winRes.Units[0].RunsTest.Z, lossRes.Units[0].RunsTest.Z, 1e-12)
}

func TestRunsTestDiagnostics(t *testing.T) {
	state := &runsState{}
	for _, won := range mustSequence(t, "TTTFT") {
		state.Observe(won)
	}

	rt, err := state.Test()
	require.NoError(t, err)
	assert.Equal(t, 3, rt.Runs)
	assert.InDelta(t, 2.6, rt.Mean, 1e-12)
	assert.InDelta(t, 0.24, rt.Variance, 1e-12)
	assert.InDelta(t, 0.4/math.Sqrt(0.24), rt.Z, 1e-12)
	assert.Greater(t, rt.PValue, 0.0)
	assert.LessOrEqual(t, rt.PValue, 1.0)
}

func TestRunsTestDegenerate(t *testing.T) {
	for _, s := range []string{"TTTT", "FFF", "T"} {
		state := &runsState{}
		for _, won := range mustSequence(t, s) {
			state.Observe(won)
		}
		_, err := state.Test()
		require.Error(t, err, s)
		assert.True(t, core.IsNumericError(err))
		assert.ErrorIs(t, err, core.ErrDegenerateVariance)
	}
}

func TestGapMeasureIncremental(t *testing.T) {
	// direct evaluation of the closed form on every prefix
	seq := mustSequence(t, "TFFTTTFTFFFFTTFT")
	state := MustNew(streak.Gap, outcome.Wins).NewState()

	for n := 1; n <= len(seq); n++ {
		state.Observe(seq[n-1])

		prefix := seq[:n]
		m := float64(prefix.Wins()) / float64(n)
		total, cum := 0.0, 0
		for i, won := range prefix {
			if won {
				cum++
			}
			d := float64(cum) - float64(i)*m
			total += d * d
		}
		assert.InDelta(t, math.Sqrt(total), state.Value(), 1e-9, "prefix %d", n)
	}
}

func TestGapMeasureConstantSequences(t *testing.T) {
	got, err := streak.Evaluate(MustNew(streak.Gap, outcome.Wins), mustSequence(t, "TTTTT"))
	require.NoError(t, err)
	// S_{i+1} - i*1 = 1 for every i
	assert.InDelta(t, math.Sqrt(5), got, 1e-9)

	got, err = streak.Evaluate(MustNew(streak.Gap, outcome.Wins), mustSequence(t, "FFFF"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestEvaluateErrors(t *testing.T) {
	_, err := streak.Evaluate(MustNew(streak.Gap, outcome.Wins), outcome.Sequence{})
	assert.True(t, core.IsDomainError(err))

	_, err = streak.Evaluate(nil, mustSequence(t, "T"))
	assert.True(t, core.IsConfigurationError(err))

	_, err = NewCalculator(nil)
	assert.True(t, core.IsConfigurationError(err))

	_, err = New(streak.Kind(99), outcome.Wins)
	assert.True(t, core.IsConfigurationError(err))
}

func TestMeasureNames(t *testing.T) {
	assert.Equal(t, "Clump Measure (Wins)", MustNew(streak.Clump, outcome.Wins).Name())
	assert.Equal(t, "Clump Measure (Losses)", MustNew(streak.Clump, outcome.Losses).Name())
	assert.Equal(t, "Gap Measure", MustNew(streak.Gap, outcome.Losses).Name())
	for _, k := range streak.AllKinds {
		parsed, err := streak.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
}

func testSchedule() outcome.Schedule {
	return outcome.Schedule{
		{ID: "g1", Home: "BOS", Away: "NYK", HomeWin: true},
		{ID: "g2", Home: "NYK", Away: "BOS", HomeWin: false},
		{ID: "g3", Home: "BOS", Away: "LAL", HomeWin: true},
		{ID: "g4", Home: "LAL", Away: "NYK", HomeWin: true},
		{ID: "g5", Home: "BOS", Away: "LAL", HomeWin: false},
		{ID: "g6", Home: "NYK", Away: "BOS", HomeWin: false},
	}
}

func TestCalculateSchedule(t *testing.T) {
	calc, err := NewCalculator(MustNew(streak.Runs, outcome.Wins))
	require.NoError(t, err)

	res, err := calc.Calculate(testSchedule())
	require.NoError(t, err)

	require.Len(t, res.Units, 3)
	assert.Equal(t, outcome.UnitID("BOS"), res.Units[0].Unit)
	assert.Equal(t, outcome.UnitID("NYK"), res.Units[1].Unit)
	assert.Equal(t, outcome.UnitID("LAL"), res.Units[2].Unit)
	assert.Len(t, res.Trace, 6)

	// BOS: W W W L W
	bos, ok := res.Unit("BOS")
	require.True(t, ok)
	assert.Equal(t, 5, bos.Games)
	assert.Equal(t, 4, bos.Wins)
	assert.Equal(t, 1, bos.Losses)
	assert.InDelta(t, 0.8, bos.WinPct, 1e-12)
	assert.Equal(t, 3.0, bos.Value)
	assert.Equal(t, 2, bos.WinStreaks.Count)
	assert.InDelta(t, 2.0, bos.WinStreaks.Mean, 1e-12)
	assert.InDelta(t, 1.0, bos.WinStreaks.StdDev, 1e-12)
	assert.Equal(t, 1, bos.LossStreaks.Count)
	assert.InDelta(t, 1.0, bos.LossStreaks.Mean, 1e-12)

	// NYK: L L L L never wins
	nyk, ok := res.Unit("NYK")
	require.True(t, ok)
	assert.Equal(t, 0, nyk.Wins)
	assert.Equal(t, 0, nyk.WinStreaks.Count)
	assert.True(t, math.IsNaN(nyk.WinStreaks.Mean))
	assert.Nil(t, nyk.RunsTest)
	assert.True(t, core.IsNumericError(nyk.RunsTestErr))

	// last trace entry reflects both participants' final values
	last := res.Trace[len(res.Trace)-1]
	assert.Equal(t, "g6", last.GameID)
	assert.Equal(t, bos.Value, last.AwayValue)
	assert.Equal(t, nyk.Value, last.HomeValue)

	values := res.Values()
	assert.Len(t, values, 3)
	assert.Equal(t, 3.0, values["BOS"])
}

func TestCalculateUnitMatchesSchedulePass(t *testing.T) {
	schedule := testSchedule()
	for _, kind := range streak.AllKinds {
		calc, err := NewCalculator(MustNew(kind, outcome.Wins))
		require.NoError(t, err)

		full, err := calc.Calculate(schedule)
		require.NoError(t, err)
		single, err := calc.CalculateUnit(schedule, "LAL")
		require.NoError(t, err)

		want, _ := full.Unit("LAL")
		require.Len(t, single.Units, 1)
		assert.Equal(t, want.Value, single.Units[0].Value, kind.String())
		assert.Empty(t, single.Trace)
	}
}

func TestCalculateErrors(t *testing.T) {
	calc, err := NewCalculator(MustNew(streak.Gap, outcome.Wins))
	require.NoError(t, err)

	_, err = calc.Calculate(outcome.Schedule{})
	assert.ErrorIs(t, err, core.ErrEmptySequence)

	_, err = calc.CalculateUnit(testSchedule(), "CHI")
	assert.ErrorIs(t, err, core.ErrNoGames)

	_, err = calc.CalculateSequence("CHI", nil)
	assert.True(t, core.IsDomainError(err))

	_, err = calc.Calculate(outcome.Schedule{{ID: "bad", Home: "BOS", Away: "BOS"}})
	assert.ErrorIs(t, err, core.ErrMalformedGame)
}
