package main

import (
	"bytes"
	"io"
	"math"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostreak/adapters/stats/measures"
	"gostreak/app"
	"gostreak/domain/core"
	"gostreak/domain/outcome"
	"gostreak/domain/streak"
)

func TestValidateOutput(t *testing.T) {
	for _, format := range []string{outputTable, outputJSON, outputYAML} {
		assert.NoError(t, validateOutput(format))
	}
	err := validateOutput("xml")
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
	assert.True(t, core.IsConfigurationError(err))
}

func TestRenderFormats(t *testing.T) {
	point := expectationPoint{Games: 4, K: 1, P: 0.5, Expectation: 0.40476190476190477, Bias: -0.09523809523809523}
	tableCalled := false
	table := func(w io.Writer) error {
		tableCalled = true
		_, err := io.WriteString(w, "table\n")
		return err
	}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputJSON, point, table))
	assert.Contains(t, buf.String(), `"expectation": 0.40476190476190477`)
	assert.False(t, tableCalled)

	buf.Reset()
	require.NoError(t, render(&buf, outputYAML, point, table))
	assert.Contains(t, buf.String(), "games: 4\n")
	assert.Contains(t, buf.String(), "k: 1\n")
	assert.False(t, tableCalled)

	buf.Reset()
	require.NoError(t, render(&buf, outputTable, point, table))
	assert.Equal(t, "table\n", buf.String())
	assert.True(t, tableCalled)
}

func TestWriteYAMLQuotesNumericStrings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, map[string]interface{}{"game_id": "0042", "rows": []int{1, 2}}))
	assert.Contains(t, buf.String(), `game_id: "0042"`)
	assert.Contains(t, buf.String(), "rows:\n")
	assert.Contains(t, buf.String(), "- 2\n")
	assert.NotContains(t, buf.String(), "[")
}

func TestMeasureTable(t *testing.T) {
	schedule := outcome.Schedule{
		{ID: "1", Home: "BOS", Away: "NYK", HomeWin: true},
		{ID: "2", Home: "NYK", Away: "BOS", HomeWin: true},
	}
	calc, err := measures.NewCalculator(measures.MustNew(streak.Runs, outcome.Wins))
	require.NoError(t, err)
	result, err := calc.Calculate(schedule)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, measureTable(result)(&buf))
	assert.Contains(t, buf.String(), "Runs Test (wins)")
	assert.Contains(t, buf.String(), "BOS")
	assert.Contains(t, buf.String(), "NYK")
}

func TestNum(t *testing.T) {
	assert.Equal(t, "-", num(math.NaN()))
	assert.Equal(t, "0.5000", num(0.5))
	assert.Equal(t, "-", pValue(math.NaN(), 0.05))
	assert.Equal(t, "0.5000", pValue(0.5, 0.05))
}

func TestSweepTable(t *testing.T) {
	color.NoColor = true
	result := &app.SweepResult{
		SweepID:   core.ID("sweep-1"),
		StartedAt: core.Timestamp(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Polarity:  "wins",
		Trials:    50,
		Rows: []app.SweepRow{
			{Unit: "BOS", Measure: "Gap Measure", Observed: 3.2, PValue: 0.02, NullPercentile: 0.98},
			{Unit: "BOS", Measure: "Runs Test", Observed: 11, PValue: 0.4, NullPercentile: 0.6},
		},
		RuntimeMs: 7,
	}

	var buf bytes.Buffer
	require.NoError(t, sweepTable(result, 0.05)(&buf))
	out := buf.String()
	assert.Contains(t, out, "50 permutations per test, successes = wins")
	assert.Contains(t, out, "sweep sweep-1 started 2026-03-01T12:00:00Z")
	assert.Contains(t, out, "0.0200 *")
	assert.Contains(t, out, "1 of 2 tests below alpha = 0.05 (7ms)")
}
