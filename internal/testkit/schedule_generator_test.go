package testkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostreak/domain/core"
	"gostreak/domain/outcome"
)

func TestScheduleGenerator_Basic(t *testing.T) {
	config := DefaultScheduleConfig()
	config.Teams = 6
	config.GamesPerTeam = 10

	schedule, err := NewScheduleGenerator(config).LoadSchedule(context.Background())
	require.NoError(t, err)
	require.NoError(t, schedule.Validate())

	assert.Len(t, schedule, 30)
	units := schedule.Units()
	assert.Len(t, units, 6)
	for _, u := range units {
		seq, err := schedule.UnitSequence(u)
		require.NoError(t, err)
		assert.Len(t, seq, 10, "team %s", u)
	}
}

func TestScheduleGenerator_Deterministic(t *testing.T) {
	config := DefaultScheduleConfig()
	a := NewScheduleGenerator(config).Generate()
	b := NewScheduleGenerator(config).Generate()
	assert.Equal(t, a, b)

	config.Seed = 7
	c := NewScheduleGenerator(config).Generate()
	assert.NotEqual(t, a, c)
}

func TestScheduleGenerator_FullPersistence(t *testing.T) {
	config := DefaultScheduleConfig()
	config.Teams = 4
	config.GamesPerTeam = 20
	config.Persistence = 1

	schedule := NewScheduleGenerator(config).Generate()
	require.NoError(t, schedule.Validate())

	// a home team always repeats its previous result
	last := make(map[outcome.UnitID]bool)
	for _, g := range schedule {
		if prev, seen := last[g.Home]; seen {
			assert.Equal(t, prev, g.HomeWin, "game %s", g.ID)
		}
		last[g.Home], last[g.Away] = g.HomeWin, !g.HomeWin
	}
}

func TestScheduleGeneratorConfigValidate(t *testing.T) {
	bad := []ScheduleGeneratorConfig{
		{Teams: 3, GamesPerTeam: 10},
		{Teams: 0, GamesPerTeam: 10},
		{Teams: 4, GamesPerTeam: 0},
		{Teams: 4, GamesPerTeam: 10, Persistence: 1.5},
		{Teams: 4, GamesPerTeam: 10, StrengthSpread: 1},
	}
	for _, c := range bad {
		err := c.Validate()
		require.Error(t, err)
		assert.True(t, core.IsDomainError(err))
	}

	_, err := NewScheduleGenerator(bad[0]).LoadSchedule(context.Background())
	assert.Error(t, err)
}

func TestSyntheticSequences(t *testing.T) {
	seq := BernoulliSequence(1000, 0.7, 1)
	assert.Len(t, seq, 1000)
	assert.InDelta(t, 700, seq.Wins(), 60)
	assert.Equal(t, seq, BernoulliSequence(1000, 0.7, 1))

	blocks := BlockSequence(4, 3)
	assert.Len(t, blocks, 12)
	assert.Equal(t, 6, blocks.Wins())
	assert.True(t, blocks[0])
	assert.False(t, blocks[3])
}

func TestRNGAdapterStreams(t *testing.T) {
	ctx := context.Background()
	rng := &RNGAdapter{}

	a, err := rng.Stream(ctx, "BOS", "permutation", "1", 42)
	require.NoError(t, err)
	b, err := rng.Stream(ctx, "BOS", "permutation", "1", 42)
	require.NoError(t, err)
	c, err := rng.Stream(ctx, "BOS", "permutation", "2", 42)
	require.NoError(t, err)

	x, y, z := a.Int63(), b.Int63(), c.Int63()
	assert.Equal(t, x, y)
	assert.NotEqual(t, x, z)
}

func TestTestKitWithConfig(t *testing.T) {
	config := DefaultScheduleConfig()
	config.Teams = 4
	config.GamesPerTeam = 6

	kit, err := NewTestKitWithConfig(config)
	require.NoError(t, err)
	schedule, err := kit.ScheduleAdapter().LoadSchedule(context.Background())
	require.NoError(t, err)
	assert.Len(t, schedule.Units(), 4)
	assert.Len(t, schedule, 4*6/2)

	config.Persistence = 1.5
	_, err = NewTestKitWithConfig(config)
	assert.True(t, core.IsDomainError(err))
}
