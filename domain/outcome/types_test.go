package outcome

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostreak/domain/core"
)

func sampleSchedule() Schedule {
	return Schedule{
		{ID: "1", Home: "BOS", Away: "NYK", HomeWin: true},
		{ID: "2", Home: "LAL", Away: "BOS", HomeWin: true},
		{ID: "3", Home: "NYK", Away: "LAL", HomeWin: false},
	}
}

func TestScheduleUnitsFirstAppearance(t *testing.T) {
	assert.Equal(t, []UnitID{"BOS", "NYK", "LAL"}, sampleSchedule().Units())
}

func TestUnitSequence(t *testing.T) {
	s := sampleSchedule()

	bos, err := s.UnitSequence("BOS")
	require.NoError(t, err)
	assert.Equal(t, Sequence{true, false}, bos)

	lal, err := s.UnitSequence("LAL")
	require.NoError(t, err)
	assert.Equal(t, Sequence{true, true}, lal)

	assert.Len(t, s.ForUnit("NYK"), 2)

	_, err = s.UnitSequence("CHI")
	assert.ErrorIs(t, err, core.ErrNoGames)
}

func TestScheduleValidate(t *testing.T) {
	assert.NoError(t, sampleSchedule().Validate())
	assert.ErrorIs(t, Schedule{}.Validate(), core.ErrEmptySequence)
	assert.ErrorIs(t, Schedule{{ID: "x", Home: "BOS"}}.Validate(), core.ErrMalformedGame)
	assert.ErrorIs(t, Schedule{{ID: "x", Home: "BOS", Away: "BOS"}}.Validate(), core.ErrMalformedGame)
}

func TestShuffledPreservesComposition(t *testing.T) {
	seq, err := FromString("WWWWLLLWLWLLWWWLLLLW")
	require.NoError(t, err)
	orig := append(Sequence(nil), seq...)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := seq.Shuffled(rng)
		assert.Len(t, shuffled, len(seq))
		assert.Equal(t, seq.Wins(), shuffled.Wins())
	}
	assert.Equal(t, orig, seq, "receiver must not be mutated")
}

func TestShuffledDeterministicForSeed(t *testing.T) {
	seq, err := FromString("WWWWWLLLLL")
	require.NoError(t, err)

	a := seq.Shuffled(rand.New(rand.NewSource(42)))
	b := seq.Shuffled(rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}

func TestPolarity(t *testing.T) {
	seq, err := FromString("W,W,L")
	require.NoError(t, err)
	assert.Equal(t, 2, seq.Successes(Wins))
	assert.Equal(t, 1, seq.Successes(Losses))
	assert.True(t, Losses.Success(false))
	assert.False(t, Losses.Success(true))

	p, err := ParsePolarity("losses")
	require.NoError(t, err)
	assert.Equal(t, Losses, p)

	p, err = ParsePolarity("")
	require.NoError(t, err)
	assert.Equal(t, Wins, p)

	_, err = ParsePolarity("draws")
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
	assert.True(t, core.IsConfigurationError(err))
	assert.False(t, core.IsDomainError(err))
}

func TestWinRate(t *testing.T) {
	seq, err := FromString("TTTFT")
	require.NoError(t, err)
	rate, err := seq.WinRate()
	require.NoError(t, err)
	assert.InDelta(t, 0.8, rate, 1e-12)

	_, err = Sequence{}.WinRate()
	assert.ErrorIs(t, err, core.ErrEmptySequence)
}

func TestFromStringErrors(t *testing.T) {
	_, err := FromString("")
	assert.ErrorIs(t, err, core.ErrEmptySequence)

	_, err = FromString("WWX")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
