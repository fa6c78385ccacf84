package testkit

import (
	"context"
	"fmt"
	"math/rand"

	"gostreak/domain/core"
	"gostreak/domain/outcome"
)

// ScheduleGeneratorConfig configures the synthetic schedule generator
type ScheduleGeneratorConfig struct {
	Teams        int   `json:"teams"`
	GamesPerTeam int   `json:"games_per_team"`
	Seed         int64 `json:"seed"`
	// Persistence is the chance a team simply repeats its previous result.
	// Zero gives independent games; values near one give long streaks.
	Persistence float64 `json:"persistence"`
	// StrengthSpread widens the range of team win probabilities around 0.5
	StrengthSpread float64 `json:"strength_spread"`
}

// DefaultScheduleConfig returns a league-sized season with independent games
func DefaultScheduleConfig() ScheduleGeneratorConfig {
	return ScheduleGeneratorConfig{
		Teams:          30,
		GamesPerTeam:   82,
		Seed:           42,
		Persistence:    0,
		StrengthSpread: 0.2,
	}
}

// Validate checks the configuration can produce a schedule
func (c ScheduleGeneratorConfig) Validate() error {
	if c.Teams < 2 || c.Teams%2 != 0 {
		return core.NewParameterError("teams", "need an even number of at least two teams")
	}
	if c.GamesPerTeam < 1 {
		return core.NewParameterError("games_per_team", "must be positive")
	}
	if c.Persistence < 0 || c.Persistence > 1 {
		return core.NewParameterError("persistence", "must lie in [0, 1]")
	}
	if c.StrengthSpread < 0 || c.StrengthSpread >= 1 {
		return core.NewParameterError("strength_spread", "must lie in [0, 1)")
	}
	return nil
}

// ScheduleGenerator produces chronologically ordered synthetic seasons. It
// implements ports.SchedulePort so commands run without an input file.
type ScheduleGenerator struct {
	config ScheduleGeneratorConfig
}

// NewScheduleGenerator creates a new schedule generator
func NewScheduleGenerator(config ScheduleGeneratorConfig) *ScheduleGenerator {
	return &ScheduleGenerator{config: config}
}

// LoadSchedule generates a fresh season from the configured seed
func (g *ScheduleGenerator) LoadSchedule(ctx context.Context) (outcome.Schedule, error) {
	if err := g.config.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Generate(), nil
}

// Generate plays GamesPerTeam rounds; every team plays once per round
func (g *ScheduleGenerator) Generate() outcome.Schedule {
	rng := rand.New(rand.NewSource(g.config.Seed))

	teams := make([]outcome.UnitID, g.config.Teams)
	strength := make(map[outcome.UnitID]float64, g.config.Teams)
	for i := range teams {
		teams[i] = outcome.UnitID(fmt.Sprintf("T%02d", i+1))
		strength[teams[i]] = 0.5 + (rng.Float64()*2-1)*g.config.StrengthSpread/2
	}

	last := make(map[outcome.UnitID]bool)
	played := make(map[outcome.UnitID]bool)

	schedule := make(outcome.Schedule, 0, g.config.Teams*g.config.GamesPerTeam/2)
	for round := 0; round < g.config.GamesPerTeam; round++ {
		order := rng.Perm(len(teams))
		for i := 0; i+1 < len(order); i += 2 {
			home, away := teams[order[i]], teams[order[i+1]]

			var homeWin bool
			if played[home] && rng.Float64() < g.config.Persistence {
				homeWin = last[home]
			} else {
				ph, pa := strength[home], strength[away]
				homeWin = rng.Float64() < ph/(ph+pa)
			}

			schedule = append(schedule, outcome.Game{
				ID:      fmt.Sprintf("%04d-%02d", round+1, i/2+1),
				Home:    home,
				Away:    away,
				HomeWin: homeWin,
			})
			last[home], last[away] = homeWin, !homeWin
			played[home], played[away] = true, true
		}
	}
	return schedule
}

// BernoulliSequence draws n independent outcomes with win probability p
func BernoulliSequence(n int, p float64, seed int64) outcome.Sequence {
	rng := rand.New(rand.NewSource(seed))
	seq := make(outcome.Sequence, n)
	for i := range seq {
		seq[i] = rng.Float64() < p
	}
	return seq
}

// BlockSequence returns blocks of identical outcomes of the given length,
// starting with a win: the most clustered arrangement of its outcomes
func BlockSequence(blocks, length int) outcome.Sequence {
	seq := make(outcome.Sequence, 0, blocks*length)
	for b := 0; b < blocks; b++ {
		for i := 0; i < length; i++ {
			seq = append(seq, b%2 == 0)
		}
	}
	return seq
}
