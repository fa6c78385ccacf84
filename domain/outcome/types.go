package outcome

import (
	"math/rand"

	"gostreak/domain/core"
)

// UnitID identifies a team (or any other unit) whose outcomes form a sequence
type UnitID string

func (u UnitID) String() string { return string(u) }

// SimulatedUnit labels measures computed on permuted sequences
const SimulatedUnit UnitID = "Simulated Team"

// Game is one chronological result between two units
type Game struct {
	ID      string `json:"game_id"`
	Home    UnitID `json:"home_team"`
	Away    UnitID `json:"away_team"`
	HomeWin bool   `json:"home_win"`
}

// Involves reports whether the unit played in the game
func (g Game) Involves(unit UnitID) bool {
	return g.Home == unit || g.Away == unit
}

// WonBy reports whether the given participant won the game
func (g Game) WonBy(unit UnitID) bool {
	if g.Home == unit {
		return g.HomeWin
	}
	return !g.HomeWin
}

// Schedule is a chronologically ordered list of games.
// Order is significant and is never changed by this package.
type Schedule []Game

// Validate rejects empty schedules and games without two distinct participants
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return core.ErrEmptySequence
	}
	for _, g := range s {
		if g.Home == "" || g.Away == "" {
			return core.NewMalformedGameError(g.ID, "missing participant")
		}
		if g.Home == g.Away {
			return core.NewMalformedGameError(g.ID, "home and away are the same unit")
		}
	}
	return nil
}

// Units returns every participant in order of first appearance
func (s Schedule) Units() []UnitID {
	seen := make(map[UnitID]bool)
	units := make([]UnitID, 0)
	for _, g := range s {
		for _, u := range [2]UnitID{g.Home, g.Away} {
			if !seen[u] {
				seen[u] = true
				units = append(units, u)
			}
		}
	}
	return units
}

// ForUnit returns the subset of games the unit played, in order
func (s Schedule) ForUnit(unit UnitID) Schedule {
	games := make(Schedule, 0)
	for _, g := range s {
		if g.Involves(unit) {
			games = append(games, g)
		}
	}
	return games
}

// UnitSequence derives the unit's own win/loss sequence
func (s Schedule) UnitSequence(unit UnitID) (Sequence, error) {
	seq := make(Sequence, 0)
	for _, g := range s {
		if g.Involves(unit) {
			seq = append(seq, g.WonBy(unit))
		}
	}
	if len(seq) == 0 {
		return nil, core.NewNoGamesError(unit.String())
	}
	return seq, nil
}

// Sequence is one unit's outcomes in chronological order; true means the unit won
type Sequence []bool

// Polarity selects which outcome counts as a success
type Polarity int

const (
	Wins Polarity = iota
	Losses
)

func (p Polarity) String() string {
	if p == Losses {
		return "losses"
	}
	return "wins"
}

// Success maps a win/loss outcome onto the polarity's success sense
func (p Polarity) Success(won bool) bool {
	if p == Losses {
		return !won
	}
	return won
}

// ParsePolarity accepts "wins"/"win"/"w" and "losses"/"loss"/"l"
func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "", "wins", "win", "w", "W":
		return Wins, nil
	case "losses", "loss", "l", "L":
		return Losses, nil
	}
	return Wins, core.NewUnknownMethodError("polarity", s)
}

// Wins counts the true entries
func (s Sequence) Wins() int {
	n := 0
	for _, won := range s {
		if won {
			n++
		}
	}
	return n
}

// Successes counts the outcomes the polarity treats as a success
func (s Sequence) Successes(p Polarity) int {
	if p == Losses {
		return len(s) - s.Wins()
	}
	return s.Wins()
}

// WinRate returns the share of wins, or an error for an empty sequence
func (s Sequence) WinRate() (float64, error) {
	if len(s) == 0 {
		return 0, core.ErrEmptySequence
	}
	return float64(s.Wins()) / float64(len(s)), nil
}

// Shuffled returns a uniformly permuted copy, leaving the receiver untouched
func (s Sequence) Shuffled(rng *rand.Rand) Sequence {
	out := make(Sequence, len(s))
	copy(out, s)

	// Fisher-Yates shuffle
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// FromString builds a sequence from a compact form such as "WWWLW" or "TTTFT"
func FromString(s string) (Sequence, error) {
	seq := make(Sequence, 0, len(s))
	for _, c := range s {
		switch c {
		case 'W', 'w', 'T', 't', '1':
			seq = append(seq, true)
		case 'L', 'l', 'F', 'f', '0':
			seq = append(seq, false)
		case ' ', ',':
		default:
			return nil, core.NewParameterError("sequence", "unexpected outcome "+string(c))
		}
	}
	if len(seq) == 0 {
		return nil, core.ErrEmptySequence
	}
	return seq, nil
}
