// Package selection computes the exact finite-sample selection bias of
// streak-conditioned averages under an independent Bernoulli null.
package selection

import (
	"iter"
	"math"

	"gostreak/domain/core"
)

// CountEngine builds the joint count distribution for N games, streak
// threshold k and success probability p without simulation.
type CountEngine struct {
	games     int
	threshold int
	prob      float64
}

// NewCountEngine validates N >= 1, 0 <= k < N and 0 <= p <= 1. With p = 0
// no streak of length k >= 1 ever completes and the expectation is undefined.
func NewCountEngine(games, threshold int, prob float64) (*CountEngine, error) {
	if games < 1 {
		return nil, core.NewParameterError("N", "at least one game is required")
	}
	if threshold < 0 || threshold >= games {
		return nil, core.NewParameterError("k", "must satisfy 0 <= k < N")
	}
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		return nil, core.NewParameterError("p", "must lie in [0, 1]")
	}
	if prob == 0 && threshold > 0 {
		return nil, core.ErrUndefinedExpectation
	}
	return &CountEngine{games: games, threshold: threshold, prob: prob}, nil
}

// layers walks r = 0..N and hands out D(l, r) for every active run length
// l in 0..k. Only the previous layer is kept alive.
func (e *CountEngine) layers(yield func(r int, layer []*JointDistribution) bool) {
	k := e.threshold
	p, q := e.prob, 1-e.prob

	prev := make([]*JointDistribution, k+1)
	for l := range prev {
		prev[l] = PointMass(0)
	}
	if !yield(0, prev) {
		return
	}

	for r := 1; r <= e.games; r++ {
		cur := make([]*JointDistribution, k+1)
		for l := k; l >= 0; l-- {
			d := NewJointDistribution(r)
			if l < k {
				d.accumulate(prev[0], 0, 0, q)
				d.accumulate(prev[l+1], 0, 0, p)
			} else {
				// streak complete: the next game is recorded
				d.accumulate(prev[0], 1, 0, q)
				d.accumulate(prev[k], 0, 1, p)
			}
			cur[l] = d
		}
		if !yield(r, cur) {
			return
		}
		prev = cur
	}
}

// Distribution returns D(0, N)
func (e *CountEngine) Distribution() *JointDistribution {
	var out *JointDistribution
	e.layers(func(r int, layer []*JointDistribution) bool {
		if r == e.games {
			out = layer[0]
		}
		return true
	})
	return out
}

// Expectation is the exact expected proportion of successes in the games
// that immediately follow a completed streak of k successes
func (e *CountEngine) Expectation() (float64, error) {
	return ExpectedProportion(e.Distribution())
}

// Curve yields (n, expectation over n games) for n = k+1..N. Each range
// recomputes from scratch, so the sequence can be consumed repeatedly.
func (e *CountEngine) Curve() iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		e.layers(func(r int, layer []*JointDistribution) bool {
			if r <= e.threshold {
				return true
			}
			v, err := ExpectedProportion(layer[0])
			if err != nil {
				v = math.NaN()
			}
			return yield(r, v)
		})
	}
}
