package selection

import (
	"iter"

	"gostreak/domain/core"
)

// Key is one (a, b) cell of a joint count distribution: a counts the
// failures and b the successes observed right after a completed streak.
type Key struct {
	A int `json:"a"`
	B int `json:"b"`
}

// JointDistribution is a probability mass over integer pairs with a+b <= span.
// Cells are stored in a dense triangular table, row by row in a.
type JointDistribution struct {
	span int
	mass []float64
}

// NewJointDistribution returns an all-zero distribution over a+b <= span
func NewJointDistribution(span int) *JointDistribution {
	size := (span + 1) * (span + 2) / 2
	return &JointDistribution{span: span, mass: make([]float64, size)}
}

// PointMass returns the distribution with all mass on (0,0)
func PointMass(span int) *JointDistribution {
	d := NewJointDistribution(span)
	d.mass[0] = 1
	return d
}

// Span is the largest a+b the table can hold
func (d *JointDistribution) Span() int {
	return d.span
}

func (d *JointDistribution) index(a, b int) int {
	return a*(d.span+1) - a*(a-1)/2 + b
}

func (d *JointDistribution) contains(a, b int) bool {
	return a >= 0 && b >= 0 && a+b <= d.span
}

// At returns the mass at (a, b); cells outside the table hold zero
func (d *JointDistribution) At(a, b int) float64 {
	if !d.contains(a, b) {
		return 0
	}
	return d.mass[d.index(a, b)]
}

// All yields every cell carrying positive mass, ordered by a then b
func (d *JointDistribution) All() iter.Seq2[Key, float64] {
	return func(yield func(Key, float64) bool) {
		for a := 0; a <= d.span; a++ {
			row := d.index(a, 0)
			for b := 0; a+b <= d.span; b++ {
				p := d.mass[row+b]
				if p == 0 {
					continue
				}
				if !yield(Key{A: a, B: b}, p) {
					return
				}
			}
		}
	}
}

// Total sums the mass of every cell
func (d *JointDistribution) Total() float64 {
	total := 0.0
	for _, p := range d.mass {
		total += p
	}
	return total
}

// accumulate adds src, shifted by (da, db) and scaled by weight
func (d *JointDistribution) accumulate(src *JointDistribution, da, db int, weight float64) {
	if weight == 0 {
		return
	}
	for key, p := range src.All() {
		a, b := key.A+da, key.B+db
		d.mass[d.index(a, b)] += weight * p
	}
}

// ExpectedProportion is E[b/(a+b)] over every cell except (0,0), with the
// remaining mass renormalised to one. It fails when only (0,0) carries mass.
func ExpectedProportion(d *JointDistribution) (float64, error) {
	total, weighted := 0.0, 0.0
	for key, p := range d.All() {
		if key.A+key.B == 0 {
			continue
		}
		total += p
		weighted += p * float64(key.B) / float64(key.A+key.B)
	}
	if total == 0 {
		return 0, core.ErrUndefinedExpectation
	}
	return weighted / total, nil
}
