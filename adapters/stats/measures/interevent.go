package measures

import (
	"math"

	"gostreak/domain/streak"
)

// InterEventMeasure covers the measures built on inter-success gaps: the
// number of failures between consecutive successes. Clump and Second Moment
// share the squared-gap equation; they are one computation under two names.
type InterEventMeasure struct {
	baseMeasure
	equation func(gaps []int) float64
}

func (m *InterEventMeasure) NewState() streak.State {
	return &interEventState{equation: m.equation}
}

type interEventState struct {
	gaps       []int
	currentGap int
	equation   func(gaps []int) float64
}

func (s *interEventState) Observe(success bool) {
	if success {
		s.gaps = append(s.gaps, s.currentGap)
		s.currentGap = 0
		return
	}
	s.currentGap++
}

func (s *interEventState) Value() float64 {
	return s.equation(s.gaps)
}

func squaredGaps(gaps []int) float64 {
	total := 0.0
	for _, g := range gaps {
		total += float64(g * g)
	}
	return total
}

// gapCounts tallies gaps by length. The log-based measures sum over it in
// ascending length so equal gap multisets give bit-identical values.
func gapCounts(gaps []int) []int {
	longest := 0
	for _, g := range gaps {
		longest = max(longest, g)
	}
	counts := make([]int, longest+1)
	for _, g := range gaps {
		counts[g]++
	}
	return counts
}

func gapEntropy(gaps []int) float64 {
	total := 0.0
	for g, n := range gapCounts(gaps) {
		if g > 0 && n > 0 {
			total += float64(n) * float64(g) * math.Log(float64(g))
		}
	}
	return total
}

func logUtility(gaps []int) float64 {
	total := 0.0
	for g, n := range gapCounts(gaps) {
		if g > 0 && n > 0 {
			total -= float64(n) * math.Log(float64(g))
		}
	}
	return total
}
