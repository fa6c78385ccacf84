package measures

import (
	"math"

	"gostreak/domain/streak"
)

// GapMeasure is the quadratic deviation of the cumulative success count from
// the count expected under the observed success rate:
//
//	sqrt( sum_{i=0}^{n-1} (S_{i+1} - i*m)^2 )
//
// where S_j counts successes in the first j games and m is the overall rate.
type GapMeasure struct {
	baseMeasure
}

func (m *GapMeasure) NewState() streak.State {
	return &gapState{}
}

// gapState keeps the three sums the expansion of the square needs, so the
// running value is O(1) per game even though m changes with every outcome.
type gapState struct {
	games     int
	successes int
	sumS2     float64 // sum of S_{i+1}^2
	sumIS     float64 // sum of i*S_{i+1}
	sumI2     float64 // sum of i^2
}

func (s *gapState) Observe(success bool) {
	i := float64(s.games)
	if success {
		s.successes++
	}
	cum := float64(s.successes)
	s.sumS2 += cum * cum
	s.sumIS += i * cum
	s.sumI2 += i * i
	s.games++
}

func (s *gapState) Value() float64 {
	if s.games == 0 {
		return 0
	}
	rate := float64(s.successes) / float64(s.games)
	total := s.sumS2 - 2*rate*s.sumIS + rate*rate*s.sumI2
	if total < 0 {
		// cancellation noise around an exact zero
		total = 0
	}
	return math.Sqrt(total)
}
