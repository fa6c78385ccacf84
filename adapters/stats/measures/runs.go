package measures

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"gostreak/domain/core"
	"gostreak/domain/streak"
)

// RunsMeasure counts maximal runs of identical outcomes (Wald-Wolfowitz).
// The count does not depend on which outcome is called a success.
type RunsMeasure struct {
	baseMeasure
}

func (m *RunsMeasure) NewState() streak.State {
	return &runsState{}
}

// RunsTest is the normal approximation to the Wald-Wolfowitz runs test
type RunsTest struct {
	Runs     int     `json:"runs"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Z        float64 `json:"z"`
	PValue   float64 `json:"p_value"`
}

type runsState struct {
	successes   int
	failures    int
	successRuns []int
	failureRuns []int
	observed    bool
	last        bool
	runs        int
}

func (s *runsState) Observe(success bool) {
	if success {
		s.successes++
		if s.observed && s.last {
			s.successRuns[len(s.successRuns)-1]++
		} else {
			s.successRuns = append(s.successRuns, 1)
			s.runs++
		}
	} else {
		s.failures++
		if s.observed && !s.last {
			s.failureRuns[len(s.failureRuns)-1]++
		} else {
			s.failureRuns = append(s.failureRuns, 1)
			s.runs++
		}
	}
	s.observed = true
	s.last = success
}

func (s *runsState) Value() float64 {
	return float64(s.runs)
}

// Test derives the runs-test statistics. A unit with only one kind of
// outcome has no defined variance and yields a numeric error.
func (s *runsState) Test() (*RunsTest, error) {
	w := float64(s.successes)
	l := float64(s.failures)
	if s.successes == 0 || s.failures == 0 {
		return nil, core.NewDegenerateVarianceError(s.successes, s.failures)
	}

	mean := 2*w*l/(w+l) + 1
	variance := (mean - 1) * (mean - 2) / (w + l - 1)
	if variance <= 0 {
		return nil, core.NewDegenerateVarianceError(s.successes, s.failures)
	}

	z := (float64(s.runs) - mean) / math.Sqrt(variance)
	p := 2 * distuv.UnitNormal.Survival(math.Abs(z))

	return &RunsTest{
		Runs:     s.runs,
		Mean:     mean,
		Variance: variance,
		Z:        z,
		PValue:   p,
	}, nil
}
