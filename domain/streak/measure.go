package streak

import (
	"strings"

	"gostreak/domain/core"
	"gostreak/domain/outcome"
)

// Kind enumerates the sealed family of streak measures
type Kind int

const (
	Gap Kind = iota
	Clump
	SecondMoment
	Entropy
	LogUtility
	Runs
)

// AllKinds lists every measure in display order
var AllKinds = []Kind{Gap, Clump, SecondMoment, Entropy, LogUtility, Runs}

var kindNames = map[Kind]string{
	Gap:          "Gap Measure",
	Clump:        "Clump Measure",
	SecondMoment: "Second Moment",
	Entropy:      "Entropy",
	LogUtility:   "Log Utility",
	Runs:         "Runs Test",
}

var kindSlugs = map[Kind]string{
	Gap:          "gap",
	Clump:        "clump",
	SecondMoment: "second_moment",
	Entropy:      "entropy",
	LogUtility:   "log_utility",
	Runs:         "runs",
}

var kindAliases = map[string]Kind{
	"gap_measure":   Gap,
	"clump_measure": Clump,
	"second-moment": SecondMoment,
	"log-utility":   LogUtility,
	"wwruns":        Runs,
	"runs_test":     Runs,
}

// String returns the display name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Slug returns the machine-friendly name
func (k Kind) Slug() string {
	return kindSlugs[k]
}

// ParseKind resolves a display name or slug. Clump names may carry a
// "(Wins)"/"(Losses)" suffix; the polarity is chosen separately.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.TrimSuffix(normalized, " (wins)")
	normalized = strings.TrimSuffix(normalized, " (losses)")

	for k, display := range kindNames {
		if normalized == strings.ToLower(display) || normalized == kindSlugs[k] {
			return k, nil
		}
	}
	if k, ok := kindAliases[normalized]; ok {
		return k, nil
	}
	return 0, core.NewUnknownMeasureError(name)
}

// State is the running per-unit bookkeeping for one pass. It is updated
// exactly once per game, in chronological order, and never shared.
type State interface {
	// Observe records the next outcome; success is already polarity-adjusted
	Observe(success bool)
	// Value returns the measure over everything observed so far
	Value() float64
}

// Measure is one streak statistic. Higher values mean more clustering.
type Measure interface {
	Kind() Kind
	Name() string
	Polarity() outcome.Polarity
	NewState() State
}

// Evaluate runs a single-unit pass and returns only the final scalar
func Evaluate(m Measure, seq outcome.Sequence) (float64, error) {
	if m == nil {
		return 0, core.NewUnknownMeasureError("<nil>")
	}
	if len(seq) == 0 {
		return 0, core.ErrEmptySequence
	}
	state := m.NewState()
	for _, won := range seq {
		state.Observe(m.Polarity().Success(won))
	}
	return state.Value(), nil
}
