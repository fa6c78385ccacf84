package measures

import (
	"gostreak/domain/core"
	"gostreak/domain/outcome"
	"gostreak/domain/streak"
)

// New builds the measure for a kind and success polarity
func New(kind streak.Kind, polarity outcome.Polarity) (streak.Measure, error) {
	base := baseMeasure{kind: kind, polarity: polarity}
	switch kind {
	case streak.Gap:
		return &GapMeasure{baseMeasure: base}, nil
	case streak.Clump, streak.SecondMoment:
		return &InterEventMeasure{baseMeasure: base, equation: squaredGaps}, nil
	case streak.Entropy:
		return &InterEventMeasure{baseMeasure: base, equation: gapEntropy}, nil
	case streak.LogUtility:
		return &InterEventMeasure{baseMeasure: base, equation: logUtility}, nil
	case streak.Runs:
		return &RunsMeasure{baseMeasure: base}, nil
	}
	return nil, core.NewUnknownMeasureError(kind.String())
}

// MustNew is New for statically known kinds
func MustNew(kind streak.Kind, polarity outcome.Polarity) streak.Measure {
	m, err := New(kind, polarity)
	if err != nil {
		panic(err)
	}
	return m
}

type baseMeasure struct {
	kind     streak.Kind
	polarity outcome.Polarity
}

func (b baseMeasure) Kind() streak.Kind          { return b.kind }
func (b baseMeasure) Polarity() outcome.Polarity { return b.polarity }

func (b baseMeasure) Name() string {
	if b.kind == streak.Clump {
		if b.polarity == outcome.Losses {
			return "Clump Measure (Losses)"
		}
		return "Clump Measure (Wins)"
	}
	return b.kind.String()
}
