package ports

import (
	"context"

	"gostreak/domain/outcome"
)

// SchedulePort supplies a chronologically ordered schedule of games
type SchedulePort interface {
	LoadSchedule(ctx context.Context) (outcome.Schedule, error)
}
