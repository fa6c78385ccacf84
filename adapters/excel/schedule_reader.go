package excel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gostreak/domain/core"
	"gostreak/domain/outcome"
)

// ScheduleReader loads a game schedule from an .xlsx or .csv file. Rows
// are taken to be in chronological order.
type ScheduleReader struct {
	reader *DataReader
}

// NewScheduleReader creates a schedule reader for the given file
func NewScheduleReader(filePath string) *ScheduleReader {
	return &ScheduleReader{reader: NewDataReader(filePath)}
}

// LoadSchedule reads and validates the schedule
func (s *ScheduleReader) LoadSchedule(ctx context.Context) (outcome.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.reader.ReadData()
	if err != nil {
		return nil, err
	}

	schedule, err := ParseSchedule(data)
	if err != nil {
		return nil, err
	}
	s.reader.logger.Info("loaded %d games for %d teams", len(schedule), len(schedule.Units()))
	return schedule, nil
}

// ParseSchedule converts raw rows into games. The winner comes from a
// "Home Win" column when present, otherwise from the "Home T"/"Away T" scores.
func ParseSchedule(data *ExcelData) (outcome.Schedule, error) {
	for _, col := range []string{ColumnHomeTeam, ColumnAwayTeam} {
		if !data.HasColumn(col) {
			return nil, core.NewParameterError("columns", fmt.Sprintf("missing %q column", col))
		}
	}
	byFlag := data.HasColumn(ColumnHomeWin)
	if !byFlag && !(data.HasColumn(ColumnHomeT) && data.HasColumn(ColumnAwayT)) {
		return nil, core.NewParameterError("columns", "need \"Home Win\" or both \"Home T\" and \"Away T\"")
	}

	schedule := make(outcome.Schedule, 0, len(data.Rows))
	for i, row := range data.Rows {
		id := row[ColumnGameID]
		if id == "" {
			id = strconv.Itoa(i + 1)
		}

		var (
			homeWin bool
			err     error
		)
		if byFlag {
			homeWin, err = parseHomeWin(row[ColumnHomeWin])
		} else {
			homeWin, err = parseScores(row[ColumnHomeT], row[ColumnAwayT])
		}
		if err != nil {
			return nil, core.NewMalformedGameError(id, err.Error())
		}

		schedule = append(schedule, outcome.Game{
			ID:      id,
			Home:    outcome.UnitID(row[ColumnHomeTeam]),
			Away:    outcome.UnitID(row[ColumnAwayTeam]),
			HomeWin: homeWin,
		})
	}

	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return schedule, nil
}

func parseHomeWin(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "1", "1.0", "true", "t", "yes", "y", "w":
		return true, nil
	case "0", "0.0", "false", "f", "no", "n", "l":
		return false, nil
	}
	return false, fmt.Errorf("unrecognised home win value %q", raw)
}

func parseScores(home, away string) (bool, error) {
	h, err := strconv.ParseFloat(home, 64)
	if err != nil {
		return false, fmt.Errorf("bad home score %q", home)
	}
	a, err := strconv.ParseFloat(away, 64)
	if err != nil {
		return false, fmt.Errorf("bad away score %q", away)
	}
	if h == a {
		return false, fmt.Errorf("tied score %v-%v", h, a)
	}
	return h > a, nil
}
