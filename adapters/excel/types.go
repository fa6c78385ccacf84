package excel

// RawRowData represents a row of raw Excel data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents the complete Excel dataset
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether the header row contains the column
func (d *ExcelData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column names of a game schedule
const (
	ColumnGameID   = "Game ID"
	ColumnHomeTeam = "Home Team"
	ColumnAwayTeam = "Away Team"
	ColumnHomeWin  = "Home Win"
	ColumnHomeT    = "Home T"
	ColumnAwayT    = "Away T"
)
