// Package viz picks a visualization for a record collection and renders it
// for the terminal or as a PNG.
package viz

import (
	"strings"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

// Mode is the kind of visualization chosen for a record collection.
type Mode int

const (
	ModeNone Mode = iota
	ModeMap
	ModeLine
	ModeBar
)

func (m Mode) String() string {
	switch m {
	case ModeMap:
		return "map"
	case ModeLine:
		return "line"
	case ModeBar:
		return "bar"
	}
	return "none"
}

// Column names that trigger the map mode.
const (
	LatitudeKey  = "latitude"
	LongitudeKey = "longitude"
)

// Plan is the outcome of Detect: the mode plus the columns it plots.
type Plan struct {
	Mode        Mode
	DateCol     string // line: x axis
	CategoryCol string // bar: labels
	NumericCol  string // line and bar: y values
}

// Detect inspects the first record only and picks, in order of precedence:
// a map when latitude and longitude both exist, a line chart when a
// "date"-named column and a numeric column exist, a bar chart when a string
// column and a numeric column exist, and nothing otherwise.
func Detect(records models.Records) Plan {
	if len(records) == 0 {
		return Plan{Mode: ModeNone}
	}
	first := records[0]
	keys := first.Keys()

	if first.Has(LatitudeKey) && first.Has(LongitudeKey) {
		return Plan{Mode: ModeMap}
	}

	dateCol := ""
	for _, k := range keys {
		if strings.Contains(strings.ToLower(k), "date") {
			dateCol = k
			break
		}
	}

	numericCol := ""
	for _, k := range keys {
		if k == dateCol {
			continue
		}
		if v, _ := first.Get(k); models.IsNumeric(v) {
			numericCol = k
			break
		}
	}

	if dateCol != "" && numericCol != "" {
		return Plan{Mode: ModeLine, DateCol: dateCol, NumericCol: numericCol}
	}

	categoryCol := ""
	for _, k := range keys {
		if v, _ := first.Get(k); models.IsString(v) {
			categoryCol = k
			break
		}
	}

	if categoryCol != "" && numericCol != "" {
		return Plan{Mode: ModeBar, CategoryCol: categoryCol, NumericCol: numericCol}
	}

	return Plan{Mode: ModeNone}
}
