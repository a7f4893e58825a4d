// Package summary maps sensor names to summary sheet columns and exposes typed
// per-column views of a snapshot.
package summary

import "sensordigest/internal/models"

const (
	DefaultFirstColumn     = 2
	DefaultColumnScanLimit = 30
)

// ColumnIndex is the column registry built once per run from the header row.
type ColumnIndex struct {
	byName      map[string]int
	duplicates  []string
	firstColumn int
	bound       int
}

// NewColumnIndex indexes at most bound header cells starting at firstColumn.
// A name seen twice keeps its first column and is reported by Duplicates.
func NewColumnIndex(header []string, firstColumn, bound int) *ColumnIndex {
	if firstColumn < 1 {
		firstColumn = DefaultFirstColumn
	}
	if bound <= 0 {
		bound = DefaultColumnScanLimit
	}
	idx := &ColumnIndex{
		byName:      make(map[string]int, bound),
		firstColumn: firstColumn,
		bound:       bound,
	}
	for column := firstColumn; column < firstColumn+bound && column <= len(header); column++ {
		name := header[column-1]
		if name == "" {
			continue
		}
		if _, seen := idx.byName[name]; seen {
			idx.duplicates = append(idx.duplicates, name)
			continue
		}
		idx.byName[name] = column
	}
	return idx
}

// FromSnapshot builds the index over the snapshot header row.
func FromSnapshot(snapshot *models.SummarySnapshot, firstColumn, bound int) *ColumnIndex {
	return NewColumnIndex(snapshot.Header, firstColumn, bound)
}

// Resolve returns the column of a sensor. A miss is not an error.
func (c *ColumnIndex) Resolve(sensorName string) (int, bool) {
	column, ok := c.byName[sensorName]
	return column, ok
}

func (c *ColumnIndex) Duplicates() []string {
	return c.duplicates
}

// PopulatedColumns returns sensor columns left to right until the first blank header.
// Unlike Resolve it is not limited by the scan bound.
func PopulatedColumns(snapshot *models.SummarySnapshot, firstColumn int) []int {
	if firstColumn < 1 {
		firstColumn = DefaultFirstColumn
	}
	var columns []int
	for column := firstColumn; snapshot.HeaderAt(column) != ""; column++ {
		columns = append(columns, column)
	}
	return columns
}
