package dataprocessing

import (
	"errors"
	"fmt"

	"salespulse/pkg/contracts/domain"
)

// ErrNothingToMerge is returned by MergeTables without inputs
var ErrNothingToMerge = errors.New("no tables to merge")

// MergeTables stacks tables vertically. The result's columns are the union
// of the inputs' columns in first-seen order; cells for columns a table
// lacks are Missing. A single input is returned as is.
func MergeTables(tables ...*domain.Table) (*domain.Table, error) {
	if len(tables) == 0 {
		return nil, ErrNothingToMerge
	}
	if len(tables) == 1 {
		return tables[0], nil
	}

	var columns []string
	position := make(map[string]int)
	total := 0
	for _, t := range tables {
		for _, c := range t.Columns() {
			if _, ok := position[c]; !ok {
				position[c] = len(columns)
				columns = append(columns, c)
			}
		}
		total += t.Len()
	}

	rows := make([][]domain.Value, 0, total)
	for _, t := range tables {
		cols := t.Columns()
		for i := 0; i < t.Len(); i++ {
			row := make([]domain.Value, len(columns))
			for j, c := range cols {
				row[position[c]] = t.At(i, j)
			}
			rows = append(rows, row)
		}
	}

	merged, err := domain.NewTable(columns, rows)
	if err != nil {
		return nil, fmt.Errorf("merge tables: %w", err)
	}
	return merged, nil
}
