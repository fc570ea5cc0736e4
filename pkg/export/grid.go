package export

import "fmt"

// Grid is a table with a label column, e.g. hours down the side and weekdays across.
type Grid struct {
	Title   string
	Corner  string
	Columns []string
	Labels  []string
	Cells   [][]string
}

// Validate checks that every row has one cell per column.
func (g Grid) Validate() error {
	if len(g.Columns) == 0 {
		return fmt.Errorf("grid requires at least one column")
	}
	if len(g.Cells) != len(g.Labels) {
		return fmt.Errorf("grid has %d labels but %d rows", len(g.Labels), len(g.Cells))
	}
	for i, row := range g.Cells {
		if len(row) != len(g.Columns) {
			return fmt.Errorf("row %q has %d cells, want %d", g.Labels[i], len(row), len(g.Columns))
		}
	}
	return nil
}
