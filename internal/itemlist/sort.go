package itemlist

import (
	"fmt"
	"slices"
	"strings"
)

// Direction is the sort direction of the active column.
type Direction int

const (
	None Direction = iota
	Ascending
	Descending
)

// String returns "asc", "desc" or "".
func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return ""
	}
}

// ParseDirection reads "asc" or "desc" (case-insensitive). Anything else is None.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending
	case "desc", "descending":
		return Descending
	default:
		return None
	}
}

// SortState is the single active sort. The zero value is unsorted.
type SortState struct {
	Column    string
	Direction Direction
}

// Unsorted reports whether no column is active.
func (s SortState) Unsorted() bool {
	return s.Direction == None || s.Column == ""
}

// Toggle returns the state after a header click on column.
//
//	unsorted       -> ascending(column)
//	ascending(c)   -> descending(c)
//	descending(c)  -> unsorted
//	any state on another column -> ascending(column)
func (s SortState) Toggle(column string) SortState {
	if s.Unsorted() || s.Column != column {
		return SortState{Column: column, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortState{Column: column, Direction: Descending}
	}
	return SortState{}
}

// DirectionOf returns the direction shown for column.
func (s SortState) DirectionOf(column string) Direction {
	if s.Unsorted() || s.Column != column {
		return None
	}
	return s.Direction
}

func (s SortState) String() string {
	if s.Unsorted() {
		return "unsorted"
	}
	return fmt.Sprintf("%s:%s", s.Column, s.Direction)
}

// ParseSortState reads "column" or "column:desc". An empty string is unsorted.
func ParseSortState(s string) SortState {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortState{}
	}
	col, dir, found := strings.Cut(s, ":")
	d := Ascending
	if found {
		d = ParseDirection(dir)
		if d == None {
			d = Ascending
		}
	}
	return SortState{Column: strings.TrimSpace(col), Direction: d}
}

// Sort returns rows ordered by state. The input slice is never reordered.
// Ties keep their original relative order in both directions. An unsorted
// state, or one naming a column that is not in columns, returns the rows in
// their original order.
func Sort(rows []Row, columns []Column, state SortState) []Row {
	out := slices.Clone(rows)
	if state.Unsorted() {
		return out
	}
	idx := ColumnIndex(columns, state.Column)
	if idx < 0 {
		return out
	}
	col := columns[idx]
	desc := state.Direction == Descending

	slices.SortStableFunc(out, func(a, b Row) int {
		c := col.compare(a, b)
		if desc {
			return -c
		}
		return c
	})
	return out
}
