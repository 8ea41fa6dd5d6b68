package itemlist

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn is returned when a column id is not in the registry.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrRowNotFound is returned when a row id is not in the current collection.
	ErrRowNotFound = errors.New("row not found")
)

// SelectFunc receives the selection identifier (the row's Type) of a clicked row.
type SelectFunc func(identifier string)

// Header is one visible column header.
type Header struct {
	ColumnID  string
	Label     string
	Direction Direction // None unless this is the active sort column
}

// ViewRow is one body row with the cells of the visible columns.
type ViewRow struct {
	ID    int
	Key   string // selection identifier
	Cells []Cell
}

// View is a render-ready snapshot of the table. Treat it as read-only.
type View struct {
	Headers []Header
	Rows    []ViewRow
	Sort    SortState
	Width   Width
}

// Table composes projection, sorting and visibility for one rendering surface.
type Table struct {
	columns   []Column
	items     []Item
	projector Projector
	sort      SortState
	vis       *Visibility
	onSelect  SelectFunc

	sorted []Row
	view   *View
}

// NewTable creates a table over columns. onSelect may be nil.
func NewTable(columns []Column, onSelect SelectFunc) *Table {
	return &Table{
		columns:  columns,
		vis:      NewVisibility(columns),
		onSelect: onSelect,
	}
}

// SetItems replaces the collection. Rows are re-projected only when items is
// a different collection from the current one. The sort state is kept.
func (t *Table) SetItems(items []Item) bool {
	if t.projector.Cached(items) {
		return false
	}
	t.items = items
	t.projector.Rows(items)
	t.invalidate()
	return true
}

// Resize applies a new width measurement and reports whether any column
// changed visibility.
func (t *Table) Resize(w Width) bool {
	if !t.vis.Resize(w) {
		return false
	}
	t.view = nil
	return true
}

// ToggleSort applies a header click on columnID. Hidden columns can still be
// toggled by id.
func (t *Table) ToggleSort(columnID string) (SortState, error) {
	if ColumnIndex(t.columns, columnID) < 0 {
		return t.sort, fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	t.sort = t.sort.Toggle(columnID)
	t.invalidate()
	return t.sort, nil
}

// SetSort replaces the sort state directly.
func (t *Table) SetSort(state SortState) error {
	if !state.Unsorted() && ColumnIndex(t.columns, state.Column) < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, state.Column)
	}
	if state.Unsorted() {
		state = SortState{}
	}
	t.sort = state
	t.invalidate()
	return nil
}

// SortState returns the active sort.
func (t *Table) SortState() SortState {
	return t.sort
}

// Width returns the last measured width.
func (t *Table) Width() Width {
	return t.vis.Width()
}

// Columns returns the registry in display order, hidden columns included.
func (t *Table) Columns() []Column {
	return t.columns
}

// VisibleColumns returns the columns currently shown, in display order.
func (t *Table) VisibleColumns() []Column {
	visible := make([]Column, 0, len(t.columns))
	for _, c := range t.columns {
		if !t.vis.IsHidden(c.ID) {
			visible = append(visible, c)
		}
	}
	return visible
}

// Rows returns the rows in the current sort order.
func (t *Table) Rows() []Row {
	if t.sorted == nil {
		t.sorted = Sort(t.projector.Rows(t.items), t.columns, t.sort)
	}
	return t.sorted
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.projector.Rows(t.items))
}

// SelectRow handles a click on the row with id. The selection callback is
// invoked once with the row's Type, which is also returned.
func (t *Table) SelectRow(id int) (string, error) {
	for _, row := range t.projector.Rows(t.items) {
		if row.ID != id {
			continue
		}
		if t.onSelect != nil {
			t.onSelect(row.Type)
		}
		return row.Type, nil
	}
	return "", fmt.Errorf("%w: %d", ErrRowNotFound, id)
}

// View returns the headers and rows to draw. The result is reused until the
// items, the sort state or the set of hidden columns change.
func (t *Table) View() View {
	if t.view != nil {
		v := *t.view
		v.Width = t.vis.Width()
		return v
	}

	visible := t.VisibleColumns()
	headers := make([]Header, len(visible))
	for i, c := range visible {
		headers[i] = Header{
			ColumnID:  c.ID,
			Label:     c.Header,
			Direction: t.sort.DirectionOf(c.ID),
		}
	}

	sorted := t.Rows()
	rows := make([]ViewRow, len(sorted))
	for i, r := range sorted {
		cells := make([]Cell, len(visible))
		for j, c := range visible {
			cells[j] = c.Render(r)
		}
		rows[i] = ViewRow{ID: r.ID, Key: r.Type, Cells: cells}
	}

	t.view = &View{
		Headers: headers,
		Rows:    rows,
		Sort:    t.sort,
		Width:   t.vis.Width(),
	}
	return *t.view
}

func (t *Table) invalidate() {
	t.sorted = nil
	t.view = nil
}
