package itemlist

import "time"

// Column identifiers, in display order.
const (
	ColType      = "type"
	ColSummary   = "summary"
	ColIsPrivate = "isPrivate"
	ColStatus    = "status"
	ColService   = "service"
	ColAuthor    = "author"
	ColCreatedOn = "createdOn"
	ColUpdatedOn = "updatedOn"
)

// DateLayout is the display format for Created and Updated (DD/MM/YYYY HH:mm:ss).
const DateLayout = "02/01/2006 15:04:05"

// InvalidDate is shown for timestamps that cannot be parsed.
const InvalidDate = "Invalid date"

// CellKind tells a renderer how to paint a cell.
type CellKind int

const (
	CellText   CellKind = iota // plain text
	CellCheck                  // affirmative glyph
	CellCross                  // negative glyph
	CellTagged                 // text preceded by an icon badge
)

// Cell is the rendered content of one table cell.
type Cell struct {
	Kind CellKind
	Text string
}

// Column declares one table column. Columns are static and never hold data.
type Column struct {
	ID     string
	Header string

	// Value reads the column's value from a row.
	Value func(Row) any

	// Cell renders the value. Nil renders the raw value as text.
	Cell func(any) Cell

	// Compare orders two values. Nil uses CompareValues.
	Compare func(a, b any) int

	// HideBelow hides the column while the measured width is strictly less
	// than this value. Zero means the column is always shown.
	HideBelow float64
}

// Render produces the cell for row.
func (c Column) Render(row Row) Cell {
	v := c.Value(row)
	if c.Cell != nil {
		return c.Cell(v)
	}
	return Cell{Kind: CellText, Text: stringify(v)}
}

// compare orders two rows by this column.
func (c Column) compare(a, b Row) int {
	if c.Compare != nil {
		return c.Compare(c.Value(a), c.Value(b))
	}
	return CompareValues(c.Value(a), c.Value(b))
}

// Columns returns the item table columns in display order. Dates are shown in
// loc; a nil loc means time.Local.
func Columns(loc *time.Location) []Column {
	if loc == nil {
		loc = time.Local
	}
	dateCell := func(v any) Cell {
		ts, _ := v.(Timestamp)
		return Cell{Kind: CellText, Text: FormatDate(ts, loc)}
	}

	return []Column{
		{
			ID:     ColType,
			Header: "Type #",
			Value:  func(r Row) any { return r.Type },
			Cell:   func(v any) Cell { return Cell{Kind: CellTagged, Text: stringify(v)} },
		},
		{
			ID:        ColSummary,
			Header:    "Summary",
			Value:     func(r Row) any { return r.Summary },
			HideBelow: 400,
		},
		{
			ID:     ColIsPrivate,
			Header: "Private",
			Value:  func(r Row) any { return r.IsPrivate },
			Cell: func(v any) Cell {
				if b, _ := v.(bool); b {
					return Cell{Kind: CellCheck}
				}
				return Cell{Kind: CellCross}
			},
			Compare: comparePrivate,
		},
		{
			ID:     ColStatus,
			Header: "Status",
			Value:  func(r Row) any { return r.Status },
		},
		{
			ID:        ColService,
			Header:    "Service",
			Value:     func(r Row) any { return r.ServiceName() },
			HideBelow: 768,
		},
		{
			ID:        ColAuthor,
			Header:    "Author",
			Value:     func(r Row) any { return r.Author },
			HideBelow: 600,
		},
		{
			ID:        ColCreatedOn,
			Header:    "Created",
			Value:     func(r Row) any { return r.CreatedOn },
			Cell:      dateCell,
			HideBelow: 1024,
		},
		{
			ID:        ColUpdatedOn,
			Header:    "Updated",
			Value:     func(r Row) any { return r.UpdatedOn },
			Cell:      dateCell,
			HideBelow: 800,
		},
	}
}

// comparePrivate ranks private rows before public ones. Equal flags tie.
func comparePrivate(a, b any) int {
	x, _ := a.(bool)
	y, _ := b.(bool)
	switch {
	case x && !y:
		return -1
	case !x && y:
		return 1
	default:
		return 0
	}
}

// FormatDate renders ts in loc using DateLayout. Timestamps without an offset
// are already wall time in loc and are shown unchanged. A nil loc means
// time.Local.
func FormatDate(ts Timestamp, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, ok := ts.In(loc)
	if !ok {
		return InvalidDate
	}
	return t.In(loc).Format(DateLayout)
}

// ColumnIndex returns the position of the column with id, or -1.
func ColumnIndex(columns []Column, id string) int {
	for i, c := range columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}
