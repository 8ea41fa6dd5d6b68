package itemlist

import "maps"

// Width is the measured width of the rendering surface.
// The zero value is Unmeasured.
type Width struct {
	value float64
	known bool
}

// Unmeasured is the width before the first measurement arrives.
var Unmeasured = Width{}

// Measured returns a known width. Negative values are clamped to zero.
func Measured(w float64) Width {
	if w < 0 {
		w = 0
	}
	return Width{value: w, known: true}
}

// Value returns the width and whether it has been measured.
func (w Width) Value() (float64, bool) {
	return w.value, w.known
}

// Hidden returns the ids of the columns hidden at width w. A column is hidden
// iff it has a threshold, w is known, and w is strictly less than the
// threshold. Thresholds are independent per column.
func Hidden(columns []Column, w Width) map[string]bool {
	hidden := make(map[string]bool)
	if !w.known {
		return hidden
	}
	for _, c := range columns {
		if c.HideBelow > 0 && w.value < c.HideBelow {
			hidden[c.ID] = true
		}
	}
	return hidden
}

// Visibility tracks which columns are hidden for the last measured width.
type Visibility struct {
	columns []Column
	width   Width
	hidden  map[string]bool
}

// NewVisibility starts unmeasured with every column visible.
func NewVisibility(columns []Column) *Visibility {
	return &Visibility{
		columns: columns,
		hidden:  Hidden(columns, Unmeasured),
	}
}

// Resize records a new measurement. It recomputes only when the width
// changed and reports whether the hidden set changed.
func (v *Visibility) Resize(w Width) bool {
	if w == v.width {
		return false
	}
	v.width = w
	next := Hidden(v.columns, w)
	if maps.Equal(next, v.hidden) {
		return false
	}
	v.hidden = next
	return true
}

// Width returns the last measurement.
func (v *Visibility) Width() Width {
	return v.width
}

// IsHidden reports whether the column with id is hidden.
func (v *Visibility) IsHidden(id string) bool {
	return v.hidden[id]
}

// HiddenSet returns a copy of the hidden column ids.
func (v *Visibility) HiddenSet() map[string]bool {
	return maps.Clone(v.hidden)
}
