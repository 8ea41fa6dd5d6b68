package itemlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumns_Registry(t *testing.T) {
	cols := utcColumns()

	ids := make([]string, len(cols))
	thresholds := make(map[string]float64)
	for i, c := range cols {
		ids[i] = c.ID
		if c.HideBelow > 0 {
			thresholds[c.Header] = c.HideBelow
		}
	}

	assert.Equal(t, []string{
		ColType, ColSummary, ColIsPrivate, ColStatus,
		ColService, ColAuthor, ColCreatedOn, ColUpdatedOn,
	}, ids)
	assert.Equal(t, map[string]float64{
		"Summary": 400,
		"Author":  600,
		"Service": 768,
		"Updated": 800,
		"Created": 1024,
	}, thresholds)
}

func TestHidden(t *testing.T) {
	cols := utcColumns()

	tests := []struct {
		name  string
		width Width
		want  map[string]bool
	}{
		{"unmeasured hides nothing", Unmeasured, map[string]bool{}},
		{"wide hides nothing", Measured(1280), map[string]bool{}},
		{"at threshold stays visible", Measured(1024), map[string]bool{}},
		{"just below created", Measured(1023), map[string]bool{ColCreatedOn: true}},
		{"900", Measured(900), map[string]bool{ColCreatedOn: true}},
		{"700", Measured(700), map[string]bool{ColCreatedOn: true, ColUpdatedOn: true, ColService: true}},
		{"500", Measured(500), map[string]bool{ColCreatedOn: true, ColUpdatedOn: true, ColService: true, ColAuthor: true}},
		{"zero", Measured(0), map[string]bool{ColCreatedOn: true, ColUpdatedOn: true, ColService: true, ColAuthor: true, ColSummary: true}},
		{"negative clamps to zero", Measured(-5), map[string]bool{ColCreatedOn: true, ColUpdatedOn: true, ColService: true, ColAuthor: true, ColSummary: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Hidden(cols, tt.width))
		})
	}
}

func TestVisibility_Resize900To700(t *testing.T) {
	v := NewVisibility(utcColumns())

	assert.True(t, v.Resize(Measured(900)))
	before := v.HiddenSet()

	assert.True(t, v.Resize(Measured(700)))
	after := v.HiddenSet()

	var newlyHidden []string
	for id := range after {
		if !before[id] {
			newlyHidden = append(newlyHidden, id)
		}
	}
	assert.ElementsMatch(t, []string{ColService, ColUpdatedOn}, newlyHidden)
	for id := range before {
		assert.True(t, after[id], "%s should stay hidden", id)
	}
}

func TestVisibility_ResizeReportsChanges(t *testing.T) {
	v := NewVisibility(utcColumns())

	assert.False(t, v.Resize(Unmeasured), "same width is a no-op")
	assert.False(t, v.Resize(Measured(2000)), "nothing hidden before or after")
	assert.False(t, v.Resize(Measured(2000)))
	assert.True(t, v.Resize(Measured(1000)))
	assert.False(t, v.Resize(Measured(950)), "hidden set unchanged")

	w, ok := v.Width().Value()
	assert.True(t, ok)
	assert.Equal(t, 950.0, w)
	assert.True(t, v.IsHidden(ColCreatedOn))
	assert.False(t, v.IsHidden(ColType))
}

func TestVisibility_HiddenSetIsCopy(t *testing.T) {
	v := NewVisibility(utcColumns())
	v.Resize(Measured(100))

	set := v.HiddenSet()
	set[ColType] = true

	assert.False(t, v.IsHidden(ColType))
}
