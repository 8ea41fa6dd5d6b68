package itemlist

import "time"

// Timestamp is a raw timestamp string as received from the item source.
// It is kept unformatted so that ordering works on the real instant.
type Timestamp string

// timestampLayouts lists the layouts tried when interpreting a Timestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Time parses the timestamp. Values without an offset are read as UTC.
func (ts Timestamp) Time() (time.Time, bool) {
	return ts.In(time.UTC)
}

// In parses the timestamp, reading values without an offset as wall time in
// loc. A nil loc means time.Local.
func (ts Timestamp) In(loc *time.Location) (time.Time, bool) {
	s := string(ts)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Row is the flat, display-ready projection of one Item.
type Row struct {
	ID        int
	Type      string // selection key reported on row click
	Summary   string
	IsPrivate bool
	Status    string
	Service   *string // nil when the item has no service
	Author    string
	CreatedOn Timestamp
	UpdatedOn Timestamp
}

// ServiceName returns the service label or "" when absent.
func (r Row) ServiceName() string {
	if r.Service == nil {
		return ""
	}
	return *r.Service
}

// Project maps one item to its row. A nil Entity.Data, Status or Author is a
// caller error and panics.
func Project(item Item) Row {
	data := item.Entity.Data

	var service *string
	if data.Service != nil {
		name := data.Service.Name
		service = &name
	}

	return Row{
		ID:        data.ID,
		Type:      data.Number,
		Summary:   data.Summary,
		IsPrivate: data.IsPrivate,
		Status:    data.Status.Name,
		Service:   service,
		Author:    data.Author.Name,
		CreatedOn: Timestamp(data.CreatedOn),
		UpdatedOn: Timestamp(data.UpdatedOn),
	}
}

// ProjectAll projects every item, preserving input order.
func ProjectAll(items []Item) []Row {
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = Project(item)
	}
	return rows
}

// Projector caches the projection of the most recent collection.
// The cache is keyed on collection identity: the same backing array with the
// same length yields the cached rows. Callers that edit items in place must
// pass a new slice to see the change.
type Projector struct {
	src   []Item
	rows  []Row
	valid bool
}

// Rows returns the projection of items, reusing the cached rows when items is
// the collection seen on the previous call.
func (p *Projector) Rows(items []Item) []Row {
	if p.valid && sameCollection(p.src, items) {
		return p.rows
	}
	p.src = items
	p.rows = ProjectAll(items)
	p.valid = true
	return p.rows
}

// Cached reports whether items would be served from the cache.
func (p *Projector) Cached(items []Item) bool {
	return p.valid && sameCollection(p.src, items)
}

// Reset drops the cached projection.
func (p *Projector) Reset() {
	*p = Projector{}
}

func sameCollection(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}
