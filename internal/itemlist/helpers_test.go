package itemlist

import "time"

func testItem(id int, number string, mods ...func(*ItemData)) Item {
	data := ItemData{
		ID:        id,
		Number:    number,
		Summary:   "summary " + number,
		Status:    &Named{Name: "Open"},
		Author:    &Named{Name: "alex"},
		CreatedOn: "2023-01-02T10:00:00Z",
		UpdatedOn: "2023-01-03T10:00:00Z",
	}
	for _, mod := range mods {
		mod(&data)
	}
	return NewItem(data)
}

func withPrivate(p bool) func(*ItemData) {
	return func(d *ItemData) { d.IsPrivate = p }
}

func withStatus(s string) func(*ItemData) {
	return func(d *ItemData) { d.Status = &Named{Name: s} }
}

func withService(s string) func(*ItemData) {
	return func(d *ItemData) { d.Service = &Named{Name: s} }
}

func withCreated(ts string) func(*ItemData) {
	return func(d *ItemData) { d.CreatedOn = ts }
}

func rowIDs(rows []Row) []int {
	ids := make([]int, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func viewKeys(v View) []string {
	keys := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		keys[i] = r.Key
	}
	return keys
}

func headerIDs(v View) []string {
	ids := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		ids[i] = h.ColumnID
	}
	return ids
}

func utcColumns() []Column {
	return Columns(time.UTC)
}
