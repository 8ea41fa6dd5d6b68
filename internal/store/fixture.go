package store

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
)

// Fixture reads items from a YAML file of the form
//
//	items:
//	  - id: 1
//	    number: BUG-42
//	    summary: Login fails
//	    isPrivate: true
//	    status: {name: Open}
//	    service: {name: Auth}
//	    author: {name: alex}
//	    createdOn: "2023-01-02T10:00:00Z"
//	    updatedOn: "2023-01-03T10:00:00Z"
//
// A path ending in .csv is read with ParseCSV instead. The file is read on
// every ListItems call so edits show up on refresh.
type Fixture struct {
	path string
}

type fixtureFile struct {
	Items []itemlist.ItemData `yaml:"items"`
}

// NewFixture returns a fixture source for path.
func NewFixture(path string) *Fixture {
	return &Fixture{path: path}
}

// ListItems parses the fixture file, as CSV when its name ends in .csv.
func (f *Fixture) ListItems(ctx context.Context) ([]itemlist.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadItemsFile(f.path)
}

// Close is a no-op.
func (f *Fixture) Close() error {
	return nil
}

// ParseFixture decodes fixture YAML.
func ParseFixture(raw []byte) ([]itemlist.Item, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	items := make([]itemlist.Item, len(file.Items))
	for i, data := range file.Items {
		items[i] = itemlist.NewItem(data)
		if err := validateItem(i, items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}
