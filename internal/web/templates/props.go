// Package templates renders the HTML for the item table.
//
// The *.templ files are the source; run `templ generate` after editing them.
package templates

import (
	"strconv"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
)

// TableProps is the data behind the table partial.
type TableProps struct {
	ViewID   string
	View     itemlist.View
	Selected string // identifier of the last selected row, if any
}

func viewURL(viewID string) string {
	return "/views/" + viewID
}

func sortURL(viewID, columnID string) string {
	return viewURL(viewID) + "/sort/" + columnID
}

func selectURL(viewID string, rowID int) string {
	return viewURL(viewID) + "/rows/" + strconv.Itoa(rowID) + "/select"
}

func refreshURL(viewID string) string {
	return viewURL(viewID) + "/refresh"
}

func widthURL(viewID string) string {
	return viewURL(viewID) + "/width"
}

func isSelected(p TableProps, row itemlist.ViewRow) bool {
	return p.Selected != "" && row.Key == p.Selected
}

// colspan spans the "No items" cell across every visible column.
func colspan(p TableProps) string {
	return strconv.Itoa(max(len(p.View.Headers), 1))
}

func sortIndicator(d itemlist.Direction) string {
	switch d {
	case itemlist.Ascending:
		return "↑"
	case itemlist.Descending:
		return "↓"
	default:
		return ""
	}
}

func ariaSort(d itemlist.Direction) string {
	switch d {
	case itemlist.Ascending:
		return "ascending"
	case itemlist.Descending:
		return "descending"
	default:
		return "none"
	}
}
