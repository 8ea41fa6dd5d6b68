package store

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// fieldSpec describes one CSV column of an item export.
type fieldSpec struct {
	Name     string // header name, matched case-insensitively
	Required bool   // column must exist in the header
}

// itemFields are the columns read from a CSV export. Extra columns are ignored.
var itemFields = []fieldSpec{
	{Name: "id", Required: true},
	{Name: "number", Required: true},
	{Name: "summary"},
	{Name: "isPrivate"},
	{Name: "status", Required: true},
	{Name: "service"},
	{Name: "author", Required: true},
	{Name: "createdOn"},
	{Name: "updatedOn"},
}

// headerIndex maps lowercased header names to their column position.
type headerIndex map[string]int

func makeHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(cleanCell(h))] = i
	}
	return idx
}

// get returns the cleaned cell for name, or "" when the column is absent.
func (h headerIndex) get(row []string, name string) string {
	i, ok := h[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return cleanCell(row[i])
}

// ReadItemsFile loads items from a fixture file. Files ending in .csv are read
// as CSV exports, everything else as YAML.
func ReadItemsFile(path string) ([]itemlist.Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ParseCSV(bytes.NewReader(raw))
	}
	return ParseFixture(raw)
}

// ParseCSV reads items from a CSV export with a header row. A leading UTF-8
// byte order mark is skipped. Empty service cells mean "no service".
func ParseCSV(r io.Reader) ([]itemlist.Item, error) {
	cr := csv.NewReader(skipBOM(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true // spreadsheet exports write ="0042" unquoted

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv header: %w", err)
	}

	idx := makeHeaderIndex(header)
	var missing []string
	for _, f := range itemFields {
		if _, ok := idx[strings.ToLower(f.Name)]; f.Required && !ok {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	var items []itemlist.Item
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if isBlankRow(row) {
			continue
		}

		item, err := itemFromRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func itemFromRow(row []string, idx headerIndex) (itemlist.Item, error) {
	id, err := strconv.Atoi(idx.get(row, "id"))
	if err != nil {
		return itemlist.Item{}, fmt.Errorf("invalid id %q", idx.get(row, "id"))
	}

	private, ok := parseBool(idx.get(row, "isPrivate"))
	if !ok {
		return itemlist.Item{}, fmt.Errorf("invalid isPrivate %q", idx.get(row, "isPrivate"))
	}

	var service *string
	if s := idx.get(row, "service"); s != "" {
		service = strPtr(s)
	}

	return toItem(id,
		idx.get(row, "number"),
		idx.get(row, "summary"),
		private,
		idx.get(row, "status"),
		service,
		idx.get(row, "author"),
		idx.get(row, "createdOn"),
		idx.get(row, "updatedOn"),
	), nil
}

// cleanCell trims whitespace and strips spreadsheet formula wrappers (="...").
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	}
	return s
}

// parseBool accepts true/false, yes/no, t/f, y/n and 1/0. Empty is false.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "", "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}
