package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemsCSV = "\xEF\xBB\xBFID,Number,Summary,isPrivate,Status,Service,Author,createdOn,updatedOn,extra\n" +
	`1,BUG-42,Login fails,yes,Open,Auth,alex,2023-01-02T10:00:00Z,2023-01-03T10:00:00Z,x` + "\n" +
	`2,="0042",Export is slow,,Closed,,sam,2023-02-01,2023-02-02,` + "\n" +
	",,,,,,,,,\n"

func TestParseCSV(t *testing.T) {
	items, err := ParseCSV(strings.NewReader(itemsCSV))
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0].Entity.Data
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "BUG-42", first.Number)
	assert.True(t, first.IsPrivate)
	require.NotNil(t, first.Service)
	assert.Equal(t, "Auth", first.Service.Name)
	assert.Equal(t, "alex", first.Author.Name)

	second := items[1].Entity.Data
	assert.Equal(t, "0042", second.Number, "formula wrapper is stripped")
	assert.False(t, second.IsPrivate)
	assert.Nil(t, second.Service)
	assert.Equal(t, "2023-02-01", second.CreatedOn)
}

func TestParseCSV_MissingColumns(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("id,number,summary\n1,BUG-1,x\n"))

	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.ErrorContains(t, err, "status, author")
}

func TestParseCSV_BadValues(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"non-numeric id", "abc,BUG-1,Open,alex,no", `line 2: invalid id "abc"`},
		{"unknown boolean", "1,BUG-1,Open,alex,maybe", `line 2: invalid isPrivate "maybe"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader("id,number,status,author,isPrivate\n" + tt.row + "\n"))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseCSV_Empty(t *testing.T) {
	items, err := ParseCSV(strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFixture_CSVByExtension(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "export.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte(itemsCSV), 0o600))

	items, err := NewFixture(csvPath).ListItems(context.Background())

	require.NoError(t, err)
	assert.Len(t, items, 2)
}
