package itemlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareAlphanumeric(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"BUG-9", "BUG-10", -1},
		{"BUG-10", "BUG-9", 1},
		{"BUG-10", "BUG-10", 0},
		{"BUG-007", "BUG-7", 0},
		{"apple", "banana", -1},
		{"a", "a1", -1},
		{"abc", "1", -1},
		{"1", "abc", 1},
		{"", "a", -1},
		{"", "", 0},
		{"v2.10", "v2.9", 1},
		{"99999999999999999999", "100000000000000000000", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, sign(CompareAlphanumeric(tt.a, tt.b)))
		})
	}
}

func TestCompareValues(t *testing.T) {
	t.Run("timestamps compare chronologically", func(t *testing.T) {
		// Lexically "2023-01-02T09:00:00+05:00" > "2023-01-02T08:00:00Z" but it is earlier.
		a := Timestamp("2023-01-02T09:00:00+05:00")
		b := Timestamp("2023-01-02T08:00:00Z")
		assert.Equal(t, -1, sign(CompareValues(a, b)))
		assert.Equal(t, 1, sign(CompareValues(b, a)))
	})

	t.Run("unparseable timestamps fall back to text", func(t *testing.T) {
		assert.Equal(t, -1, sign(CompareValues(Timestamp("abc"), Timestamp("abd"))))
	})

	t.Run("unparseable timestamps sort after valid ones", func(t *testing.T) {
		valid := Timestamp("2023-01-01T12:00:00+05:00")
		bad := Timestamp("2023-01-01T11:x")
		earlier := Timestamp("2023-01-01T10:00:00Z")

		assert.Equal(t, -1, sign(CompareValues(valid, bad)))
		assert.Equal(t, 1, sign(CompareValues(bad, earlier)))
		assert.Equal(t, -1, sign(CompareValues(valid, earlier)))
		assert.Equal(t, -1, sign(CompareValues(earlier, bad)))
	})

	t.Run("ints", func(t *testing.T) {
		assert.Equal(t, -1, sign(CompareValues(2, 10)))
		assert.Equal(t, 0, CompareValues(3, 3))
	})

	t.Run("bools order false first", func(t *testing.T) {
		assert.Equal(t, -1, sign(CompareValues(false, true)))
		assert.Equal(t, 0, CompareValues(true, true))
	})

	t.Run("absent values sort first", func(t *testing.T) {
		assert.Equal(t, -1, sign(CompareValues(nil, "x")))
		var absent *string
		assert.Equal(t, -1, sign(CompareValues(absent, "x")))
		assert.Equal(t, 0, CompareValues("", nil))
	})
}

func TestComparePrivate(t *testing.T) {
	assert.Equal(t, -1, comparePrivate(true, false))
	assert.Equal(t, 1, comparePrivate(false, true))
	assert.Equal(t, 0, comparePrivate(true, true))
	assert.Equal(t, 0, comparePrivate(false, false))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
