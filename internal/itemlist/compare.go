package itemlist

import (
	"cmp"
	"fmt"
	"strings"
)

// CompareValues is the default column comparator. Timestamps compare by
// instant, with unparseable ones after every valid one, integers and booleans by value (false first), and
// everything else alphanumerically on its string form.
func CompareValues(a, b any) int {
	switch x := a.(type) {
	case Timestamp:
		if y, ok := b.(Timestamp); ok {
			return compareTimestamps(x, y)
		}
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return compareBools(x, y)
		}
	}
	return CompareAlphanumeric(stringify(a), stringify(b))
}

// CompareAlphanumeric orders strings so that embedded numbers compare by
// value: "BUG-9" sorts before "BUG-10". Digit runs compare numerically, other
// runs lexically, and a non-digit run sorts before a digit run. When every
// shared run ties, the string with fewer runs sorts first.
func CompareAlphanumeric(a, b string) int {
	ac, bc := splitRuns(a), splitRuns(b)
	for i := 0; i < len(ac) && i < len(bc); i++ {
		x, y := ac[i], bc[i]
		xd, yd := isDigits(x), isDigits(y)
		switch {
		case xd && yd:
			if c := compareDigits(x, y); c != 0 {
				return c
			}
		case xd:
			return 1
		case yd:
			return -1
		default:
			if c := strings.Compare(x, y); c != 0 {
				return c
			}
		}
	}
	return cmp.Compare(len(ac), len(bc))
}

// compareTimestamps ranks every parseable timestamp before every unparseable
// one so the order stays total. Unparseable values compare as text.
func compareTimestamps(a, b Timestamp) int {
	at, aok := a.Time()
	bt, bok := b.Time()
	switch {
	case aok && bok:
		return at.Compare(bt)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return CompareAlphanumeric(string(a), string(b))
	}
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// splitRuns cuts s into alternating digit and non-digit runs.
func splitRuns(s string) []string {
	var runs []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || isDigit(s[i]) != isDigit(s[i-1]) {
			if i > start {
				runs = append(runs, s[start:i])
			}
			start = i
		}
	}
	return runs
}

// compareDigits compares two digit runs by numeric value without overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	return s != "" && isDigit(s[0])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case Timestamp:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
