package harness

import (
	"fmt"
	"strings"
)

// ParseBits converts a string of '0' and '1' characters to a bool vector.
// Underscores and spaces are ignored so long vectors can be grouped.
func ParseBits(s string) ([]bool, error) {
	bits := make([]bool, 0, len(s))
	for i, r := range s {
		switch r {
		case '0':
			bits = append(bits, false)
		case '1':
			bits = append(bits, true)
		case '_', ' ':
		default:
			return nil, fmt.Errorf("invalid bit %q at offset %d in %q", r, i, s)
		}
	}
	return bits, nil
}

// FormatBits renders a bool vector as '0' and '1' characters.
func FormatBits(bits []bool) string {
	var b strings.Builder
	b.Grow(len(bits))
	for _, v := range bits {
		if v {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// MaxExhaustiveWidth bounds exhaustive enumeration to 2^16 vectors.
const MaxExhaustiveWidth = 16

// Vectors returns every input vector of width n in counting order, the
// first element being the most significant bit.
func Vectors(n int) ([][]bool, error) {
	if n < 0 || n > MaxExhaustiveWidth {
		return nil, fmt.Errorf("cannot enumerate %d inputs (limit %d)", n, MaxExhaustiveWidth)
	}
	out := make([][]bool, 0, 1<<n)
	for v := 0; v < 1<<n; v++ {
		in := make([]bool, n)
		for i := range n {
			in[i] = v&(1<<(n-1-i)) != 0
		}
		out = append(out, in)
	}
	return out, nil
}
