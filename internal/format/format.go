// Package format renders gem values and counts for display.
package format

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Value abbreviates large gem values: 1.5M, 250K, 999. Halves round up,
// so 2500 is 3K.
func Value(v int64) string {
	if v < 0 {
		return "-" + magnitude(uint64(-(v+1))+1)
	}
	return magnitude(uint64(v))
}

// magnitude works on uint64 so math.MinInt64 has a representable absolute value
func magnitude(u uint64) string {
	switch {
	case u >= 1_000_000:
		tenths := u / 100_000
		if u%100_000 >= 50_000 {
			tenths++
		}
		return fmt.Sprintf("%d.%dM", tenths/10, tenths%10)
	case u >= 1_000:
		k := u / 1_000
		if u%1_000 >= 500 {
			k++
		}
		return strconv.FormatUint(k, 10) + "K"
	default:
		return humanize.Comma(int64(u))
	}
}

// Signed is Value with an explicit plus sign for non-negative numbers
func Signed(v int64) string {
	if v >= 0 {
		return "+" + Value(v)
	}
	return Value(v)
}

// Count groups digits with commas: 12,345
func Count(n int64) string {
	return humanize.Comma(n)
}

// Percent renders a percentage with one decimal
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
