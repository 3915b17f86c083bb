package game

import "github.com/dustin/go-humanize"

// FormatYen renders whole yen with thousands separators, sign first: -¥1,200.
func FormatYen(v float64) string {
	n := int64(v)
	if n < 0 {
		return "-¥" + humanize.Comma(-n)
	}
	return "¥" + humanize.Comma(n)
}
