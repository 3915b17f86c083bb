package game

import "testing"

func TestFormatYen(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "¥0"},
		{999, "¥999"},
		{1000, "¥1,000"},
		{5_000_000, "¥5,000,000"},
		{-77_500, "-¥77,500"},
		{1234.9, "¥1,234"},
	}
	for _, tc := range tests {
		if got := FormatYen(tc.in); got != tc.want {
			t.Fatalf("FormatYen(%v) = %q want %q", tc.in, got, tc.want)
		}
	}
}
