package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Formats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"ISO canonical", "2026-08-31", date(2026, 8, 31)},
		{"slash four-digit year", "8/31/2026", date(2026, 8, 31)},
		{"slash two-digit year recent", "8/31/26", date(2026, 8, 31)},
		{"slash two-digit year legacy", "3/1/98", date(1998, 3, 1)},
		{"dash month first", "8-31-26", date(2026, 8, 31)},
		{"two-digit year boundary low", "1/1/49", date(2049, 1, 1)},
		{"two-digit year boundary high", "1/1/50", date(1950, 1, 1)},
		{"padded whitespace", "  2026-08-31 ", date(2026, 8, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			require.True(t, ok, "expected %q to parse", tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a date",
		"2026-08",
		"8/31",
		"13/1/2026",
		"2/31/2026",
		"0/10/2026",
		"1/0/2026",
		"a/b/c",
		"2026-08-31-01",
	}

	for _, input := range inputs {
		_, ok := Parse(input)
		assert.False(t, ok, "expected %q not to parse", input)
	}
}

func TestDaysBetween(t *testing.T) {
	a := date(2026, 8, 1)
	b := date(2026, 8, 31)

	assert.Equal(t, 30, DaysBetween(a, b))
	assert.Equal(t, -30, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))

	// Time-of-day must not shift the day count.
	noon := time.Date(2026, 8, 31, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysBetween(a, noon))
}

func TestMidnight(t *testing.T) {
	noon := time.Date(2026, 8, 31, 12, 30, 45, 999, time.UTC)
	assert.Equal(t, date(2026, 8, 31), Midnight(noon))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
