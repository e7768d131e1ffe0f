package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, ok := Parse(s)
	require.Truef(t, ok, "parse date %q", s)
	return d
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-03-13", "2024-03-11"}, // Wednesday
		{"2024-03-11", "2024-03-11"}, // Monday maps to itself
		{"2024-03-17", "2024-03-11"}, // Sunday belongs to the preceding Monday
		{"2024-03-16", "2024-03-11"}, // Saturday
		{"2024-01-03", "2024-01-01"},
		{"2025-01-01", "2024-12-30"}, // year rollover
		{"2024-03-01", "2024-02-26"}, // leap-year February
	}
	for _, tt := range tests {
		got := Format(WeekStart(mustDate(t, tt.in)))
		assert.Equalf(t, tt.want, got, "WeekStart(%s)", tt.in)
	}
}

func TestMonthStart(t *testing.T) {
	assert.Equal(t, "2024-05-01", Format(MonthStart(mustDate(t, "2024-05-31"))))
	assert.Equal(t, "2024-05-01", Format(MonthStart(mustDate(t, "2024-05-01"))))
	assert.Equal(t, "2024-02-01", Format(MonthStart(mustDate(t, "2024-02-29"))))
}

func TestPrevMonthStart_YearRollover(t *testing.T) {
	assert.Equal(t, "2024-12-01", Format(PrevMonthStart(mustDate(t, "2025-01-15"))))
	assert.Equal(t, "2025-02-01", Format(PrevMonthStart(mustDate(t, "2025-03-31"))))
}

func TestParse(t *testing.T) {
	d, ok := Parse("2024-03-13")
	require.True(t, ok)
	assert.Equal(t, 12, d.Hour())
	assert.Equal(t, time.Local, d.Location())

	d, ok = Parse("2024-03-13T23:59:00Z")
	require.True(t, ok)
	assert.Equal(t, "2024-03-13", Format(d))

	for _, bad := range []string{"", "  ", "not-a-date", "2024-13-01", "2024-02-30", "13/03/2024"} {
		_, ok := Parse(bad)
		assert.Falsef(t, ok, "Parse(%q) should fail", bad)
	}
}

func TestAddDays_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	orig := time.Local
	time.Local = loc
	defer func() { time.Local = orig }()

	// 2024-03-10 is the US spring-forward day.
	start := mustDate(t, "2024-03-09")
	for i, want := range []string{"2024-03-09", "2024-03-10", "2024-03-11", "2024-03-12"} {
		assert.Equal(t, want, Format(AddDays(start, i)))
	}
	assert.Equal(t, "2024-03-04", Format(WeekStart(mustDate(t, "2024-03-10"))))
	// 2024-11-03 is the fall-back day and a Sunday.
	assert.Equal(t, "2024-10-28", Format(WeekStart(mustDate(t, "2024-11-03"))))
	assert.Equal(t, "2024-11-04", Format(WeekStart(mustDate(t, "2024-11-05"))))
}

func TestKeys(t *testing.T) {
	k, ok := WeekStartKey("2024-03-13")
	require.True(t, ok)
	assert.Equal(t, "2024-03-11", k)

	k, ok = MonthStartKey("2024-05-17")
	require.True(t, ok)
	assert.Equal(t, "2024-05-01", k)

	_, ok = MonthStartKey("garbage")
	assert.False(t, ok)

	assert.Equal(t, "2024-05", MonthKey(mustDate(t, "2024-05-17")))
	assert.True(t, SameMonth(mustDate(t, "2024-05-01"), mustDate(t, "2024-05-31")))
	assert.False(t, SameMonth(mustDate(t, "2024-05-31"), mustDate(t, "2024-06-01")))
	assert.False(t, SameMonth(mustDate(t, "2023-05-01"), mustDate(t, "2024-05-01")))
}
