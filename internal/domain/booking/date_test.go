package booking

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", d.String())

	_, err = ParseDate("15/03/2026")
	assert.Error(t, err)

	_, err = ParseDate("2026-13-01")
	assert.Error(t, err)
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := mustDate(t, "2026-03-15")

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-15"`, string(raw))

	var back Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Equal(d.Time))
}

func TestDateOfDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	d := DateOf(time.Date(2026, 3, 15, 23, 45, 1, 0, loc))
	assert.Equal(t, "2026-03-15", d.String())
	assert.Equal(t, time.UTC, d.Location())
}

func TestDaysUntil(t *testing.T) {
	a := mustDate(t, "2026-03-15")
	b := mustDate(t, "2026-03-18")

	assert.Equal(t, 3, a.DaysUntil(b))
	assert.Equal(t, -3, b.DaysUntil(a))
	assert.Equal(t, 0, a.DaysUntil(a))
}

func TestBookingDays(t *testing.T) {
	b := Booking{
		StartDate: mustDate(t, "2026-03-15"),
		EndDate:   mustDate(t, "2026-03-17"),
	}
	assert.Equal(t, 3, b.Days(), "inclusive bounds: 15th, 16th, 17th")

	single := Booking{
		StartDate: mustDate(t, "2026-03-15"),
		EndDate:   mustDate(t, "2026-03-15"),
	}
	assert.Equal(t, 1, single.Days())
}

func TestBookingCovers(t *testing.T) {
	b := Booking{
		StartDate: mustDate(t, "2026-03-15"),
		EndDate:   mustDate(t, "2026-03-17"),
	}

	assert.True(t, b.Covers(mustDate(t, "2026-03-15")), "start day is covered")
	assert.True(t, b.Covers(mustDate(t, "2026-03-16")))
	assert.True(t, b.Covers(mustDate(t, "2026-03-17")), "end day is covered")
	assert.False(t, b.Covers(mustDate(t, "2026-03-14")))
	assert.False(t, b.Covers(mustDate(t, "2026-03-18")))
}

func TestBookingOverlaps(t *testing.T) {
	b := Booking{
		StartDate: mustDate(t, "2026-03-10"),
		EndDate:   mustDate(t, "2026-03-15"),
	}

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"disjoint before", "2026-03-01", "2026-03-09", false},
		{"disjoint after", "2026-03-16", "2026-03-20", false},
		{"touching at start counts", "2026-03-05", "2026-03-10", true},
		{"touching at end counts", "2026-03-15", "2026-03-20", true},
		{"contained", "2026-03-11", "2026-03-14", true},
		{"containing", "2026-03-01", "2026-03-20", true},
		{"partial overlap", "2026-03-13", "2026-03-18", true},
		{"identical", "2026-03-10", "2026-03-15", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Overlaps(mustDate(t, tt.start), mustDate(t, tt.end))
			assert.Equal(t, tt.want, got)
		})
	}
}
