package aggregation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBucketFor(t *testing.T) {
	ts := time.Date(2026, 2, 11, 10, 35, 42, 123456789, time.UTC)

	require.Equal(t,
		time.Date(2026, 2, 11, 10, 35, 0, 0, time.UTC),
		BucketFor(ts, time.Minute),
	)
	require.Equal(t,
		time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC),
		BucketFor(ts, 24*time.Hour),
	)
}

func TestDayLabel_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	// 2025-01-20 20:00 at UTC-8 is already 2025-01-21 in UTC.
	require.Equal(t, "2025-01-21", DayLabel(time.Date(2025, 1, 20, 20, 0, 0, 0, loc)))
}

func TestWeekStartLabel_MondayAnchored(t *testing.T) {
	tests := []struct {
		day  time.Time
		want string
	}{
		{day: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), want: "2025-01-20"},   // Monday
		{day: time.Date(2025, 1, 22, 13, 0, 0, 0, time.UTC), want: "2025-01-20"},  // Wednesday
		{day: time.Date(2025, 1, 26, 23, 59, 0, 0, time.UTC), want: "2025-01-20"}, // Sunday
		{day: time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC), want: "2025-01-27"},   // next Monday
		{day: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), want: "2024-12-30"},   // across year boundary
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, WeekStartLabel(tc.day), "day %s", tc.day)
	}
}
