package aggregation

import (
	"time"
)

// LabelLayout is the date layout used for day and week-start labels.
const LabelLayout = "2006-01-02"

// BucketFor truncates a timestamp to the granularity boundary, in UTC.
// Example: BucketFor(10:35:42, 1*time.Minute) → 10:35:00
func BucketFor(t time.Time, granularity time.Duration) time.Time {
	return t.UTC().Truncate(granularity)
}

// DayLabel returns the UTC calendar day of t as YYYY-MM-DD.
func DayLabel(t time.Time) string {
	return BucketFor(t, 24*time.Hour).Format(LabelLayout)
}

// WeekStart returns UTC midnight of the Monday starting t's week.
func WeekStart(t time.Time) time.Time {
	day := BucketFor(t, 24*time.Hour)
	offset := (int(day.Weekday()) + 6) % 7 // Monday → 0, Sunday → 6
	return day.AddDate(0, 0, -offset)
}

// WeekStartLabel returns the Monday-anchored week start of t as YYYY-MM-DD.
func WeekStartLabel(t time.Time) string {
	return WeekStart(t).Format(LabelLayout)
}
