package timeutil

import "time"

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// RangeDays returns every calendar day from from to to inclusive. An
// inverted range yields an empty slice.
func RangeDays(from, to time.Time) []time.Time {
	out := make([]time.Time, 0, 32)
	for day := StartOfDay(from); !day.After(StartOfDay(to)); day = day.AddDate(0, 0, 1) {
		out = append(out, day)
	}
	return out
}
