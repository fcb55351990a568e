package importer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"pointage/internal/timeutil"
)

// DateOrder selects how ambiguous numeric dates like 03/04/2024 are read.
type DateOrder int

const (
	DayFirst DateOrder = iota
	MonthFirst
)

// ParseDateOrder maps configuration text to a DateOrder. Empty input selects
// DayFirst.
func ParseDateOrder(value string) (DateOrder, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "dmy":
		return DayFirst, nil
	case "mdy":
		return MonthFirst, nil
	default:
		return DayFirst, fmt.Errorf("unsupported date order %q (supported: dmy|mdy)", value)
	}
}

// Unpadded layouts also accept zero-padded values, so "2/1/2006" matches
// both 02/01/2024 and 2/1/2024. First matching layout wins; the order
// decides which side of an ambiguous numeric date is the day.
var (
	dayFirstLayouts = []string{
		"2/1/2006",
		"1/2/2006",
		"2006-1-2",
		"2-1-2006",
		"1-2-2006",
	}
	monthFirstLayouts = []string{
		"1/2/2006",
		"2/1/2006",
		"2006-1-2",
		"1-2-2006",
		"2-1-2006",
	}
)

// ParseHeaderDate resolves a header token to a calendar date. Failure means
// the token is not a date, never an error.
func ParseHeaderDate(token string, order DateOrder) (time.Time, bool) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return time.Time{}, false
	}

	layouts := dayFirstLayouts
	if order == MonthFirst {
		layouts = monthFirstLayouts
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return timeutil.StartOfDay(parsed), true
		}
	}
	return time.Time{}, false
}

var (
	compactDateRe = regexp.MustCompile(`\d{8}`)
	groupedDateRe = regexp.MustCompile(`(\d{2})[-_. ]?(\d{2})[-_. ]?(\d{4})`)
)

// DateFromFilename extracts a file-level date from the base name: an 8-digit
// YYYYMMDD token, or a 2-2-4 grouped token read as day-month-year. When no
// token parses, fallback (the processing date) is returned.
func DateFromFilename(path string, fallback time.Time) time.Time {
	base := filepath.Base(path)

	if token := compactDateRe.FindString(base); token != "" {
		if parsed, err := time.ParseInLocation("20060102", token, time.Local); err == nil {
			return timeutil.StartOfDay(parsed)
		}
	}

	if match := groupedDateRe.FindStringSubmatch(base); match != nil {
		token := match[1] + "/" + match[2] + "/" + match[3]
		if parsed, err := time.ParseInLocation("02/01/2006", token, time.Local); err == nil {
			return timeutil.StartOfDay(parsed)
		}
	}

	return timeutil.StartOfDay(fallback)
}
