package output

import (
	"sort"
	"time"

	"pointage/internal/timeutil"
	"pointage/roster"
)

// CalendarRow is one employee expanded over every day of the range, with a
// trailing totals group.
type CalendarRow struct {
	Employee roster.Employee
	Days     [][roster.FlagCount]int
	Totals   [roster.FlagCount]int
}

// Calendar is the calendar-expanded view: one six-flag column group per
// calendar day in range, chronological, zero-filled for days without data.
type Calendar struct {
	Days []time.Time
	Rows []CalendarRow
}

// BuildCalendar expands employees over [start, end]. Every employee appears,
// including those without a record in range. Zero bounds default to the
// extremes of the given facts; with no facts and no bounds the calendar is
// empty.
func BuildCalendar(employees []roster.Employee, facts []roster.Fact, start, end time.Time) Calendar {
	start, end = resolveRange(facts, start, end)
	if start.IsZero() || end.IsZero() {
		return Calendar{}
	}

	days := timeutil.RangeDays(start, end)
	dayIndex := make(map[string]int, len(days))
	for i, day := range days {
		dayIndex[day.Format("2006-01-02")] = i
	}

	byEmployee := make(map[int64][][roster.FlagCount]int, len(employees))
	for _, employee := range employees {
		byEmployee[employee.ID] = make([][roster.FlagCount]int, len(days))
	}
	for _, fact := range facts {
		cells, ok := byEmployee[fact.Employee.ID]
		if !ok {
			continue
		}
		i, ok := dayIndex[fact.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		cells[i] = fact.Flags.Counts()
	}

	sorted := append([]roster.Employee(nil), employees...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Matricule < sorted[j].Matricule
	})

	rows := make([]CalendarRow, 0, len(sorted))
	for _, employee := range sorted {
		row := CalendarRow{
			Employee: employee,
			Days:     byEmployee[employee.ID],
		}
		for _, counts := range row.Days {
			for i, count := range counts {
				row.Totals[i] += count
			}
		}
		rows = append(rows, row)
	}

	return Calendar{Days: days, Rows: rows}
}

func resolveRange(facts []roster.Fact, start, end time.Time) (time.Time, time.Time) {
	if !start.IsZero() && !end.IsZero() {
		return timeutil.StartOfDay(start), timeutil.StartOfDay(end)
	}

	var first, last time.Time
	for _, fact := range facts {
		if first.IsZero() || fact.Date.Before(first) {
			first = fact.Date
		}
		if last.IsZero() || fact.Date.After(last) {
			last = fact.Date
		}
	}

	if start.IsZero() {
		start = first
	}
	if end.IsZero() {
		end = last
	}
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}
	}
	return timeutil.StartOfDay(start), timeutil.StartOfDay(end)
}
