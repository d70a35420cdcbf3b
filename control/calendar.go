/*
calendar.go - Month classification and expected-hours calculation

PURPOSE:
  Classifies every date of a month as weekend / holiday / workable, and
  derives the expected working hours for the classified month. Both are
  pure functions: same inputs, same output, no clock access.

CLASSIFICATION RULES:
  - weekend:  Saturday or Sunday
  - holiday:  matches the holiday calendar (recurring national table or
              explicit extra dates)
  - workable: neither weekend nor holiday

  A date can be both weekend and holiday; workable requires neither.

EXPECTED HOURS:
  previstas = workable-day-count x daily shift length, rounded to one
  decimal. A zero/unset shift yields zero, never an error: reports for
  unconfigured users still render.

SEE ALSO:
  - day.go: fills real hours into the skeleton produced here
  - compensation.go: consumes the workable flags
*/
package control

import (
	"time"
)

// ClassifyMonth returns one skeleton DayRecord per date of the month, in
// chronological order. Real and calculated fields are zero; only the
// classification flags are set. Month length and leap years come straight
// from the time package.
func ClassifyMonth(year int, month time.Month, cal HolidayCalendar) []DayRecord {
	if cal == nil {
		cal = NoHolidays{}
	}

	period := MonthPeriod(year, month)
	dates := period.Days()

	days := make([]DayRecord, 0, len(dates))
	for _, date := range dates {
		weekend := date.IsWeekend()
		holiday := cal.IsHoliday(date)
		days = append(days, DayRecord{
			Date:       date,
			IsWeekend:  weekend,
			IsHoliday:  holiday,
			IsWorkable: !weekend && !holiday,
		})
	}
	return days
}

// WorkableDayCount counts days flagged workable, ignoring absences.
func WorkableDayCount(days []DayRecord) int {
	n := 0
	for _, d := range days {
		if d.IsWorkable {
			n++
		}
	}
	return n
}

// ExpectedHours is workable-day-count x daily shift length, rounded to one
// decimal. A zero shift means zero expected hours.
func ExpectedHours(workableDays int, shift Hours) Hours {
	if workableDays <= 0 || !shift.IsPositive() {
		return ZeroHours()
	}
	return HoursFromInt(workableDays).Mul(shift.Value).Round1()
}

// ExpectedHoursUpTo restricts the expected-hours product to workable days on
// or before the cutoff. Used for "as of today" compliance mid-month.
func ExpectedHoursUpTo(days []DayRecord, cutoff TimePoint, shift Hours) Hours {
	n := 0
	for _, d := range days {
		if d.IsWorkable && d.Date.BeforeOrEqual(cutoff) {
			n++
		}
	}
	return ExpectedHours(n, shift)
}
