/*
day.go - Daily aggregation of raw time entries

PURPOSE:
  Groups raw entries by date, sums hours at full precision, retains the
  per-project breakdown, and flags absence days. This is the validation
  boundary of the engine: malformed entries are rejected HERE with a
  ValidationError, never silently clamped, and never allowed to reach the
  allocator.

PARTIAL SUCCESS:
  A validation failure aborts only the affected day. Its real hours stay
  zero, the error joins the month's problem list, and every other day
  aggregates normally. One bad entry never blanks a whole month.

ROUNDING:
  Sums are accumulated at full precision and rounded once for display by
  the callers. Rounding per entry would drift.

SEE ALSO:
  - errors.go: ValidationError
  - compensation.go: consumes the aggregated days
*/
package control

import "errors"

// maxDayHours is the physical upper bound for one day's total.
var maxDayHours = HoursFromInt(24)

// DayTotals is the aggregate of one day's entries.
type DayTotals struct {
	Real      Hours
	ByProject map[ProjectID]Hours
}

// AggregateDay validates and sums one day's entries. Entries are assumed to
// share a date; the caller groups them. Returns a ValidationError if any
// entry is negative or the day's total exceeds 24 hours.
func AggregateDay(entries []TimeEntry) (DayTotals, error) {
	totals := DayTotals{
		Real:      ZeroHours(),
		ByProject: make(map[ProjectID]Hours),
	}

	for _, e := range entries {
		if e.Hours.IsNegative() {
			return DayTotals{}, &ValidationError{
				UserID:  e.UserID,
				Date:    e.Date,
				EntryID: e.ID,
				Reason:  ErrNegativeHours,
				Detail:  "logged " + e.Hours.Value.String() + "h",
			}
		}
		totals.Real = totals.Real.Add(e.Hours)
		totals.ByProject[e.ProjectID] = totals.ByProject[e.ProjectID].Add(e.Hours)
	}

	if totals.Real.GreaterThan(maxDayHours) {
		first := entries[0]
		return DayTotals{}, &ValidationError{
			UserID: first.UserID,
			Date:   first.Date,
			Reason: ErrDayOverflow,
			Detail: "day total " + totals.Real.Value.String() + "h",
		}
	}

	return totals, nil
}

// AbsenceLookup answers whether a user is absent on a date, with a type
// label (vacation, sick, ...). Supplied by the absence module.
type AbsenceLookup func(date TimePoint) (bool, string)

// AggregateMonth fills real hours into the classified skeleton. Entries
// dated outside the month are rejected; days matched by the absence lookup
// are flagged and later excluded from compensation even if workable.
//
// The returned problem list carries one ValidationError per aborted day.
// Aggregation of the remaining days is unaffected.
func AggregateMonth(skeleton []DayRecord, entries []TimeEntry, absent AbsenceLookup) ([]DayRecord, []ValidationError) {
	if len(skeleton) == 0 {
		return nil, nil
	}

	period := Period{Start: skeleton[0].Date, End: skeleton[len(skeleton)-1].Date}

	byDay := make(map[string][]TimeEntry)
	var problems []ValidationError

	for _, e := range entries {
		if !period.Contains(e.Date) {
			problems = append(problems, ValidationError{
				UserID:  e.UserID,
				Date:    e.Date,
				EntryID: e.ID,
				Reason:  ErrOutOfPeriod,
				Detail:  "requested " + period.String(),
			})
			continue
		}
		key := e.Date.Key()
		byDay[key] = append(byDay[key], e)
	}

	days := make([]DayRecord, len(skeleton))
	copy(days, skeleton)

	for i := range days {
		if absent != nil {
			if isAbsent, label := absent(days[i].Date); isAbsent {
				days[i].IsAbsence = true
				days[i].AbsenceType = label
			}
		}

		dayEntries := byDay[days[i].Date.Key()]
		if len(dayEntries) == 0 {
			days[i].RealHours = ZeroHours()
			continue
		}

		totals, err := AggregateDay(dayEntries)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				problems = append(problems, *verr)
			}
			// day aborted: stays at zero
			days[i].RealHours = ZeroHours()
			continue
		}
		days[i].RealHours = totals.Real
		days[i].HoursByProject = totals.ByProject
	}

	return days, problems
}
