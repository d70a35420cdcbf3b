/*
service.go - The engine's exposed operations

PURPOSE:
  Wires the external sources into the three exposed operations:

    DayRecords     one user, one month: classified days with real and
                   calculated ledgers, saldo, problems, warnings
    MonthlySummary the totals derived from DayRecords
    Matrix         cross tabulation over a month or a year

  Each call fetches, classifies, aggregates and allocates from scratch.
  Nothing is cached, so results can never be stale, and all state is
  local to the call: concurrent invocations with distinct inputs are safe
  by construction.

CONFIGURATION FALLBACKS:
  A missing shift configuration falls back to DefaultShift (8h) and adds
  a ConfigWarning to the result. An unavailable holiday source degrades
  to the national table alone, again with a warning. Reports must render.

SEE ALSO:
  - source.go: the consumed interfaces
  - report/: read-only projections over these operations
*/
package control

import (
	"context"
	"errors"
	"time"
)

// DefaultShiftHours is the documented fallback daily shift length.
const DefaultShiftHours = 8

// Service binds the pure engine to its data sources.
type Service struct {
	Entries   TimeEntrySource
	Schedule  ScheduleSource
	Holidays  HolidaySource
	Absences  AbsenceSource
	Directory DirectorySource

	// National is the recurring holiday table, immutable after startup.
	National []MonthDay

	// CompanyID scopes holiday lookups. Single-tenant deployments leave
	// it empty.
	CompanyID CompanyID

	// DefaultShift overrides the 8h fallback when positive.
	DefaultShift Hours
}

func (s *Service) defaultShift() Hours {
	if s.DefaultShift.IsPositive() {
		return s.DefaultShift
	}
	return HoursFromInt(DefaultShiftHours)
}

// MonthResult is one user-month after classification, aggregation and
// allocation.
type MonthResult struct {
	UserID UserID
	Year   int
	Month  time.Month

	Days  []DayRecord
	Saldo Hours

	Shift    Hours
	Expected Hours

	Problems []ValidationError
	Warnings []ConfigWarning
}

// MonthlySummary condenses a MonthResult into the headline numbers.
type MonthlySummary struct {
	UserID UserID
	Year   int
	Month  time.Month

	RealHoursTotal       Hours
	CalculatedHoursTotal Hours
	ExpectedHours        Hours
	Deviation            Hours // real - expected
	CompliancePercent    Hours // real / expected * 100, one decimal
	DaysUnfilled         int
	Saldo                Hours

	Problems []ValidationError
	Warnings []ConfigWarning
}

// DayRecords runs the full pipeline for one user and month.
func (s *Service) DayRecords(ctx context.Context, userID UserID, year int, month time.Month, filter EntryFilter) (MonthResult, error) {
	result := MonthResult{UserID: userID, Year: year, Month: month}
	period := MonthPeriod(year, month)

	// Shift configuration, with documented fallback.
	shift, warn, err := s.shiftFor(ctx, userID)
	if err != nil {
		return MonthResult{}, err
	}
	if warn != nil {
		result.Warnings = append(result.Warnings, *warn)
	}
	result.Shift = shift

	// Calendar: national table plus company extras.
	extra, err := s.extraHolidays(ctx, year, &result)
	if err != nil {
		return MonthResult{}, err
	}
	calendar := NewFixedHolidays(s.National, extra)
	skeleton := ClassifyMonth(year, month, calendar)

	// Raw entries, pre-filtered by status upstream of the allocator.
	entries, err := s.Entries.ListTimeEntries(ctx, userID, period)
	if err != nil {
		return MonthResult{}, err
	}
	var filtered []TimeEntry
	for _, e := range entries {
		if filter.Matches(e) {
			filtered = append(filtered, e)
		}
	}

	// Absences exclude otherwise-workable days from compensation.
	absences, err := s.Absences.AbsencesInRange(ctx, userID, period)
	if err != nil {
		return MonthResult{}, err
	}
	lookup := func(date TimePoint) (bool, string) {
		label, ok := absences[date.Key()]
		return ok, label
	}

	days, problems := AggregateMonth(skeleton, filtered, lookup)
	result.Problems = problems

	allocated := Allocate(days, shift)
	result.Days = allocated.Days
	result.Saldo = allocated.Saldo
	result.Expected = ExpectedHours(workableNonAbsence(result.Days), shift)

	return result, nil
}

// MonthlySummary derives the headline numbers for one user and month.
func (s *Service) MonthlySummary(ctx context.Context, userID UserID, year int, month time.Month, filter EntryFilter) (MonthlySummary, error) {
	mr, err := s.DayRecords(ctx, userID, year, month, filter)
	if err != nil {
		return MonthlySummary{}, err
	}
	return mr.Summary(), nil
}

// Summary condenses the month result. Compliance with zero expected hours
// is zero, never a division error.
func (mr MonthResult) Summary() MonthlySummary {
	real := RealTotal(mr.Days)
	calculated := CalculatedTotal(mr.Days)

	compliance := ZeroHours()
	if mr.Expected.IsPositive() {
		compliance = Hours{Value: real.Value.Div(mr.Expected.Value).Mul(hundred)}.Round1()
	}

	return MonthlySummary{
		UserID:               mr.UserID,
		Year:                 mr.Year,
		Month:                mr.Month,
		RealHoursTotal:       real.Round1(),
		CalculatedHoursTotal: calculated.Round1(),
		ExpectedHours:        mr.Expected,
		Deviation:            real.Sub(mr.Expected).Round1(),
		CompliancePercent:    compliance,
		DaysUnfilled:         DaysUnfilled(mr.Days),
		Saldo:                mr.Saldo,
		Problems:             mr.Problems,
		Warnings:             mr.Warnings,
	}
}

// =============================================================================
// MATRIX
// =============================================================================

// MatrixPeriod selects a single month or a whole year. Month == 0 means
// the full year of twelve independent monthly runs.
type MatrixPeriod struct {
	Year  int
	Month time.Month
}

func (p MatrixPeriod) months() []time.Month {
	if p.Month != 0 {
		return []time.Month{p.Month}
	}
	months := make([]time.Month, 12)
	for i := range months {
		months[i] = time.Month(i + 1)
	}
	return months
}

// Matrix builds the cross tabulation for a period and filter. The user
// population comes from the directory; filters narrow it before any
// aggregation so totals reflect the filtered population only.
func (s *Service) Matrix(ctx context.Context, period MatrixPeriod, filter MatrixFilter, entryFilter EntryFilter) (Matrix, error) {
	users, err := s.Directory.Users(ctx)
	if err != nil {
		return Matrix{}, err
	}
	projects, err := s.Directory.Projects(ctx)
	if err != nil {
		return Matrix{}, err
	}

	var slices []UserSlice
	for _, u := range users {
		if !filter.matchesUser(u) {
			continue
		}
		for _, month := range period.months() {
			mr, err := s.DayRecords(ctx, u.ID, period.Year, month, entryFilter)
			if err != nil {
				return Matrix{}, err
			}
			slices = append(slices, UserSlice{User: u, Days: mr.Days, Expected: mr.Expected})
		}
	}

	return BuildMatrix(slices, projects, filter, nil), nil
}

// =============================================================================
// INTERNAL
// =============================================================================

var hundred = HoursFromInt(100).Value

func (s *Service) shiftFor(ctx context.Context, userID UserID) (Hours, *ConfigWarning, error) {
	shift, err := s.Schedule.DailyShiftHours(ctx, userID)
	switch {
	case errors.Is(err, ErrScheduleNotFound):
		return s.defaultShift(), &ConfigWarning{
			Code:    "shift_default",
			Message: "no shift configured for " + string(userID) + ", using default",
		}, nil
	case err != nil:
		return ZeroHours(), nil, err
	case !shift.IsPositive():
		return s.defaultShift(), &ConfigWarning{
			Code:    "shift_default",
			Message: "shift for " + string(userID) + " is unset, using default",
		}, nil
	}
	return shift, nil, nil
}

func (s *Service) extraHolidays(ctx context.Context, year int, result *MonthResult) ([]TimePoint, error) {
	if s.Holidays == nil {
		return nil, nil
	}
	extra, err := s.Holidays.ExtraHolidays(ctx, s.CompanyID, year)
	if err != nil {
		// Holiday data is decorative enough to degrade: classify with the
		// national table alone and say so.
		result.Warnings = append(result.Warnings, ConfigWarning{
			Code:    "holidays_unavailable",
			Message: "extra holidays unavailable: " + err.Error(),
		})
		return nil, nil
	}
	return extra, nil
}

func workableNonAbsence(days []DayRecord) int {
	n := 0
	for _, d := range days {
		if d.CompensatesInto() {
			n++
		}
	}
	return n
}
