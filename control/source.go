/*
source.go - Interfaces to the external collaborators

PURPOSE:
  The engine owns no persistence. Raw entries, shift configuration,
  holiday extras, absences and the user/project directory all come from
  external modules through these interfaces. Implementations:

    - store/sqlite: production store
    - control/store: in-memory, for tests and dev seeding

CONTRACT NOTES:
  - no entries for a user/period is NOT an error: return an empty slice
  - DailyShiftHours returns ErrScheduleNotFound when the user has no
    configured shift; the service falls back to the default and reports
    a ConfigWarning instead of failing
  - consistency of concurrent reads is the store's concern; the engine
    only requires reentrancy across calls with distinct inputs
*/
package control

import "context"

// TimeEntrySource lists raw entries for a user in a period, date-ordered.
type TimeEntrySource interface {
	ListTimeEntries(ctx context.Context, userID UserID, period Period) ([]TimeEntry, error)
}

// ScheduleSource exposes the per-user daily shift length.
type ScheduleSource interface {
	// DailyShiftHours returns the configured shift for the user.
	// ErrScheduleNotFound when none is configured.
	DailyShiftHours(ctx context.Context, userID UserID) (Hours, error)
}

// HolidaySource lists company-specific holiday dates beyond the national
// table for a year.
type HolidaySource interface {
	ExtraHolidays(ctx context.Context, companyID CompanyID, year int) ([]TimePoint, error)
}

// AbsenceSource maps a user's absence days within a period to a type label.
// Keys are TimePoint.Key() strings.
type AbsenceSource interface {
	AbsencesInRange(ctx context.Context, userID UserID, period Period) (map[string]string, error)
}

// DirectorySource resolves the population for matrix and team reports.
type DirectorySource interface {
	User(ctx context.Context, id UserID) (UserRef, error)
	Users(ctx context.Context) ([]UserRef, error)
	Projects(ctx context.Context) ([]ProjectRef, error)
}
