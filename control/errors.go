/*
errors.go - Centralized error types for the control engine

PURPOSE:
  All error types in one place. The engine distinguishes three situations:

  1. ValidationError - malformed entry data (negative hours, more than 24h
     logged on one day, entry dated outside the requested month). Raised at
     the daily-aggregator boundary and NEVER coerced: the affected day is
     dropped from computation and the error is collected into a per-day
     problem list returned alongside the otherwise-valid days, so one bad
     entry never blanks a whole month.

  2. ConfigWarning - recoverable configuration gaps (missing shift length,
     empty holiday table). The engine falls back to documented defaults and
     reports the warning alongside the result instead of failing, because
     reports must still render.

  3. Missing data is NOT an error: no entries for a user/period yields a
     well-formed zero result.

SEE ALSO:
  - day.go: raises ValidationError
  - service.go: raises ConfigWarning on shift fallback
*/
package control

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidEntry is the root of every validation failure.
	ErrInvalidEntry = errors.New("invalid time entry")

	// ErrNegativeHours is returned for entries with hours < 0.
	ErrNegativeHours = errors.New("negative hours")

	// ErrDayOverflow is returned when one day's entries sum past 24 hours.
	ErrDayOverflow = errors.New("more than 24 hours on one day")

	// ErrOutOfPeriod is returned for entries dated outside the requested month.
	ErrOutOfPeriod = errors.New("entry dated outside period")

	// ErrScheduleNotFound signals a missing per-user shift configuration.
	// The service falls back to the default shift and reports a warning.
	ErrScheduleNotFound = errors.New("shift configuration not found")

	// ErrUserNotFound is returned by directory lookups for unknown users.
	ErrUserNotFound = errors.New("user not found")

	// ErrProjectNotFound is returned by directory lookups for unknown projects.
	ErrProjectNotFound = errors.New("project not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError pins an invalid entry to the day it corrupts. The date is
// what reports key their warning badges on.
type ValidationError struct {
	UserID  UserID
	Date    TimePoint
	EntryID string
	Reason  error
	Detail  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entry %s on %s: %s (%v)", e.EntryID, e.Date, e.Detail, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	if e.Reason != nil {
		return e.Reason
	}
	return ErrInvalidEntry
}

// ConfigWarning is a non-fatal configuration gap, returned alongside results.
type ConfigWarning struct {
	Code    string // e.g. "shift_default", "holidays_unavailable"
	Message string
}

func (w ConfigWarning) String() string {
	return w.Code + ": " + w.Message
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation reports whether err stems from malformed entry data.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidEntry) ||
		errors.Is(err, ErrNegativeHours) ||
		errors.Is(err, ErrDayOverflow) ||
		errors.Is(err, ErrOutOfPeriod)
}

// IsNotFound reports whether err indicates a missing directory record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrProjectNotFound)
}
