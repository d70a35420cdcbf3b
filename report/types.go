// Package report builds read-only projections over the control engine:
// the personal monthly sheet, the team rollup and the project rollup.
// It formats nothing; presentation (CSV, UI) consumes these structs.
package report

import (
	"time"

	"github.com/nimbus/timecontrol/control"
)

// =============================================================================
// PERSONAL MONTHLY SHEET
// =============================================================================

// DayLine is one row of the personal sheet, with display-rounded values.
type DayLine struct {
	Date        control.TimePoint
	Weekday     time.Weekday
	IsWorkable  bool
	IsWeekend   bool
	IsHoliday   bool
	IsAbsence   bool
	AbsenceType string

	Real                control.Hours
	Calculated          control.Hours
	CompensationApplied control.Hours
	SurplusDeferred     control.Hours
	BalanceAfter        control.Hours

	ByProject map[control.ProjectID]control.Hours

	// HasProblem marks days whose entries failed validation; the table
	// still renders, the day shows a warning badge.
	HasProblem bool
}

// PersonalSheet is the per-day detail plus summary for one user-month.
type PersonalSheet struct {
	User    control.UserRef
	Year    int
	Month   time.Month
	Days    []DayLine
	Summary control.MonthlySummary
}

// =============================================================================
// TEAM ROLLUP
// =============================================================================

// TeamRow is one user's totals over the report period.
type TeamRow struct {
	User            control.UserRef
	DepartmentLabel string

	Real              control.Hours
	Calculated        control.Hours
	Expected          control.Hours
	Deviation         control.Hours
	CompliancePercent control.Hours
	Saldo             control.Hours
	DaysUnfilled      int
	ProblemCount      int
}

// TeamReport rolls up a team for a month or, with Month zero, a year.
type TeamReport struct {
	Year       int
	Month      time.Month // 0 = annual
	Department string

	Rows []TeamRow

	TotalReal         control.Hours
	TotalCalculated   control.Hours
	TotalExpected     control.Hours
	CompliancePercent control.Hours
}

// =============================================================================
// PROJECT ROLLUP
// =============================================================================

// ProjectMonth is one project's totals for a single month.
type ProjectMonth struct {
	Month      time.Month
	Real       control.Hours
	Calculated control.Hours
}

// ProjectUserShare is the optional per-user drill-down over the year.
type ProjectUserShare struct {
	User       control.UserRef
	Real       control.Hours
	Calculated control.Hours
}

// ProjectYear is one project's monthly breakdown over a year.
type ProjectYear struct {
	Project    control.ProjectRef
	Months     []ProjectMonth
	Real       control.Hours
	Calculated control.Hours
	Users      []ProjectUserShare // nil unless drill-down requested
}

// ProjectReport is the annual per-project rollup.
type ProjectReport struct {
	Year     int
	Projects []ProjectYear

	TotalReal       control.Hours
	TotalCalculated control.Hours
}
