/*
Package control implements the hour-compensation and matrix-aggregation
engine of the time-tracking system.

PURPOSE:
  Given raw daily time entries, this package derives two permanently
  distinct numeric views:
    - the REAL ledger: unmodified sums of logged hours (source of truth)
    - the CALCULATED ledger: hours capped at the daily shift length, with
      the excess redistributed onto later under-worked days of the month

KEY CONCEPTS IN THIS FILE (types.go):
  - Hours: a decimal-backed quantity of worked time
  - TimeEntry: a raw logged record (external, never mutated here)
  - DayRecord: the derived per-day view, real and calculated side by side
  - User/Project/Company IDs: type-safe identifiers

DESIGN PRINCIPLES:
  1. Immutability: real hours are never modified by the allocator
  2. Precision: decimal.Decimal internally, display rounding happens once
  3. Determinism: every computation is a pure function over its inputs

SEE ALSO:
  - compensation.go: The sequential allocator producing calculated hours
  - calendar.go: Month classification and expected-hours calculation
  - matrix.go: Project-by-user cross tabulation
*/
package control

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURS - Decimal quantity of worked time
// =============================================================================

type Hours struct {
	Value decimal.Decimal
}

func HoursOf(value float64) Hours {
	return Hours{Value: decimal.NewFromFloat(value)}
}

func HoursFromInt(value int) Hours {
	return Hours{Value: decimal.NewFromInt(int64(value))}
}

func ZeroHours() Hours {
	return Hours{Value: decimal.Zero}
}

func MustParseHours(s string) Hours {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroHours()
	}
	return Hours{Value: d}
}

func (h Hours) Add(other Hours) Hours      { return Hours{Value: h.Value.Add(other.Value)} }
func (h Hours) Sub(other Hours) Hours      { return Hours{Value: h.Value.Sub(other.Value)} }
func (h Hours) Neg() Hours                 { return Hours{Value: h.Value.Neg()} }
func (h Hours) Mul(s decimal.Decimal) Hours { return Hours{Value: h.Value.Mul(s)} }
func (h Hours) IsZero() bool               { return h.Value.IsZero() }
func (h Hours) IsNegative() bool           { return h.Value.IsNegative() }
func (h Hours) IsPositive() bool           { return h.Value.IsPositive() }
func (h Hours) GreaterThan(o Hours) bool   { return h.Value.GreaterThan(o.Value) }
func (h Hours) LessThan(o Hours) bool      { return h.Value.LessThan(o.Value) }
func (h Hours) Equal(o Hours) bool         { return h.Value.Equal(o.Value) }

func (h Hours) Min(o Hours) Hours {
	if h.LessThan(o) {
		return h
	}
	return o
}

func (h Hours) Max(o Hours) Hours {
	if h.GreaterThan(o) {
		return h
	}
	return o
}

// Round1 rounds to one decimal place, half away from zero. All display
// values and final balances go through this exactly once; internal
// accumulation stays at full precision to avoid drift.
func (h Hours) Round1() Hours {
	return Hours{Value: h.Value.Round(1)}
}

func (h Hours) Float64() float64 {
	f, _ := h.Value.Float64()
	return f
}

func (h Hours) String() string {
	return h.Value.StringFixed(1)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type ProjectID string
type CompanyID string

// UserRef carries the directory attributes the aggregation layer needs for
// filtering and stable ordering. Name resolution for display stays at the
// presentation boundary; this is a reference, not a profile.
type UserRef struct {
	ID         UserID
	Name       string
	Department string
}

// ProjectRef identifies a project together with its sortable code.
type ProjectRef struct {
	ID   ProjectID
	Code string
	Name string
}

// =============================================================================
// TIME ENTRY - Raw logged record (external, read-only)
// =============================================================================

type EntryStatus string

const (
	StatusDraft     EntryStatus = "draft"
	StatusSubmitted EntryStatus = "submitted"
	StatusApproved  EntryStatus = "approved"
)

// TimeEntry is a raw daily record owned by the time-entry module.
// Multiple entries may share a date. Never mutated here.
type TimeEntry struct {
	ID        string
	UserID    UserID
	ProjectID ProjectID
	Date      TimePoint
	Hours     Hours
	Notes     string
	Status    EntryStatus
}

// EntryFilter restricts which entries feed the aggregation.
// An empty status list means all statuses.
type EntryFilter struct {
	Statuses []EntryStatus
}

// ApprovedOnly is the usual filter for compliance reporting.
func ApprovedOnly() EntryFilter {
	return EntryFilter{Statuses: []EntryStatus{StatusApproved}}
}

func (f EntryFilter) Matches(e TimeEntry) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if e.Status == s {
			return true
		}
	}
	return false
}

// =============================================================================
// DAY RECORD - Derived per-day view, recomputed per request
// =============================================================================

// DayRecord holds one day of the month with both ledgers side by side.
// RealHours and HoursByProject are set by the daily aggregator and never
// touched afterwards; the calculated fields are filled by the allocator.
type DayRecord struct {
	Date        TimePoint
	IsWorkable  bool
	IsWeekend   bool
	IsHoliday   bool
	IsAbsence   bool
	AbsenceType string

	// Real ledger (immutable once aggregated)
	RealHours      Hours
	HoursByProject map[ProjectID]Hours

	// Calculated ledger (filled by Allocate)
	CalculatedHours     Hours
	CompensationApplied Hours
	SurplusDeferred     Hours
	BalanceAfter        Hours
}

// CompensatesInto reports whether the day participates in compensation:
// workable and not an absence. Holidays, weekends and absence days neither
// donate nor receive hours.
func (d DayRecord) CompensatesInto() bool {
	return d.IsWorkable && !d.IsAbsence
}
