package control

import (
	"time"
)

// =============================================================================
// TIME POINT - Day-granularity date (the engine never needs finer)
// =============================================================================

type TimePoint struct {
	Time time.Time
}

func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates any time to its UTC calendar day.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return DateOf(time.Now().UTC())
}

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Comparison
func (tp TimePoint) Before(o TimePoint) bool        { return tp.normalize().Before(o.normalize()) }
func (tp TimePoint) Equal(o TimePoint) bool         { return tp.normalize().Equal(o.normalize()) }
func (tp TimePoint) After(o TimePoint) bool         { return tp.normalize().After(o.normalize()) }
func (tp TimePoint) BeforeOrEqual(o TimePoint) bool { return tp.Before(o) || tp.Equal(o) }
func (tp TimePoint) AfterOrEqual(o TimePoint) bool  { return tp.After(o) || tp.Equal(o) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, n, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (tp TimePoint) String() string {
	return tp.Time.Format("2006-01-02")
}

// Key returns the canonical map key for this date. TimePoints built through
// the constructors compare fine with ==, but dates arriving from drivers may
// carry locations, so lookups go through Key.
func (tp TimePoint) Key() string {
	return tp.String()
}

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

type Period struct {
	Start TimePoint
	End   TimePoint
}

func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// MonthPeriod returns the full calendar month, leap years included.
func MonthPeriod(year int, month time.Month) Period {
	start := NewTimePoint(year, month, 1)
	end := TimePoint{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
	return Period{Start: start, End: end}
}

func YearPeriod(year int) Period {
	return Period{
		Start: NewTimePoint(year, time.January, 1),
		End:   NewTimePoint(year, time.December, 31),
	}
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// MonthDay identifies a recurring national holiday (same month/day every year).
type MonthDay struct {
	Month time.Month
	Day   int
}

// HolidayCalendar answers whether a date is a holiday. Implementations are
// immutable once built; company resolution happens at construction time.
type HolidayCalendar interface {
	IsHoliday(date TimePoint) bool
}

// FixedHolidays combines a recurring national table with explicit extra
// dates (company closures, regional holidays).
type FixedHolidays struct {
	national map[MonthDay]bool
	extra    map[string]bool
}

func NewFixedHolidays(national []MonthDay, extra []TimePoint) *FixedHolidays {
	fh := &FixedHolidays{
		national: make(map[MonthDay]bool, len(national)),
		extra:    make(map[string]bool, len(extra)),
	}
	for _, md := range national {
		fh.national[md] = true
	}
	for _, d := range extra {
		fh.extra[d.Key()] = true
	}
	return fh
}

func (fh *FixedHolidays) IsHoliday(date TimePoint) bool {
	if fh == nil {
		return false
	}
	if fh.national[MonthDay{Month: date.Month(), Day: date.Day()}] {
		return true
	}
	return fh.extra[date.Key()]
}

// NoHolidays is the calendar used when holiday data is unavailable.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(TimePoint) bool { return false }
