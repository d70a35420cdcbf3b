// Package store provides in-memory source implementations for tests and dev.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/nimbus/timecontrol/control"
)

// =============================================================================
// MEMORY STORE - Implements every control source interface
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	entries  map[control.UserID][]control.TimeEntry
	shifts   map[control.UserID]control.Hours
	holidays map[control.CompanyID]map[int][]control.TimePoint
	absences map[control.UserID]map[string]string
	users    []control.UserRef
	projects []control.ProjectRef
}

func NewMemory() *Memory {
	return &Memory{
		entries:  make(map[control.UserID][]control.TimeEntry),
		shifts:   make(map[control.UserID]control.Hours),
		holidays: make(map[control.CompanyID]map[int][]control.TimePoint),
		absences: make(map[control.UserID]map[string]string),
	}
}

// Compile-time interface checks.
var (
	_ control.TimeEntrySource = (*Memory)(nil)
	_ control.ScheduleSource  = (*Memory)(nil)
	_ control.HolidaySource   = (*Memory)(nil)
	_ control.AbsenceSource   = (*Memory)(nil)
	_ control.DirectorySource = (*Memory)(nil)
)

// -----------------------------------------------------------------------------
// Fixture setup
// -----------------------------------------------------------------------------

func (m *Memory) AddEntry(e control.TimeEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.UserID] = append(m.entries[e.UserID], e)
}

func (m *Memory) SetShift(userID control.UserID, shift control.Hours) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[userID] = shift
}

func (m *Memory) AddHoliday(companyID control.CompanyID, date control.TimePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byYear, ok := m.holidays[companyID]
	if !ok {
		byYear = make(map[int][]control.TimePoint)
		m.holidays[companyID] = byYear
	}
	byYear[date.Year()] = append(byYear[date.Year()], date)
}

func (m *Memory) AddAbsence(userID control.UserID, date control.TimePoint, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byDay, ok := m.absences[userID]
	if !ok {
		byDay = make(map[string]string)
		m.absences[userID] = byDay
	}
	byDay[date.Key()] = label
}

func (m *Memory) AddUser(u control.UserRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, u)
}

func (m *Memory) AddProject(p control.ProjectRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = append(m.projects, p)
}

// -----------------------------------------------------------------------------
// Source implementations
// -----------------------------------------------------------------------------

func (m *Memory) ListTimeEntries(_ context.Context, userID control.UserID, period control.Period) ([]control.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []control.TimeEntry
	for _, e := range m.entries[userID] {
		if period.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) DailyShiftHours(_ context.Context, userID control.UserID) (control.Hours, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	shift, ok := m.shifts[userID]
	if !ok {
		return control.ZeroHours(), control.ErrScheduleNotFound
	}
	return shift, nil
}

func (m *Memory) ExtraHolidays(_ context.Context, companyID control.CompanyID, year int) ([]control.TimePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byYear := m.holidays[companyID]
	if byYear == nil {
		return nil, nil
	}
	return append([]control.TimePoint(nil), byYear[year]...), nil
}

func (m *Memory) AbsencesInRange(_ context.Context, userID control.UserID, period control.Period) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byDay := m.absences[userID]
	out := make(map[string]string)
	for _, day := range period.Days() {
		if label, ok := byDay[day.Key()]; ok {
			out[day.Key()] = label
		}
	}
	return out, nil
}

func (m *Memory) User(_ context.Context, id control.UserID) (control.UserRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return control.UserRef{}, control.ErrUserNotFound
}

func (m *Memory) Users(_ context.Context) ([]control.UserRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]control.UserRef(nil), m.users...), nil
}

func (m *Memory) Projects(_ context.Context) ([]control.ProjectRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]control.ProjectRef(nil), m.projects...), nil
}
