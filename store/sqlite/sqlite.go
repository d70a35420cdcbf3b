/*
Package sqlite provides the SQLite-backed implementation of the control
engine's data sources.

PURPOSE:
  Implements TimeEntrySource, ScheduleSource, HolidaySource, AbsenceSource
  and DirectorySource over a single SQLite database. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  users:        directory + per-user daily shift length
  projects:     directory with sortable codes
  time_entries: raw daily records (owned by the time-entry module)
  holidays:     per-company extra holiday dates
  absences:     approved absence days with type labels

READ PATH:
  The engine recomputes everything per request, so this store is read-
  mostly: date-range scans over time_entries dominate, covered by
  idx_entries_user_date. Write helpers exist for seeding and the thin
  entry-creation endpoint.

WAL MODE:
  The database is opened with WAL for concurrent readers during writes.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a versioned
  migration tool.

SEE ALSO:
  - control/source.go: interface definitions
  - control/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nimbus/timecontrol/control"
)

// Store implements every control source interface using SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface checks.
var (
	_ control.TimeEntrySource = (*Store)(nil)
	_ control.ScheduleSource  = (*Store)(nil)
	_ control.HolidaySource   = (*Store)(nil)
	_ control.AbsenceSource   = (*Store)(nil)
	_ control.DirectorySource = (*Store)(nil)
)

// New opens (or creates) the database. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		department TEXT NOT NULL DEFAULT '',
		company_id TEXT NOT NULL DEFAULT '',
		daily_shift_hours REAL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_projects_code ON projects(code);

	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		hours TEXT NOT NULL,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_user_date
		ON time_entries(user_id, entry_date);
	CREATE INDEX IF NOT EXISTS idx_entries_project
		ON time_entries(project_id);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL DEFAULT '',
		holiday_date TEXT NOT NULL,
		name TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_holidays_company_date
		ON holidays(company_id, holiday_date);

	CREATE TABLE IF NOT EXISTS absences (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		absence_date TEXT NOT NULL,
		absence_type TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_absences_user_date
		ON absences(user_id, absence_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

const dateLayout = "2006-01-02"

// =============================================================================
// TIME ENTRY SOURCE
// =============================================================================

func (s *Store) ListTimeEntries(ctx context.Context, userID control.UserID, period control.Period) ([]control.TimeEntry, error) {
	query := `
		SELECT id, user_id, project_id, entry_date, hours, notes, status
		FROM time_entries
		WHERE user_id = ? AND entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date, id
	`
	rows, err := s.db.QueryContext(ctx, query,
		userID, period.Start.String(), period.End.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []control.TimeEntry
	for rows.Next() {
		var (
			e       control.TimeEntry
			rawDate string
			notes   sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.ProjectID, &rawDate, &e.Hours.Value, &notes, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		date, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return nil, fmt.Errorf("bad entry_date %q: %w", rawDate, err)
		}
		e.Date = control.DateOf(date)
		e.Notes = notes.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertTimeEntry persists a raw entry. A missing ID gets a generated one.
func (s *Store) InsertTimeEntry(ctx context.Context, e control.TimeEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_entries (id, user_id, project_id, entry_date, hours, notes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.ProjectID, e.Date.String(), e.Hours.Value.String(),
		e.Notes, e.Status, now())
	if err != nil {
		return "", fmt.Errorf("failed to insert time entry: %w", err)
	}
	return e.ID, nil
}

// =============================================================================
// SCHEDULE SOURCE
// =============================================================================

func (s *Store) DailyShiftHours(ctx context.Context, userID control.UserID) (control.Hours, error) {
	var shift sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT daily_shift_hours FROM users WHERE id = ?`, userID).Scan(&shift)
	switch {
	case err == sql.ErrNoRows:
		return control.ZeroHours(), control.ErrUserNotFound
	case err != nil:
		return control.ZeroHours(), fmt.Errorf("failed to load shift: %w", err)
	case !shift.Valid || shift.Float64 <= 0:
		return control.ZeroHours(), control.ErrScheduleNotFound
	}
	return control.HoursOf(shift.Float64), nil
}

// =============================================================================
// HOLIDAY SOURCE
// =============================================================================

func (s *Store) ExtraHolidays(ctx context.Context, companyID control.CompanyID, year int) ([]control.TimePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT holiday_date FROM holidays
		WHERE company_id = ? AND holiday_date >= ? AND holiday_date <= ?
		ORDER BY holiday_date`,
		companyID,
		fmt.Sprintf("%04d-01-01", year),
		fmt.Sprintf("%04d-12-31", year))
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var dates []control.TimePoint
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("bad holiday_date %q: %w", raw, err)
		}
		dates = append(dates, control.DateOf(date))
	}
	return dates, rows.Err()
}

func (s *Store) InsertHoliday(ctx context.Context, companyID control.CompanyID, date control.TimePoint, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, company_id, holiday_date, name, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), companyID, date.String(), name, now())
	if err != nil {
		return fmt.Errorf("failed to insert holiday: %w", err)
	}
	return nil
}

// =============================================================================
// ABSENCE SOURCE
// =============================================================================

func (s *Store) AbsencesInRange(ctx context.Context, userID control.UserID, period control.Period) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT absence_date, absence_type FROM absences
		WHERE user_id = ? AND absence_date >= ? AND absence_date <= ?`,
		userID, period.Start.String(), period.End.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list absences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var date, label string
		if err := rows.Scan(&date, &label); err != nil {
			return nil, fmt.Errorf("failed to scan absence: %w", err)
		}
		out[date] = label
	}
	return out, rows.Err()
}

func (s *Store) InsertAbsence(ctx context.Context, userID control.UserID, date control.TimePoint, label string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO absences (id, user_id, absence_date, absence_type, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, date.String(), label, now())
	if err != nil {
		return fmt.Errorf("failed to insert absence: %w", err)
	}
	return nil
}

// =============================================================================
// DIRECTORY SOURCE
// =============================================================================

func (s *Store) User(ctx context.Context, id control.UserID) (control.UserRef, error) {
	var u control.UserRef
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, department FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Department)
	switch {
	case err == sql.ErrNoRows:
		return control.UserRef{}, control.ErrUserNotFound
	case err != nil:
		return control.UserRef{}, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (s *Store) Users(ctx context.Context) ([]control.UserRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, department FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []control.UserRef
	for rows.Next() {
		var u control.UserRef
		if err := rows.Scan(&u.ID, &u.Name, &u.Department); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) Projects(ctx context.Context) ([]control.ProjectRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name FROM projects ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []control.ProjectRef
	for rows.Next() {
		var p control.ProjectRef
		if err := rows.Scan(&p.ID, &p.Code, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) InsertUser(ctx context.Context, u control.UserRef, companyID control.CompanyID, shift *float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, department, company_id, daily_shift_hours, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Department, companyID, shift, now())
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Store) InsertProject(ctx context.Context, p control.ProjectRef) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, code, name, created_at)
		VALUES (?, ?, ?, ?)`,
		p.ID, p.Code, p.Name, now())
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
