package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/nimbus/timecontrol/control"
)

// Seed loads a small demo fixture: two projects, three users across two
// departments, a month of entries with an over-logged Monday, an absence
// and a company holiday. Intended for dev databases; errors out if data
// already exists.
func (s *Store) Seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("seed precheck: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("seed: database already has users")
	}

	shift8 := 8.0
	shift6 := 6.0
	users := []struct {
		ref   control.UserRef
		shift *float64
	}{
		{control.UserRef{ID: "u-ana", Name: "Ana Castillo", Department: "engineering"}, &shift8},
		{control.UserRef{ID: "u-bruno", Name: "Bruno Ferreiro", Department: "engineering"}, &shift6},
		{control.UserRef{ID: "u-carla", Name: "Carla Mendez", Department: "design"}, nil}, // falls back to default
	}
	for _, u := range users {
		if err := s.InsertUser(ctx, u.ref, "acme", u.shift); err != nil {
			return err
		}
	}

	projects := []control.ProjectRef{
		{ID: "p-atlas", Code: "ATL-01", Name: "Atlas Migration"},
		{ID: "p-beacon", Code: "BCN-02", Name: "Beacon Rollout"},
	}
	for _, p := range projects {
		if err := s.InsertProject(ctx, p); err != nil {
			return err
		}
	}

	year, month := time.Now().UTC().Year(), time.Now().UTC().Month()
	period := control.MonthPeriod(year, month)

	// A month of plausible logging: Ana over-logs early and recovers,
	// Bruno under-logs, Carla is steady.
	for _, day := range period.Days() {
		if day.IsWeekend() {
			continue
		}
		entries := []control.TimeEntry{
			{UserID: "u-ana", ProjectID: "p-atlas", Date: day, Hours: control.HoursOf(6), Status: control.StatusApproved},
			{UserID: "u-ana", ProjectID: "p-beacon", Date: day, Hours: control.HoursOf(2), Status: control.StatusApproved},
			{UserID: "u-bruno", ProjectID: "p-atlas", Date: day, Hours: control.HoursOf(5), Status: control.StatusApproved},
			{UserID: "u-carla", ProjectID: "p-beacon", Date: day, Hours: control.HoursOf(8), Status: control.StatusSubmitted},
		}
		if day.Day() == 2 {
			// over the cap: surplus to compensate later
			entries[0].Hours = control.HoursOf(9)
			entries[1].Hours = control.HoursOf(2.5)
		}
		for _, e := range entries {
			if _, err := s.InsertTimeEntry(ctx, e); err != nil {
				return err
			}
		}
	}

	if err := s.InsertAbsence(ctx, "u-bruno", period.Start.AddDays(14), "vacation"); err != nil {
		return err
	}
	if err := s.InsertHoliday(ctx, "acme", period.Start.AddDays(9), "Company Day"); err != nil {
		return err
	}
	return nil
}
