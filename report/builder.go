/*
builder.go - Report assembly over the control engine

PURPOSE:
  Thin consumers of the engine's exposed operations. Nothing here
  recomputes hours: every number comes from control.Service, the builders
  only reshape and label.

CONCURRENCY:
  Per-(user, month) allocator runs share no state, so the team and
  project builders fan out one goroutine per user with errgroup and fan
  in before assembling totals. A failing user cancels the group.

SEE ALSO:
  - control/service.go: the operations consumed here
  - factory/config.go: department labels
*/
package report

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nimbus/timecontrol/control"
	"github.com/nimbus/timecontrol/factory"
)

// Builder assembles reports from the engine and the directory.
type Builder struct {
	Service *control.Service
	Config  factory.Config
}

// =============================================================================
// PERSONAL MONTHLY SHEET
// =============================================================================

func (b *Builder) Personal(ctx context.Context, userID control.UserID, year int, month time.Month, filter control.EntryFilter) (PersonalSheet, error) {
	user, err := b.Service.Directory.User(ctx, userID)
	if err != nil {
		return PersonalSheet{}, err
	}

	mr, err := b.Service.DayRecords(ctx, userID, year, month, filter)
	if err != nil {
		return PersonalSheet{}, err
	}

	problemDays := make(map[string]bool, len(mr.Problems))
	for _, p := range mr.Problems {
		problemDays[p.Date.Key()] = true
	}

	sheet := PersonalSheet{
		User:    user,
		Year:    year,
		Month:   month,
		Summary: mr.Summary(),
	}
	for _, d := range mr.Days {
		sheet.Days = append(sheet.Days, DayLine{
			Date:                d.Date,
			Weekday:             d.Date.Weekday(),
			IsWorkable:          d.IsWorkable,
			IsWeekend:           d.IsWeekend,
			IsHoliday:           d.IsHoliday,
			IsAbsence:           d.IsAbsence,
			AbsenceType:         d.AbsenceType,
			Real:                d.RealHours.Round1(),
			Calculated:          d.CalculatedHours.Round1(),
			CompensationApplied: d.CompensationApplied.Round1(),
			SurplusDeferred:     d.SurplusDeferred.Round1(),
			BalanceAfter:        d.BalanceAfter.Round1(),
			ByProject:           d.HoursByProject,
			HasProblem:          problemDays[d.Date.Key()],
		})
	}
	return sheet, nil
}

// =============================================================================
// TEAM ROLLUP
// =============================================================================

// Team rolls up every user (optionally one department) for a month, or for
// the whole year when month is zero. Months are independent allocator runs;
// annual rows are their sums.
func (b *Builder) Team(ctx context.Context, year int, month time.Month, department string, filter control.EntryFilter) (TeamReport, error) {
	users, err := b.Service.Directory.Users(ctx)
	if err != nil {
		return TeamReport{}, err
	}

	var population []control.UserRef
	for _, u := range users {
		if department == "" || u.Department == department {
			population = append(population, u)
		}
	}
	sort.SliceStable(population, func(i, j int) bool { return population[i].Name < population[j].Name })

	months := monthsOf(month)

	rows := make([]TeamRow, len(population))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range population {
		i, u := i, u
		g.Go(func() error {
			row, err := b.userRow(gctx, u, year, months, filter)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TeamReport{}, err
	}

	rep := TeamReport{
		Year:            year,
		Month:           month,
		Department:      department,
		Rows:            rows,
		TotalReal:       control.ZeroHours(),
		TotalCalculated: control.ZeroHours(),
		TotalExpected:   control.ZeroHours(),
	}
	for _, r := range rows {
		rep.TotalReal = rep.TotalReal.Add(r.Real)
		rep.TotalCalculated = rep.TotalCalculated.Add(r.Calculated)
		rep.TotalExpected = rep.TotalExpected.Add(r.Expected)
	}
	rep.CompliancePercent = compliance(rep.TotalReal, rep.TotalExpected)
	return rep, nil
}

func (b *Builder) userRow(ctx context.Context, u control.UserRef, year int, months []time.Month, filter control.EntryFilter) (TeamRow, error) {
	row := TeamRow{
		User:            u,
		DepartmentLabel: b.Config.DepartmentLabel(u.Department),
		Real:            control.ZeroHours(),
		Calculated:      control.ZeroHours(),
		Expected:        control.ZeroHours(),
		Saldo:           control.ZeroHours(),
	}
	for _, m := range months {
		summary, err := b.Service.MonthlySummary(ctx, u.ID, year, m, filter)
		if err != nil {
			return TeamRow{}, err
		}
		row.Real = row.Real.Add(summary.RealHoursTotal)
		row.Calculated = row.Calculated.Add(summary.CalculatedHoursTotal)
		row.Expected = row.Expected.Add(summary.ExpectedHours)
		row.Saldo = row.Saldo.Add(summary.Saldo)
		row.DaysUnfilled += summary.DaysUnfilled
		row.ProblemCount += len(summary.Problems)
	}
	row.Deviation = row.Real.Sub(row.Expected).Round1()
	row.CompliancePercent = compliance(row.Real, row.Expected)
	return row, nil
}

// =============================================================================
// PROJECT ROLLUP
// =============================================================================

// Projects builds the annual per-project breakdown from twelve monthly
// matrices. withUsers adds the per-user drill-down summed over the year.
func (b *Builder) Projects(ctx context.Context, year int, withUsers bool, filter control.MatrixFilter, entryFilter control.EntryFilter) (ProjectReport, error) {
	matrices := make([]control.Matrix, 12)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 12; i++ {
		i := i
		g.Go(func() error {
			m, err := b.Service.Matrix(gctx, control.MatrixPeriod{Year: year, Month: time.Month(i + 1)}, filter, entryFilter)
			if err != nil {
				return err
			}
			matrices[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ProjectReport{}, err
	}

	rep := ProjectReport{
		Year:            year,
		TotalReal:       control.ZeroHours(),
		TotalCalculated: control.ZeroHours(),
	}

	// Projects come from the first matrix; the directory is the same for
	// every month.
	var projects []control.ProjectRef
	if len(matrices) > 0 {
		projects = matrices[0].Projects
	}

	for _, p := range projects {
		py := ProjectYear{
			Project:    p,
			Real:       control.ZeroHours(),
			Calculated: control.ZeroHours(),
		}
		userTotals := make(map[control.UserID]*ProjectUserShare)

		for i, m := range matrices {
			pm := ProjectMonth{Month: time.Month(i + 1), Real: control.ZeroHours(), Calculated: control.ZeroHours()}
			for _, row := range m.Rows {
				if row.Project.ID == p.ID {
					pm.Real = row.Real
					pm.Calculated = row.Calculated
				}
			}
			py.Months = append(py.Months, pm)
			py.Real = py.Real.Add(pm.Real)
			py.Calculated = py.Calculated.Add(pm.Calculated)

			if withUsers {
				for _, cell := range m.Cells {
					if cell.ProjectID != p.ID {
						continue
					}
					share, ok := userTotals[cell.UserID]
					if !ok {
						ref := userRef(m.Users, cell.UserID)
						share = &ProjectUserShare{User: ref, Real: control.ZeroHours(), Calculated: control.ZeroHours()}
						userTotals[cell.UserID] = share
					}
					share.Real = share.Real.Add(cell.Real)
					share.Calculated = share.Calculated.Add(cell.Calculated)
				}
			}
		}

		if withUsers {
			for _, share := range userTotals {
				py.Users = append(py.Users, *share)
			}
			sort.SliceStable(py.Users, func(i, j int) bool { return py.Users[i].User.Name < py.Users[j].User.Name })
		}

		py.Real = py.Real.Round1()
		py.Calculated = py.Calculated.Round1()
		rep.Projects = append(rep.Projects, py)
		rep.TotalReal = rep.TotalReal.Add(py.Real)
		rep.TotalCalculated = rep.TotalCalculated.Add(py.Calculated)
	}

	rep.TotalReal = rep.TotalReal.Round1()
	rep.TotalCalculated = rep.TotalCalculated.Round1()
	return rep, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func monthsOf(month time.Month) []time.Month {
	if month != 0 {
		return []time.Month{month}
	}
	out := make([]time.Month, 12)
	for i := range out {
		out[i] = time.Month(i + 1)
	}
	return out
}

func compliance(real, expected control.Hours) control.Hours {
	if !expected.IsPositive() {
		return control.ZeroHours()
	}
	ratio := real.Value.Div(expected.Value).Mul(control.HoursFromInt(100).Value)
	return control.Hours{Value: ratio}.Round1()
}

func userRef(users []control.UserRef, id control.UserID) control.UserRef {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return control.UserRef{ID: id}
}
