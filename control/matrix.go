/*
matrix.go - Project-by-user cross tabulation

PURPOSE:
  Builds the control table for a period: rows are projects, columns are
  users, each cell carries real and calculated hours side by side. Row,
  column and grand totals come with it, plus per-user deviation against
  expected hours.

FILTERS AND ORDERING:
  Department, user-id and project-id filters apply BEFORE aggregation, so
  every total reflects only the filtered population. Projects sort by code
  ascending and users by name unless the caller supplies its own order.

PERIODS:
  A month is one allocator run per user. A year is twelve INDEPENDENT
  monthly runs summed afterwards; compensation never crosses a month
  boundary, so the yearly figures are exactly the sum of the monthly ones.

ATTRIBUTION OF CALCULATED HOURS:
  The allocator works on day totals, projects do not compensate each
  other explicitly. A day's calculated hours are attributed to projects
  proportionally to that day's real per-project split. Compensation landing
  on a day with nothing logged has no project to land in: it still counts
  in the user's column total, which is therefore computed from the day
  series, not from the cells.

SEE ALSO:
  - compensation.go: produces the per-user day series consumed here
  - service.go: fetches and allocates before calling BuildMatrix
*/
package control

import (
	"sort"
)

// =============================================================================
// MATRIX TYPES
// =============================================================================

// MatrixCell is one project-user intersection, computed on demand.
type MatrixCell struct {
	ProjectID  ProjectID
	UserID     UserID
	Real       Hours
	Calculated Hours
}

// UserColumn is the per-user total line under the matrix.
type UserColumn struct {
	User       UserRef
	Real       Hours
	Calculated Hours
	Expected   Hours

	// Deviation = real - expected. Negative means under the calendar.
	Deviation Hours

	// CompensationDelta = calculated - real. Positive means the user
	// received compensation (favorable); negative means hours were lost
	// to the cap (unfavorable).
	CompensationDelta Hours
}

// ProjectRow is the per-project total line.
type ProjectRow struct {
	Project    ProjectRef
	Real       Hours
	Calculated Hours
}

type MatrixTotals struct {
	Real       Hours
	Calculated Hours
	Expected   Hours
}

// Matrix is the full cross tabulation for a period.
type Matrix struct {
	Projects []ProjectRef
	Users    []UserRef
	Cells    []MatrixCell
	Rows     []ProjectRow
	Columns  []UserColumn
	Totals   MatrixTotals
}

// Cell returns the cell at (project, user), zero-valued if absent.
func (m Matrix) Cell(p ProjectID, u UserID) MatrixCell {
	for _, c := range m.Cells {
		if c.ProjectID == p && c.UserID == u {
			return c
		}
	}
	return MatrixCell{ProjectID: p, UserID: u, Real: ZeroHours(), Calculated: ZeroHours()}
}

// =============================================================================
// MATRIX INPUT
// =============================================================================

// MatrixFilter narrows the population before aggregation. Empty fields
// match everything.
type MatrixFilter struct {
	Department string
	UserIDs    []UserID
	ProjectIDs []ProjectID
}

func (f MatrixFilter) matchesUser(u UserRef) bool {
	if f.Department != "" && u.Department != f.Department {
		return false
	}
	if len(f.UserIDs) == 0 {
		return true
	}
	for _, id := range f.UserIDs {
		if u.ID == id {
			return true
		}
	}
	return false
}

func (f MatrixFilter) matchesProject(id ProjectID) bool {
	if len(f.ProjectIDs) == 0 {
		return true
	}
	for _, pid := range f.ProjectIDs {
		if pid == id {
			return true
		}
	}
	return false
}

// UserSlice is one user's allocated month: the day series after Allocate,
// plus the expected hours for the same month. A yearly matrix feeds twelve
// of these per user.
type UserSlice struct {
	User     UserRef
	Days     []DayRecord
	Expected Hours
}

// SortOrder overrides the default orderings when non-nil.
type SortOrder struct {
	Projects func(a, b ProjectRef) bool
	Users    func(a, b UserRef) bool
}

// =============================================================================
// BUILD
// =============================================================================

// BuildMatrix cross-tabulates allocated user slices over the given project
// directory. Slices belonging to users excluded by the filter are dropped
// before any total is formed.
func BuildMatrix(slices []UserSlice, projects []ProjectRef, filter MatrixFilter, order *SortOrder) Matrix {
	// Filter population first so totals reflect it.
	var kept []UserSlice
	seen := make(map[UserID]bool)
	var users []UserRef
	for _, s := range slices {
		if !filter.matchesUser(s.User) {
			continue
		}
		kept = append(kept, s)
		if !seen[s.User.ID] {
			seen[s.User.ID] = true
			users = append(users, s.User)
		}
	}

	var keptProjects []ProjectRef
	projectKnown := make(map[ProjectID]bool)
	for _, p := range projects {
		if filter.matchesProject(p.ID) {
			keptProjects = append(keptProjects, p)
			projectKnown[p.ID] = true
		}
	}

	sortRefs(keptProjects, users, order)

	// Accumulate cells and per-user day-series totals at full precision.
	type cellKey struct {
		p ProjectID
		u UserID
	}
	cellReal := make(map[cellKey]Hours)
	cellCalc := make(map[cellKey]Hours)

	colReal := make(map[UserID]Hours)
	colCalc := make(map[UserID]Hours)
	colExpected := make(map[UserID]Hours)

	projectFiltered := len(filter.ProjectIDs) > 0

	for _, s := range kept {
		colExpected[s.User.ID] = colExpected[s.User.ID].Add(s.Expected)
		for _, day := range s.Days {
			if !day.CompensatesInto() {
				continue
			}
			if !projectFiltered {
				// Full day totals: captures compensation applied to days
				// with nothing logged, which has no project to land in.
				colReal[s.User.ID] = colReal[s.User.ID].Add(day.RealHours)
				colCalc[s.User.ID] = colCalc[s.User.ID].Add(day.CalculatedHours)
			}

			shares := splitDay(day)
			for pid, real := range day.HoursByProject {
				if !projectKnown[pid] {
					continue
				}
				k := cellKey{p: pid, u: s.User.ID}
				cellReal[k] = cellReal[k].Add(real)
				cellCalc[k] = cellCalc[k].Add(shares[pid])
				if projectFiltered {
					// Column totals follow the filtered population.
					colReal[s.User.ID] = colReal[s.User.ID].Add(real)
					colCalc[s.User.ID] = colCalc[s.User.ID].Add(shares[pid])
				}
			}
		}
	}

	m := Matrix{Projects: keptProjects, Users: users}

	for _, p := range keptProjects {
		row := ProjectRow{Project: p, Real: ZeroHours(), Calculated: ZeroHours()}
		for _, u := range users {
			k := cellKey{p: p.ID, u: u.ID}
			real, calc := cellReal[k], cellCalc[k]
			if real.IsZero() && calc.IsZero() {
				continue
			}
			m.Cells = append(m.Cells, MatrixCell{
				ProjectID:  p.ID,
				UserID:     u.ID,
				Real:       real.Round1(),
				Calculated: calc.Round1(),
			})
			row.Real = row.Real.Add(real)
			row.Calculated = row.Calculated.Add(calc)
		}
		row.Real = row.Real.Round1()
		row.Calculated = row.Calculated.Round1()
		m.Rows = append(m.Rows, row)
	}

	totals := MatrixTotals{Real: ZeroHours(), Calculated: ZeroHours(), Expected: ZeroHours()}
	for _, u := range users {
		real := colReal[u.ID]
		calc := colCalc[u.ID]
		expected := colExpected[u.ID]
		m.Columns = append(m.Columns, UserColumn{
			User:              u,
			Real:              real.Round1(),
			Calculated:        calc.Round1(),
			Expected:          expected.Round1(),
			Deviation:         real.Sub(expected).Round1(),
			CompensationDelta: calc.Sub(real).Round1(),
		})
		totals.Real = totals.Real.Add(real)
		totals.Calculated = totals.Calculated.Add(calc)
		totals.Expected = totals.Expected.Add(expected)
	}
	m.Totals = MatrixTotals{
		Real:       totals.Real.Round1(),
		Calculated: totals.Calculated.Round1(),
		Expected:   totals.Expected.Round1(),
	}

	return m
}

// splitDay attributes one day's calculated hours to projects proportionally
// to the real split. Days with no real hours return nothing: compensation
// landing there belongs to the user column only.
func splitDay(day DayRecord) map[ProjectID]Hours {
	if len(day.HoursByProject) == 0 || !day.RealHours.IsPositive() {
		return nil
	}
	shares := make(map[ProjectID]Hours, len(day.HoursByProject))
	for pid, real := range day.HoursByProject {
		ratio := real.Value.Div(day.RealHours.Value)
		shares[pid] = day.CalculatedHours.Mul(ratio)
	}
	return shares
}

func sortRefs(projects []ProjectRef, users []UserRef, order *SortOrder) {
	projectLess := func(a, b ProjectRef) bool { return a.Code < b.Code }
	userLess := func(a, b UserRef) bool { return a.Name < b.Name }
	if order != nil {
		if order.Projects != nil {
			projectLess = order.Projects
		}
		if order.Users != nil {
			userLess = order.Users
		}
	}
	sort.SliceStable(projects, func(i, j int) bool { return projectLess(projects[i], projects[j]) })
	sort.SliceStable(users, func(i, j int) bool { return userLess(users[i], users[j]) })
}
