package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus/timecontrol/control"
	"github.com/nimbus/timecontrol/control/store"
	"github.com/nimbus/timecontrol/factory"
	"github.com/nimbus/timecontrol/report"
)

// =============================================================================
// FIXTURE
// =============================================================================

func h(v float64) control.Hours { return control.HoursOf(v) }

func date(year int, month time.Month, day int) control.TimePoint {
	return control.NewTimePoint(year, month, day)
}

func fixture() (*store.Memory, *report.Builder) {
	mem := store.NewMemory()
	mem.AddUser(control.UserRef{ID: "u-ana", Name: "Ana", Department: "engineering"})
	mem.AddUser(control.UserRef{ID: "u-bruno", Name: "Bruno", Department: "design"})
	mem.AddProject(control.ProjectRef{ID: "p-atlas", Code: "ATL-01", Name: "Atlas"})
	mem.AddProject(control.ProjectRef{ID: "p-beacon", Code: "BCN-02", Name: "Beacon"})
	mem.SetShift("u-ana", h(8))
	mem.SetShift("u-bruno", h(8))

	cfg := factory.Default()
	cfg.Departments = []factory.Department{
		{Name: "engineering", Label: "Engineering"},
		{Name: "design", Label: "Design"},
	}

	svc := &control.Service{
		Entries:   mem,
		Schedule:  mem,
		Holidays:  mem,
		Absences:  mem,
		Directory: mem,
		National:  cfg.NationalTable(),
		CompanyID: "acme",
	}
	return mem, &report.Builder{Service: svc, Config: cfg}
}

func addEntry(mem *store.Memory, user control.UserID, day control.TimePoint, project control.ProjectID, hours float64) {
	mem.AddEntry(control.TimeEntry{
		ID:        string(user) + "/" + day.Key(),
		UserID:    user,
		ProjectID: project,
		Date:      day,
		Hours:     h(hours),
		Status:    control.StatusApproved,
	})
}

// =============================================================================
// PERSONAL SHEET
// =============================================================================

func TestPersonal_SheetShape(t *testing.T) {
	// GIVEN: a Monday with surplus and a Tuesday compensated from it
	mem, b := fixture()
	addEntry(mem, "u-ana", date(2025, time.March, 3), "p-atlas", 10)
	addEntry(mem, "u-ana", date(2025, time.March, 4), "p-atlas", 4)

	// WHEN
	sheet, err := b.Personal(context.Background(), "u-ana", 2025, time.March, control.EntryFilter{})

	// THEN
	require.NoError(t, err)
	assert.Equal(t, "Ana", sheet.User.Name)
	require.Len(t, sheet.Days, 31)

	monday := sheet.Days[2]
	assert.Equal(t, time.Monday, monday.Weekday)
	assert.Equal(t, "10.0", monday.Real.String())
	assert.Equal(t, "8.0", monday.Calculated.String())
	assert.Equal(t, "2.0", monday.SurplusDeferred.String())

	tuesday := sheet.Days[3]
	assert.Equal(t, "6.0", tuesday.Calculated.String())
	assert.Equal(t, "2.0", tuesday.CompensationApplied.String())

	assert.Equal(t, "14.0", sheet.Summary.RealHoursTotal.String())
}

func TestPersonal_ProblemBadgeOnBadDay(t *testing.T) {
	mem, b := fixture()
	mem.AddEntry(control.TimeEntry{
		ID: "bad", UserID: "u-ana", ProjectID: "p-atlas",
		Date: date(2025, time.March, 5), Hours: h(-1), Status: control.StatusApproved,
	})

	sheet, err := b.Personal(context.Background(), "u-ana", 2025, time.March, control.EntryFilter{})

	require.NoError(t, err)
	assert.True(t, sheet.Days[4].HasProblem)
	assert.False(t, sheet.Days[3].HasProblem)
	require.Len(t, sheet.Summary.Problems, 1)
}

func TestPersonal_UnknownUser(t *testing.T) {
	_, b := fixture()

	_, err := b.Personal(context.Background(), "u-ghost", 2025, time.March, control.EntryFilter{})

	assert.ErrorIs(t, err, control.ErrUserNotFound)
}

// =============================================================================
// TEAM ROLLUP
// =============================================================================

func TestTeam_MonthlyRollup(t *testing.T) {
	// GIVEN: Ana logs a full Monday, Bruno half of one
	mem, b := fixture()
	addEntry(mem, "u-ana", date(2025, time.March, 3), "p-atlas", 8)
	addEntry(mem, "u-bruno", date(2025, time.March, 3), "p-beacon", 4)

	// WHEN
	rep, err := b.Team(context.Background(), 2025, time.March, "", control.EntryFilter{})

	// THEN: rows sorted by name, labels resolved, totals summed
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, "Ana", rep.Rows[0].User.Name)
	assert.Equal(t, "Engineering", rep.Rows[0].DepartmentLabel)
	assert.Equal(t, "8.0", rep.Rows[0].Real.String())
	assert.Equal(t, "4.0", rep.Rows[1].Real.String())
	assert.Equal(t, "12.0", rep.TotalReal.String())
	assert.Equal(t, "336.0", rep.TotalExpected.String(), "two users, 21 workable days at 8h")
	assert.Equal(t, 20, rep.Rows[0].DaysUnfilled)
	// 12 / 336 * 100
	assert.Equal(t, "3.6", rep.CompliancePercent.String())
}

func TestTeam_DepartmentFilter(t *testing.T) {
	mem, b := fixture()
	addEntry(mem, "u-ana", date(2025, time.March, 3), "p-atlas", 8)
	addEntry(mem, "u-bruno", date(2025, time.March, 3), "p-beacon", 8)

	rep, err := b.Team(context.Background(), 2025, time.March, "design", control.EntryFilter{})

	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "Bruno", rep.Rows[0].User.Name)
	assert.Equal(t, "8.0", rep.TotalReal.String(), "totals cover the filtered rows only")
}

func TestTeam_AnnualSumsIndependentMonths(t *testing.T) {
	// GIVEN: surplus in January and a short day in February
	mem, b := fixture()
	addEntry(mem, "u-ana", date(2025, time.January, 31), "p-atlas", 10)
	addEntry(mem, "u-ana", date(2025, time.February, 3), "p-atlas", 6)

	// WHEN: annual report (month zero)
	rep, err := b.Team(context.Background(), 2025, 0, "engineering", control.EntryFilter{})

	// THEN: January's surplus never reaches February
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "16.0", rep.Rows[0].Real.String())
	assert.Equal(t, "14.0", rep.Rows[0].Calculated.String())
	assert.Equal(t, "2.0", rep.Rows[0].Saldo.String(), "saldo reported, not rolled over")
}

// =============================================================================
// PROJECT ROLLUP
// =============================================================================

func TestProjects_AnnualBreakdown(t *testing.T) {
	// GIVEN: Atlas worked in January and March, Beacon in March only
	mem, b := fixture()
	addEntry(mem, "u-ana", date(2025, time.January, 2), "p-atlas", 8)
	addEntry(mem, "u-ana", date(2025, time.March, 3), "p-atlas", 5)
	addEntry(mem, "u-bruno", date(2025, time.March, 3), "p-beacon", 6)

	// WHEN
	rep, err := b.Projects(context.Background(), 2025, false, control.MatrixFilter{}, control.EntryFilter{})

	// THEN
	require.NoError(t, err)
	require.Len(t, rep.Projects, 2)

	atlas := rep.Projects[0]
	assert.Equal(t, "ATL-01", atlas.Project.Code)
	assert.Equal(t, "13.0", atlas.Real.String())
	require.Len(t, atlas.Months, 12)
	assert.Equal(t, "8.0", atlas.Months[0].Real.String())
	assert.Equal(t, "5.0", atlas.Months[2].Real.String())
	assert.True(t, atlas.Months[1].Real.IsZero())

	assert.Equal(t, "19.0", rep.TotalReal.String())
	assert.Empty(t, atlas.Users, "no drill-down unless asked")
}

func TestProjects_UserDrillDown(t *testing.T) {
	mem, b := fixture()
	addEntry(mem, "u-ana", date(2025, time.March, 3), "p-atlas", 5)
	addEntry(mem, "u-bruno", date(2025, time.March, 4), "p-atlas", 3)

	rep, err := b.Projects(context.Background(), 2025, true, control.MatrixFilter{}, control.EntryFilter{})

	require.NoError(t, err)
	atlas := rep.Projects[0]
	require.Len(t, atlas.Users, 2)
	assert.Equal(t, "Ana", atlas.Users[0].User.Name)
	assert.Equal(t, "5.0", atlas.Users[0].Real.String())
	assert.Equal(t, "3.0", atlas.Users[1].Real.String())
}
