package control_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus/timecontrol/control"
)

// =============================================================================
// FIXTURE
// =============================================================================

var (
	atlas  = control.ProjectRef{ID: "p-atlas", Code: "ATL-01", Name: "Atlas"}
	beacon = control.ProjectRef{ID: "p-beacon", Code: "BCN-02", Name: "Beacon"}

	ana   = control.UserRef{ID: "u-ana", Name: "Ana", Department: "engineering"}
	bruno = control.UserRef{ID: "u-bruno", Name: "Bruno", Department: "design"}
)

// allocatedSlice builds a UserSlice of workable days split across projects,
// already run through the allocator with an 8h cap.
func allocatedSlice(user control.UserRef, perDay []map[control.ProjectID]float64) control.UserSlice {
	days := make([]control.DayRecord, len(perDay))
	for i, split := range perDay {
		real := control.ZeroHours()
		byProject := make(map[control.ProjectID]control.Hours)
		for pid, v := range split {
			real = real.Add(h(v))
			byProject[pid] = h(v)
		}
		days[i] = control.DayRecord{
			Date:           date(2025, time.March, 3+i),
			IsWorkable:     true,
			RealHours:      real,
			HoursByProject: byProject,
		}
	}
	allocated := control.Allocate(days, h(8))
	return control.UserSlice{
		User:     user,
		Days:     allocated.Days,
		Expected: control.ExpectedHours(len(perDay), h(8)),
	}
}

// =============================================================================
// TOTALS AND ORDERING
// =============================================================================

func TestBuildMatrix_TotalsAndOrdering(t *testing.T) {
	// Bruno appears first in the input but sorts after Ana by name;
	// Beacon's code sorts after Atlas.
	slices := []control.UserSlice{
		allocatedSlice(bruno, []map[control.ProjectID]float64{
			{"p-beacon": 6},
		}),
		allocatedSlice(ana, []map[control.ProjectID]float64{
			{"p-atlas": 5, "p-beacon": 3},
			{"p-atlas": 8},
		}),
	}

	m := control.BuildMatrix(slices, []control.ProjectRef{beacon, atlas}, control.MatrixFilter{}, nil)

	require.Len(t, m.Users, 2)
	assert.Equal(t, control.UserID("u-ana"), m.Users[0].ID, "users sorted by name")
	require.Len(t, m.Projects, 2)
	assert.Equal(t, "ATL-01", m.Projects[0].Code, "projects sorted by code")

	// Round-trip: matrix real total equals the sum of raw hours.
	assert.Equal(t, "22.0", m.Totals.Real.String())
	assert.Equal(t, "22.0", m.Totals.Calculated.String())

	cell := m.Cell("p-atlas", "u-ana")
	assert.Equal(t, "13.0", cell.Real.String())
}

func TestBuildMatrix_DeviationAndCompensationSign(t *testing.T) {
	// Ana logs 10h then 6h over two days, cap 8: calculated stays 16,
	// expected is 16, so deviation 0 and compensation delta 0.
	// Bruno logs 10h then 10h: 4h lost to the cap, delta -4.
	slices := []control.UserSlice{
		allocatedSlice(ana, []map[control.ProjectID]float64{
			{"p-atlas": 10}, {"p-atlas": 6},
		}),
		allocatedSlice(bruno, []map[control.ProjectID]float64{
			{"p-atlas": 10}, {"p-atlas": 10},
		}),
	}

	m := control.BuildMatrix(slices, []control.ProjectRef{atlas}, control.MatrixFilter{}, nil)

	require.Len(t, m.Columns, 2)
	anaCol, brunoCol := m.Columns[0], m.Columns[1]

	assert.Equal(t, "0.0", anaCol.CompensationDelta.String())
	assert.Equal(t, "0.0", anaCol.Deviation.String())

	assert.Equal(t, "-4.0", brunoCol.CompensationDelta.String(), "hours lost to cap")
	assert.Equal(t, "4.0", brunoCol.Deviation.String(), "real over expected")
}

// =============================================================================
// FILTERS
// =============================================================================

func TestBuildMatrix_DepartmentFilter(t *testing.T) {
	slices := []control.UserSlice{
		allocatedSlice(ana, []map[control.ProjectID]float64{{"p-atlas": 8}}),
		allocatedSlice(bruno, []map[control.ProjectID]float64{{"p-atlas": 8}}),
	}

	m := control.BuildMatrix(slices, []control.ProjectRef{atlas},
		control.MatrixFilter{Department: "engineering"}, nil)

	require.Len(t, m.Users, 1)
	assert.Equal(t, control.UserID("u-ana"), m.Users[0].ID)
	assert.Equal(t, "8.0", m.Totals.Real.String(), "totals reflect filtered population")
}

func TestBuildMatrix_ProjectFilterNarrowsColumns(t *testing.T) {
	slices := []control.UserSlice{
		allocatedSlice(ana, []map[control.ProjectID]float64{
			{"p-atlas": 5, "p-beacon": 3},
		}),
	}

	m := control.BuildMatrix(slices, []control.ProjectRef{atlas, beacon},
		control.MatrixFilter{ProjectIDs: []control.ProjectID{"p-atlas"}}, nil)

	require.Len(t, m.Projects, 1)
	assert.Equal(t, "5.0", m.Totals.Real.String(), "beacon hours excluded everywhere")
}

func TestBuildMatrix_UserFilter(t *testing.T) {
	slices := []control.UserSlice{
		allocatedSlice(ana, []map[control.ProjectID]float64{{"p-atlas": 8}}),
		allocatedSlice(bruno, []map[control.ProjectID]float64{{"p-atlas": 6}}),
	}

	m := control.BuildMatrix(slices, []control.ProjectRef{atlas},
		control.MatrixFilter{UserIDs: []control.UserID{"u-bruno"}}, nil)

	require.Len(t, m.Users, 1)
	assert.Equal(t, "6.0", m.Totals.Real.String())
}

// =============================================================================
// CALCULATED ATTRIBUTION
// =============================================================================

func TestBuildMatrix_ProportionalSplitOfCalculated(t *testing.T) {
	// GIVEN: a 10h day split 60/40 across two projects, cap 8
	// THEN: the capped 8h splits 4.8/3.2 proportionally

	slices := []control.UserSlice{
		allocatedSlice(ana, []map[control.ProjectID]float64{
			{"p-atlas": 6, "p-beacon": 4},
		}),
	}

	m := control.BuildMatrix(slices, []control.ProjectRef{atlas, beacon}, control.MatrixFilter{}, nil)

	assert.Equal(t, "4.8", m.Cell("p-atlas", "u-ana").Calculated.String())
	assert.Equal(t, "3.2", m.Cell("p-beacon", "u-ana").Calculated.String())
	assert.Equal(t, "6.0", m.Cell("p-atlas", "u-ana").Real.String(), "real untouched")
}

func TestBuildMatrix_CompensationOnEmptyDayStaysInColumn(t *testing.T) {
	// GIVEN: 10h on Atlas, then an empty workable day that receives 2h
	// THEN: the user column carries 10 calculated, but no cell exceeds
	//       its project's attributable share

	slices := []control.UserSlice{
		allocatedSlice(ana, []map[control.ProjectID]float64{
			{"p-atlas": 10},
			{},
		}),
	}

	m := control.BuildMatrix(slices, []control.ProjectRef{atlas}, control.MatrixFilter{}, nil)

	require.Len(t, m.Columns, 1)
	assert.Equal(t, "10.0", m.Columns[0].Calculated.String())
	assert.Equal(t, "8.0", m.Cell("p-atlas", "u-ana").Calculated.String())
}
