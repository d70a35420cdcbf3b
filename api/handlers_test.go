/*
handlers_test.go - HTTP-level tests over the full wiring

Requests go through the real router, handlers, engine and an in-memory
SQLite store, asserting on decoded JSON bodies and status codes.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus/timecontrol/control"
	"github.com/nimbus/timecontrol/factory"
	"github.com/nimbus/timecontrol/report"
	"github.com/nimbus/timecontrol/store/sqlite"
)

func newTestServer(t *testing.T) (*sqlite.Store, http.Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := factory.Default()
	svc := &control.Service{
		Entries:   store,
		Schedule:  store,
		Holidays:  store,
		Absences:  store,
		Directory: store,
		National:  cfg.NationalTable(),
		CompanyID: "acme",
	}
	builder := &report.Builder{Service: svc, Config: cfg}
	return store, NewRouter(NewHandler(svc, builder, store))
}

func seedDirectory(t *testing.T, store *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	shift := 8.0
	require.NoError(t, store.InsertUser(ctx,
		control.UserRef{ID: "u-ana", Name: "Ana", Department: "engineering"}, "acme", &shift))
	require.NoError(t, store.InsertProject(ctx,
		control.ProjectRef{ID: "p-atlas", Code: "ATL-01", Name: "Atlas"}))
}

func addEntry(t *testing.T, store *sqlite.Store, user control.UserID, day control.TimePoint, hours float64) {
	t.Helper()
	_, err := store.InsertTimeEntry(context.Background(), control.TimeEntry{
		UserID: user, ProjectID: "p-atlas", Date: day,
		Hours: control.HoursOf(hours), Status: control.StatusApproved,
	})
	require.NoError(t, err)
}

func get(t *testing.T, router http.Handler, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

// =============================================================================
// DIRECTORY
// =============================================================================

func TestListUsers(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)

	var users []UserDTO
	rec := get(t, router, "/api/users", &users)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].Name)
}

// =============================================================================
// DAY RECORDS
// =============================================================================

func TestGetDayRecords_FullMonth(t *testing.T) {
	// GIVEN: a surplus Monday and a short Tuesday
	store, router := newTestServer(t)
	seedDirectory(t, store)
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.March, 3), 10)
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.March, 4), 4)

	// WHEN
	var month MonthDTO
	rec := get(t, router, "/api/users/u-ana/days?year=2025&month=3", &month)

	// THEN: compensation visible day by day
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, month.Days, 31)
	assert.Equal(t, 10.0, month.Days[2].Real)
	assert.Equal(t, 8.0, month.Days[2].Calculated)
	assert.Equal(t, 2.0, month.Days[2].SurplusDeferred)
	assert.Equal(t, 6.0, month.Days[3].Calculated)
	assert.Equal(t, 0.0, month.Saldo)
}

func TestGetDayRecords_MissingMonthIs400(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)

	rec := get(t, router, "/api/users/u-ana/days?year=2025", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDayRecords_BadYearIs400(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)

	rec := get(t, router, "/api/users/u-ana/days?year=banana&month=3", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDayRecords_StatusFilter(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.March, 3), 5)
	_, err := store.InsertTimeEntry(context.Background(), control.TimeEntry{
		UserID: "u-ana", ProjectID: "p-atlas",
		Date: control.NewTimePoint(2025, time.March, 3), Hours: control.HoursOf(3),
		Status: control.StatusDraft,
	})
	require.NoError(t, err)

	var month MonthDTO
	get(t, router, "/api/users/u-ana/days?year=2025&month=3&status=approved", &month)

	assert.Equal(t, 5.0, month.Days[2].Real, "draft entry excluded")
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestGetMonthlySummary(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.March, 3), 8)

	var summary SummaryDTO
	rec := get(t, router, "/api/users/u-ana/summary?year=2025&month=3", &summary)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8.0, summary.Real)
	assert.Equal(t, 168.0, summary.Expected)
	assert.Equal(t, -160.0, summary.Deviation)
	assert.Equal(t, 20, summary.DaysUnfilled)
}

func TestGetMonthlySummary_UnconfiguredUserStillRenders(t *testing.T) {
	// A user with no shift must get numbers plus a warning, not an error.
	store, router := newTestServer(t)
	seedDirectory(t, store)
	require.NoError(t, store.InsertUser(context.Background(),
		control.UserRef{ID: "u-carla", Name: "Carla"}, "acme", nil))

	var summary SummaryDTO
	rec := get(t, router, "/api/users/u-carla/summary?year=2025&month=3", &summary)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, "shift_default", summary.Warnings[0].Code)
	assert.Equal(t, 168.0, summary.Expected, "default 8h shift applied")
}

func TestGetMonthlySummary_BadEntryIsPartialSuccess(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.March, 3), -2)
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.March, 4), 8)

	var summary SummaryDTO
	rec := get(t, router, "/api/users/u-ana/summary?year=2025&month=3", &summary)

	require.Equal(t, http.StatusOK, rec.Code, "one bad entry never blanks the month")
	require.Len(t, summary.Problems, 1)
	assert.Equal(t, "2025-03-03", summary.Problems[0].Date)
	assert.Equal(t, 8.0, summary.Real)
}

// =============================================================================
// MATRIX
// =============================================================================

func TestGetMatrix_Month(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.March, 3), 8)

	var m MatrixDTO
	rec := get(t, router, "/api/matrix?year=2025&month=3", &m)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, m.Cells, 1)
	assert.Equal(t, "p-atlas", m.Cells[0].ProjectID)
	assert.Equal(t, 8.0, m.Cells[0].Real)
	assert.Equal(t, 8.0, m.Totals.Real)
}

func TestGetMatrix_YearWhenMonthOmitted(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.January, 2), 8)
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.March, 3), 8)

	var m MatrixDTO
	rec := get(t, router, "/api/matrix?year=2025", &m)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 16.0, m.Totals.Real)
}

func TestGetMatrix_ProjectFilter(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)
	require.NoError(t, store.InsertProject(context.Background(),
		control.ProjectRef{ID: "p-beacon", Code: "BCN-02", Name: "Beacon"}))
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.March, 3), 5)
	_, err := store.InsertTimeEntry(context.Background(), control.TimeEntry{
		UserID: "u-ana", ProjectID: "p-beacon",
		Date: control.NewTimePoint(2025, time.March, 4), Hours: control.HoursOf(3),
		Status: control.StatusApproved,
	})
	require.NoError(t, err)

	var m MatrixDTO
	get(t, router, "/api/matrix?year=2025&month=3&projects=p-atlas", &m)

	require.Len(t, m.Projects, 1)
	assert.Equal(t, 5.0, m.Totals.Real)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestGetPersonalReport_UnknownUserIs404(t *testing.T) {
	_, router := newTestServer(t)

	rec := get(t, router, "/api/reports/personal/u-ghost?year=2025&month=3", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTeamReport(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.March, 3), 8)

	var rep TeamReportDTO
	rec := get(t, router, "/api/reports/team?year=2025&month=3", &rep)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, 8.0, rep.Rows[0].Real)
	assert.Equal(t, 168.0, rep.TotalExpected)
}

func TestGetProjectReport_WithUsers(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)
	addEntry(t, store, "u-ana", control.NewTimePoint(2025, time.March, 3), 5)

	var rep ProjectReportDTO
	rec := get(t, router, "/api/reports/projects?year=2025&users=true", &rep)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rep.Projects, 1)
	assert.Equal(t, "ATL-01", rep.Projects[0].Code)
	assert.Equal(t, 5.0, rep.Projects[0].Real)
	require.Len(t, rep.Projects[0].Users, 1)
	assert.Equal(t, "Ana", rep.Projects[0].Users[0].Name)
}

// =============================================================================
// WRITE PATH
// =============================================================================

func TestCreateEntry_RoundTrip(t *testing.T) {
	store, router := newTestServer(t)
	seedDirectory(t, store)

	body, _ := json.Marshal(CreateEntryRequest{
		UserID: "u-ana", ProjectID: "p-atlas",
		Date: "2025-03-03", Hours: 7.5, Status: "approved",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/entries", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)

	entries, err := store.ListTimeEntries(context.Background(), "u-ana",
		control.MonthPeriod(2025, time.March))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "7.5", entries[0].Hours.String())
}

func TestCreateEntry_Validation(t *testing.T) {
	_, router := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"bad date", `{"user_id":"u-ana","project_id":"p-atlas","date":"03/03/2025","hours":8}`},
		{"hours out of range", `{"user_id":"u-ana","project_id":"p-atlas","date":"2025-03-03","hours":25}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/entries",
				bytes.NewReader([]byte(tc.body))))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateHoliday_AffectsClassification(t *testing.T) {
	// GIVEN: a posted company holiday
	store, router := newTestServer(t)
	seedDirectory(t, store)

	body, _ := json.Marshal(CreateHolidayRequest{
		CompanyID: "acme", Date: "2025-03-17", Name: "Founders Day",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/holidays", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	// THEN: the engine classifies the day off on the next read
	var month MonthDTO
	get(t, router, "/api/users/u-ana/days?year=2025&month=3", &month)
	assert.True(t, month.Days[16].Holiday)
	assert.False(t, month.Days[16].Workable)
}

// =============================================================================
// OPERATIONAL ENDPOINTS
// =============================================================================

func TestHealthAndMetrics(t *testing.T) {
	_, router := newTestServer(t)

	rec := get(t, router, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, router, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "timecontrol_http_requests_total")
}
