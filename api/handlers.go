/*
handlers.go - HTTP handlers over the control engine

PURPOSE:
  The thin adapter between HTTP and the pure engine: parse and validate
  query parameters, call control.Service or report.Builder, convert to
  DTOs. No hour arithmetic happens here.

ERROR MAPPING:
  - unknown user/project          -> 404
  - malformed parameters          -> 400
  - engine/store failure          -> 500
  - per-day validation problems   -> 200 with a problems list; one bad
    entry never blanks a month, so it is not an HTTP error

SEE ALSO:
  - server.go: routing
  - dto.go: wire shapes
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nimbus/timecontrol/control"
	"github.com/nimbus/timecontrol/report"
	"github.com/nimbus/timecontrol/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *control.Service
	Reports *report.Builder
	Store   *sqlite.Store
}

func NewHandler(service *control.Service, reports *report.Builder, store *sqlite.Store) *Handler {
	return &Handler{Service: service, Reports: reports, Store: store}
}

// =============================================================================
// DIRECTORY
// =============================================================================

// ListUsers returns the user directory.
// GET /api/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.Directory.Users(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, UserDTO{ID: string(u.ID), Name: u.Name, Department: u.Department})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListProjects returns the project directory.
// GET /api/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Service.Directory.Projects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}
	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, ProjectDTO{ID: string(p.ID), Code: p.Code, Name: p.Name})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DAY RECORDS AND SUMMARY
// =============================================================================

// GetDayRecords returns one user's classified month with both ledgers.
// GET /api/users/{id}/days?year=2025&month=3&status=approved
func (h *Handler) GetDayRecords(w http.ResponseWriter, r *http.Request) {
	userID := control.UserID(chi.URLParam(r, "id"))
	year, month, ok := yearMonthParams(w, r, true)
	if !ok {
		return
	}

	mr, err := h.Service.DayRecords(r.Context(), userID, year, month, statusFilter(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthDTO(mr))
}

// GetMonthlySummary returns the headline numbers for one user-month.
// GET /api/users/{id}/summary?year=2025&month=3
func (h *Handler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID := control.UserID(chi.URLParam(r, "id"))
	year, month, ok := yearMonthParams(w, r, true)
	if !ok {
		return
	}

	summary, err := h.Service.MonthlySummary(r.Context(), userID, year, month, statusFilter(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// =============================================================================
// MATRIX
// =============================================================================

// GetMatrix returns the project-by-user cross tabulation.
// GET /api/matrix?year=2025&month=3&department=eng&users=u1,u2&projects=p1
// Omitting month yields the yearly matrix (twelve independent runs summed).
func (h *Handler) GetMatrix(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(w, r, false)
	if !ok {
		return
	}

	filter := control.MatrixFilter{Department: r.URL.Query().Get("department")}
	for _, id := range csvParam(r, "users") {
		filter.UserIDs = append(filter.UserIDs, control.UserID(id))
	}
	for _, id := range csvParam(r, "projects") {
		filter.ProjectIDs = append(filter.ProjectIDs, control.ProjectID(id))
	}

	m, err := h.Service.Matrix(r.Context(), control.MatrixPeriod{Year: year, Month: month}, filter, statusFilter(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatrixDTO(m))
}

// =============================================================================
// REPORTS
// =============================================================================

// GetPersonalReport returns the per-day sheet plus summary.
// GET /api/reports/personal/{id}?year=2025&month=3
func (h *Handler) GetPersonalReport(w http.ResponseWriter, r *http.Request) {
	userID := control.UserID(chi.URLParam(r, "id"))
	year, month, ok := yearMonthParams(w, r, true)
	if !ok {
		return
	}

	sheet, err := h.Reports.Personal(r.Context(), userID, year, month, statusFilter(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}

// GetTeamReport returns per-user totals and compliance.
// GET /api/reports/team?year=2025&month=3&department=eng
// Omitting month yields the annual rollup.
func (h *Handler) GetTeamReport(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(w, r, false)
	if !ok {
		return
	}

	rep, err := h.Reports.Team(r.Context(), year, month, r.URL.Query().Get("department"), statusFilter(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamReportDTO(rep))
}

// GetProjectReport returns the annual per-project breakdown.
// GET /api/reports/projects?year=2025&users=true
func (h *Handler) GetProjectReport(w http.ResponseWriter, r *http.Request) {
	year, _, ok := yearMonthParams(w, r, false)
	if !ok {
		return
	}
	withUsers := r.URL.Query().Get("users") == "true"

	rep, err := h.Reports.Projects(r.Context(), year, withUsers, control.MatrixFilter{}, statusFilter(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectReportDTO(rep))
}

// =============================================================================
// WRITE PATH (thin; the entry module owns these records)
// =============================================================================

// CreateEntry persists a raw time entry.
// POST /api/entries
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if req.Hours < 0 || req.Hours > 24 {
		writeError(w, http.StatusBadRequest, "Hours out of range", nil)
		return
	}
	status := control.EntryStatus(req.Status)
	if req.Status == "" {
		status = control.StatusDraft
	}

	id, err := h.Store.InsertTimeEntry(r.Context(), control.TimeEntry{
		UserID:    control.UserID(req.UserID),
		ProjectID: control.ProjectID(req.ProjectID),
		Date:      control.DateOf(date),
		Hours:     control.HoursOf(req.Hours),
		Notes:     req.Notes,
		Status:    status,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// CreateHoliday records a company-specific holiday date.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if err := h.Store.InsertHoliday(r.Context(), control.CompanyID(req.CompanyID), control.DateOf(date), req.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// yearMonthParams parses ?year= and ?month=. With monthRequired false, a
// missing month comes back as zero (annual mode).
func yearMonthParams(w http.ResponseWriter, r *http.Request, monthRequired bool) (int, time.Month, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1970 || year > 2200 {
		writeError(w, http.StatusBadRequest, "Invalid or missing year", err)
		return 0, 0, false
	}

	rawMonth := r.URL.Query().Get("month")
	if rawMonth == "" {
		if monthRequired {
			writeError(w, http.StatusBadRequest, "Missing month", nil)
			return 0, 0, false
		}
		return year, 0, true
	}
	m, err := strconv.Atoi(rawMonth)
	if err != nil || m < 1 || m > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return 0, 0, false
	}
	return year, time.Month(m), true
}

// statusFilter reads ?status=approved,submitted. Empty means all statuses.
func statusFilter(r *http.Request) control.EntryFilter {
	var filter control.EntryFilter
	for _, s := range csvParam(r, "status") {
		filter.Statuses = append(filter.Statuses, control.EntryStatus(s))
	}
	return filter
}

func csvParam(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func writeServiceError(w http.ResponseWriter, err error) {
	if control.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Not found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "Computation failed", err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
