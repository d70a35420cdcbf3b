/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes for the HTTP layer. These decouple the engine's decimal
  types from the wire: every hour value crosses as a float already
  rounded to one decimal by the engine's display rules, so clients never
  re-round.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: conversion and validation
*/
package api

import (
	"github.com/nimbus/timecontrol/control"
	"github.com/nimbus/timecontrol/report"
)

// =============================================================================
// DIRECTORY
// =============================================================================

type UserDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
}

type ProjectDTO struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// =============================================================================
// DAY RECORDS AND SUMMARY
// =============================================================================

type DayRecordDTO struct {
	Date        string `json:"date"`
	Workable    bool   `json:"workable"`
	Weekend     bool   `json:"weekend"`
	Holiday     bool   `json:"holiday"`
	Absence     bool   `json:"absence"`
	AbsenceType string `json:"absence_type,omitempty"`

	Real                float64            `json:"real"`
	Calculated          float64            `json:"calculated"`
	CompensationApplied float64            `json:"compensation_applied"`
	SurplusDeferred     float64            `json:"surplus_deferred"`
	BalanceAfter        float64            `json:"balance_after"`
	ByProject           map[string]float64 `json:"by_project,omitempty"`
	HasProblem          bool               `json:"has_problem,omitempty"`
}

type ProblemDTO struct {
	Date    string `json:"date"`
	EntryID string `json:"entry_id,omitempty"`
	Message string `json:"message"`
}

type WarningDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MonthDTO struct {
	UserID   string         `json:"user_id"`
	Year     int            `json:"year"`
	Month    int            `json:"month"`
	Days     []DayRecordDTO `json:"days"`
	Saldo    float64        `json:"saldo"`
	Problems []ProblemDTO   `json:"problems,omitempty"`
	Warnings []WarningDTO   `json:"warnings,omitempty"`
}

type SummaryDTO struct {
	UserID            string       `json:"user_id"`
	Year              int          `json:"year"`
	Month             int          `json:"month"`
	Real              float64      `json:"real"`
	Calculated        float64      `json:"calculated"`
	Expected          float64      `json:"expected"`
	Deviation         float64      `json:"deviation"`
	CompliancePercent float64      `json:"compliance_percent"`
	DaysUnfilled      int          `json:"days_unfilled"`
	Saldo             float64      `json:"saldo"`
	Problems          []ProblemDTO `json:"problems,omitempty"`
	Warnings          []WarningDTO `json:"warnings,omitempty"`
}

// =============================================================================
// MATRIX
// =============================================================================

type MatrixCellDTO struct {
	ProjectID  string  `json:"project_id"`
	UserID     string  `json:"user_id"`
	Real       float64 `json:"real"`
	Calculated float64 `json:"calculated"`
}

type MatrixRowDTO struct {
	ProjectID  string  `json:"project_id"`
	Code       string  `json:"code"`
	Real       float64 `json:"real"`
	Calculated float64 `json:"calculated"`
}

type MatrixColumnDTO struct {
	UserID            string  `json:"user_id"`
	Name              string  `json:"name"`
	Real              float64 `json:"real"`
	Calculated        float64 `json:"calculated"`
	Expected          float64 `json:"expected"`
	Deviation         float64 `json:"deviation"`
	CompensationDelta float64 `json:"compensation_delta"`
}

type MatrixDTO struct {
	Projects []ProjectDTO      `json:"projects"`
	Users    []UserDTO         `json:"users"`
	Cells    []MatrixCellDTO   `json:"cells"`
	Rows     []MatrixRowDTO    `json:"rows"`
	Columns  []MatrixColumnDTO `json:"columns"`
	Totals   struct {
		Real       float64 `json:"real"`
		Calculated float64 `json:"calculated"`
		Expected   float64 `json:"expected"`
	} `json:"totals"`
}

// =============================================================================
// REPORTS
// =============================================================================

type TeamRowDTO struct {
	UserID            string  `json:"user_id"`
	Name              string  `json:"name"`
	Department        string  `json:"department,omitempty"`
	DepartmentLabel   string  `json:"department_label,omitempty"`
	Real              float64 `json:"real"`
	Calculated        float64 `json:"calculated"`
	Expected          float64 `json:"expected"`
	Deviation         float64 `json:"deviation"`
	CompliancePercent float64 `json:"compliance_percent"`
	Saldo             float64 `json:"saldo"`
	DaysUnfilled      int     `json:"days_unfilled"`
	ProblemCount      int     `json:"problem_count,omitempty"`
}

type TeamReportDTO struct {
	Year              int          `json:"year"`
	Month             int          `json:"month,omitempty"`
	Department        string       `json:"department,omitempty"`
	Rows              []TeamRowDTO `json:"rows"`
	TotalReal         float64      `json:"total_real"`
	TotalCalculated   float64      `json:"total_calculated"`
	TotalExpected     float64      `json:"total_expected"`
	CompliancePercent float64      `json:"compliance_percent"`
}

type ProjectMonthDTO struct {
	Month      int     `json:"month"`
	Real       float64 `json:"real"`
	Calculated float64 `json:"calculated"`
}

type ProjectUserDTO struct {
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	Real       float64 `json:"real"`
	Calculated float64 `json:"calculated"`
}

type ProjectYearDTO struct {
	ProjectID  string            `json:"project_id"`
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	Months     []ProjectMonthDTO `json:"months"`
	Real       float64           `json:"real"`
	Calculated float64           `json:"calculated"`
	Users      []ProjectUserDTO  `json:"users,omitempty"`
}

type ProjectReportDTO struct {
	Year            int              `json:"year"`
	Projects        []ProjectYearDTO `json:"projects"`
	TotalReal       float64          `json:"total_real"`
	TotalCalculated float64          `json:"total_calculated"`
}

// =============================================================================
// REQUESTS
// =============================================================================

type CreateEntryRequest struct {
	UserID    string  `json:"user_id"`
	ProjectID string  `json:"project_id"`
	Date      string  `json:"date"`
	Hours     float64 `json:"hours"`
	Notes     string  `json:"notes,omitempty"`
	Status    string  `json:"status,omitempty"`
}

type CreateHolidayRequest struct {
	CompanyID string `json:"company_id,omitempty"`
	Date      string `json:"date"`
	Name      string `json:"name,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toMonthDTO(mr control.MonthResult) MonthDTO {
	problemDays := make(map[string]bool, len(mr.Problems))
	for _, p := range mr.Problems {
		problemDays[p.Date.Key()] = true
	}

	dto := MonthDTO{
		UserID:   string(mr.UserID),
		Year:     mr.Year,
		Month:    int(mr.Month),
		Saldo:    mr.Saldo.Float64(),
		Problems: toProblemDTOs(mr.Problems),
		Warnings: toWarningDTOs(mr.Warnings),
	}
	for _, d := range mr.Days {
		day := DayRecordDTO{
			Date:                d.Date.String(),
			Workable:            d.IsWorkable,
			Weekend:             d.IsWeekend,
			Holiday:             d.IsHoliday,
			Absence:             d.IsAbsence,
			AbsenceType:         d.AbsenceType,
			Real:                d.RealHours.Round1().Float64(),
			Calculated:          d.CalculatedHours.Round1().Float64(),
			CompensationApplied: d.CompensationApplied.Round1().Float64(),
			SurplusDeferred:     d.SurplusDeferred.Round1().Float64(),
			BalanceAfter:        d.BalanceAfter.Round1().Float64(),
			HasProblem:          problemDays[d.Date.Key()],
		}
		if len(d.HoursByProject) > 0 {
			day.ByProject = make(map[string]float64, len(d.HoursByProject))
			for pid, h := range d.HoursByProject {
				day.ByProject[string(pid)] = h.Round1().Float64()
			}
		}
		dto.Days = append(dto.Days, day)
	}
	return dto
}

func toSummaryDTO(s control.MonthlySummary) SummaryDTO {
	return SummaryDTO{
		UserID:            string(s.UserID),
		Year:              s.Year,
		Month:             int(s.Month),
		Real:              s.RealHoursTotal.Float64(),
		Calculated:        s.CalculatedHoursTotal.Float64(),
		Expected:          s.ExpectedHours.Float64(),
		Deviation:         s.Deviation.Float64(),
		CompliancePercent: s.CompliancePercent.Float64(),
		DaysUnfilled:      s.DaysUnfilled,
		Saldo:             s.Saldo.Float64(),
		Problems:          toProblemDTOs(s.Problems),
		Warnings:          toWarningDTOs(s.Warnings),
	}
}

func toMatrixDTO(m control.Matrix) MatrixDTO {
	dto := MatrixDTO{}
	for _, p := range m.Projects {
		dto.Projects = append(dto.Projects, ProjectDTO{ID: string(p.ID), Code: p.Code, Name: p.Name})
	}
	for _, u := range m.Users {
		dto.Users = append(dto.Users, UserDTO{ID: string(u.ID), Name: u.Name, Department: u.Department})
	}
	for _, c := range m.Cells {
		dto.Cells = append(dto.Cells, MatrixCellDTO{
			ProjectID:  string(c.ProjectID),
			UserID:     string(c.UserID),
			Real:       c.Real.Float64(),
			Calculated: c.Calculated.Float64(),
		})
	}
	for _, r := range m.Rows {
		dto.Rows = append(dto.Rows, MatrixRowDTO{
			ProjectID:  string(r.Project.ID),
			Code:       r.Project.Code,
			Real:       r.Real.Float64(),
			Calculated: r.Calculated.Float64(),
		})
	}
	for _, c := range m.Columns {
		dto.Columns = append(dto.Columns, MatrixColumnDTO{
			UserID:            string(c.User.ID),
			Name:              c.User.Name,
			Real:              c.Real.Float64(),
			Calculated:        c.Calculated.Float64(),
			Expected:          c.Expected.Float64(),
			Deviation:         c.Deviation.Float64(),
			CompensationDelta: c.CompensationDelta.Float64(),
		})
	}
	dto.Totals.Real = m.Totals.Real.Float64()
	dto.Totals.Calculated = m.Totals.Calculated.Float64()
	dto.Totals.Expected = m.Totals.Expected.Float64()
	return dto
}

func toTeamReportDTO(r report.TeamReport) TeamReportDTO {
	dto := TeamReportDTO{
		Year:              r.Year,
		Month:             int(r.Month),
		Department:        r.Department,
		TotalReal:         r.TotalReal.Float64(),
		TotalCalculated:   r.TotalCalculated.Float64(),
		TotalExpected:     r.TotalExpected.Float64(),
		CompliancePercent: r.CompliancePercent.Float64(),
	}
	for _, row := range r.Rows {
		dto.Rows = append(dto.Rows, TeamRowDTO{
			UserID:            string(row.User.ID),
			Name:              row.User.Name,
			Department:        row.User.Department,
			DepartmentLabel:   row.DepartmentLabel,
			Real:              row.Real.Float64(),
			Calculated:        row.Calculated.Float64(),
			Expected:          row.Expected.Float64(),
			Deviation:         row.Deviation.Float64(),
			CompliancePercent: row.CompliancePercent.Float64(),
			Saldo:             row.Saldo.Float64(),
			DaysUnfilled:      row.DaysUnfilled,
			ProblemCount:      row.ProblemCount,
		})
	}
	return dto
}

func toProjectReportDTO(r report.ProjectReport) ProjectReportDTO {
	dto := ProjectReportDTO{
		Year:            r.Year,
		TotalReal:       r.TotalReal.Float64(),
		TotalCalculated: r.TotalCalculated.Float64(),
	}
	for _, p := range r.Projects {
		py := ProjectYearDTO{
			ProjectID:  string(p.Project.ID),
			Code:       p.Project.Code,
			Name:       p.Project.Name,
			Real:       p.Real.Float64(),
			Calculated: p.Calculated.Float64(),
		}
		for _, m := range p.Months {
			py.Months = append(py.Months, ProjectMonthDTO{
				Month:      int(m.Month),
				Real:       m.Real.Float64(),
				Calculated: m.Calculated.Float64(),
			})
		}
		for _, u := range p.Users {
			py.Users = append(py.Users, ProjectUserDTO{
				UserID:     string(u.User.ID),
				Name:       u.User.Name,
				Real:       u.Real.Float64(),
				Calculated: u.Calculated.Float64(),
			})
		}
		dto.Projects = append(dto.Projects, py)
	}
	return dto
}

func toProblemDTOs(problems []control.ValidationError) []ProblemDTO {
	var out []ProblemDTO
	for _, p := range problems {
		out = append(out, ProblemDTO{
			Date:    p.Date.String(),
			EntryID: p.EntryID,
			Message: p.Error(),
		})
	}
	return out
}

func toWarningDTOs(warnings []control.ConfigWarning) []WarningDTO {
	var out []WarningDTO
	for _, w := range warnings {
		out = append(out, WarningDTO{Code: w.Code, Message: w.Message})
	}
	return out
}
