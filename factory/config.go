/*
Package factory provides JSON to Go configuration conversion.

PURPOSE:
  Converts JSON configuration into the immutable process-wide tables the
  engine and report builders consume: the recurring national holiday
  table, the default daily shift, and department labels/colors. Loaded
  once at startup, passed explicitly, never mutated at runtime.

WHY JSON?
  - Ops can adjust the holiday table without code changes
  - Version control for configuration
  - Easy integration with an admin UI later

JSON SCHEMA:
  {
    "default_shift_hours": 8,
    "national_holidays": [
      {"month": 1, "day": 1, "name": "New Year"},
      {"month": 12, "day": 25, "name": "Christmas"}
    ],
    "departments": [
      {"name": "engineering", "label": "Engineering", "color": "#4f46e5"}
    ]
  }

DEFAULTS:
  Default() carries the fixed national table used when no config file is
  supplied, so a bare binary still classifies months correctly.

SEE ALSO:
  - control/time.go: MonthDay and FixedHolidays
  - report/: consumes department labels
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nimbus/timecontrol/control"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type Config struct {
	DefaultShiftHours float64       `json:"default_shift_hours,omitempty"`
	NationalHolidays  []HolidayJSON `json:"national_holidays,omitempty"`
	Departments       []Department  `json:"departments,omitempty"`
}

// HolidayJSON is one recurring national holiday (same month/day each year).
type HolidayJSON struct {
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Name  string `json:"name,omitempty"`
}

// Department is a display-only label/color pair keyed by department name.
type Department struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration: 8h shift and the fixed
// national holiday table.
func Default() Config {
	return Config{
		DefaultShiftHours: control.DefaultShiftHours,
		NationalHolidays: []HolidayJSON{
			{Month: 1, Day: 1, Name: "New Year"},
			{Month: 1, Day: 6, Name: "Epiphany"},
			{Month: 5, Day: 1, Name: "Labour Day"},
			{Month: 8, Day: 15, Name: "Assumption"},
			{Month: 10, Day: 12, Name: "National Day"},
			{Month: 11, Day: 1, Name: "All Saints"},
			{Month: 12, Day: 6, Name: "Constitution Day"},
			{Month: 12, Day: 8, Name: "Immaculate Conception"},
			{Month: 12, Day: 25, Name: "Christmas"},
		},
	}
}

// =============================================================================
// PARSING
// =============================================================================

// Parse validates and decodes a JSON configuration. Missing fields fall
// back to Default() values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DefaultShiftHours < 0 || cfg.DefaultShiftHours > 24 {
		return Config{}, fmt.Errorf("parse config: default_shift_hours %v out of range", cfg.DefaultShiftHours)
	}
	for _, h := range cfg.NationalHolidays {
		if h.Month < 1 || h.Month > 12 || h.Day < 1 || h.Day > 31 {
			return Config{}, fmt.Errorf("parse config: holiday %d/%d out of range", h.Month, h.Day)
		}
	}
	return cfg, nil
}

// LoadFile reads a configuration file. A missing path returns Default().
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// =============================================================================
// CONVERSION
// =============================================================================

// NationalTable converts the holiday list to the engine's MonthDay form.
func (c Config) NationalTable() []control.MonthDay {
	out := make([]control.MonthDay, 0, len(c.NationalHolidays))
	for _, h := range c.NationalHolidays {
		out = append(out, control.MonthDay{Month: time.Month(h.Month), Day: h.Day})
	}
	return out
}

// DefaultShift returns the configured fallback shift as Hours.
func (c Config) DefaultShift() control.Hours {
	if c.DefaultShiftHours <= 0 {
		return control.HoursFromInt(control.DefaultShiftHours)
	}
	return control.HoursOf(c.DefaultShiftHours)
}

// DepartmentLabel resolves a department's display label, falling back to
// the raw name.
func (c Config) DepartmentLabel(name string) string {
	for _, d := range c.Departments {
		if d.Name == name {
			return d.Label
		}
	}
	return name
}

// DepartmentColor resolves a department's display color, empty if unknown.
func (c Config) DepartmentColor(name string) string {
	for _, d := range c.Departments {
		if d.Name == name {
			return d.Color
		}
	}
	return ""
}
