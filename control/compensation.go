/*
compensation.go - Sequential hour-compensation allocator

PURPOSE:
  For one user and one month, derives the CALCULATED hours series from the
  real one: display hours are capped at the daily shift length, and the
  excess is carried forward as a running balance that tops up later
  under-worked days. The real series is never touched; payroll and audit
  read it unchanged.

ALGORITHM (single chronological pass, greedy, no look-ahead):
  balance starts at zero every month, never carried in from the previous
  one. For each day in date order:

    - non-workable or absence day: calculated = real, balance untouched
    - real > cap:  surplus = real - cap
                   calculated = cap, balance += surplus
    - real < cap and balance > 0:
                   applied = min(balance, cap - real)
                   calculated = real + applied, balance -= applied
    - otherwise:   calculated = real

  Whatever balance survives the last day is the month's unresolved saldo.
  It is surfaced on the result, never invented into future months and
  never hidden.

WHY GREEDY AND ORDERED:
  O(n), deterministic, and causally stable: adding a future entry never
  changes an already-computed past day's calculated value. A scheduler
  recomputing month-to-date on every request gets identical prefixes.

ROUNDING:
  The balance accumulates at full precision. Only the reported saldo is
  rounded (one decimal, half away from zero); per-day display rounding is
  the presentation layer's concern.

SEE ALSO:
  - day.go: produces the aggregated input series
  - matrix.go: sums allocator output across users and projects
*/
package control

// CompensationResult is the allocator output for one user-month.
type CompensationResult struct {
	Days []DayRecord

	// Saldo is the unresolved positive balance at month end, rounded for
	// display. Zero whenever every surplus found a deficit day.
	Saldo Hours
}

// Allocate runs the compensation pass over a month of aggregated days.
// The input slice is not modified; the returned days carry the calculated
// ledger. Days must be in chronological order, as ClassifyMonth emits them.
//
// A non-positive cap disables compensation entirely: calculated mirrors
// real on every day (the expected-hours side already treats an unset shift
// as zero, so nothing meaningful could be redistributed).
func Allocate(days []DayRecord, cap Hours) CompensationResult {
	out := make([]DayRecord, len(days))
	copy(out, days)

	if !cap.IsPositive() {
		for i := range out {
			out[i].CalculatedHours = out[i].RealHours
			out[i].BalanceAfter = ZeroHours()
		}
		return CompensationResult{Days: out, Saldo: ZeroHours()}
	}

	balance := ZeroHours()

	for i := range out {
		day := &out[i]
		day.CompensationApplied = ZeroHours()
		day.SurplusDeferred = ZeroHours()

		if !day.CompensatesInto() {
			// Holidays, weekends and absences pass through untouched.
			day.CalculatedHours = day.RealHours
			day.BalanceAfter = balance
			continue
		}

		real := day.RealHours
		switch {
		case real.GreaterThan(cap):
			surplus := real.Sub(cap)
			day.CalculatedHours = cap
			day.SurplusDeferred = surplus
			balance = balance.Add(surplus)

		case real.LessThan(cap) && balance.IsPositive():
			applied := balance.Min(cap.Sub(real))
			day.CalculatedHours = real.Add(applied)
			day.CompensationApplied = applied
			balance = balance.Sub(applied)

		default:
			day.CalculatedHours = real
		}

		day.BalanceAfter = balance
	}

	return CompensationResult{Days: out, Saldo: balance.Round1()}
}

// RealTotal sums the real ledger over days that participate in compensation.
func RealTotal(days []DayRecord) Hours {
	total := ZeroHours()
	for _, d := range days {
		if d.CompensatesInto() {
			total = total.Add(d.RealHours)
		}
	}
	return total
}

// CalculatedTotal sums the calculated ledger over days that participate in
// compensation.
func CalculatedTotal(days []DayRecord) Hours {
	total := ZeroHours()
	for _, d := range days {
		if d.CompensatesInto() {
			total = total.Add(d.CalculatedHours)
		}
	}
	return total
}

// DaysUnfilled counts workable, non-absence days with nothing logged.
func DaysUnfilled(days []DayRecord) int {
	n := 0
	for _, d := range days {
		if d.CompensatesInto() && d.RealHours.IsZero() {
			n++
		}
	}
	return n
}
