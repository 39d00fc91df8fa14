package ledger

import (
	"fmt"
	"time"

	"github.com/Veraticus/roundup/internal/document"
)

// TimestampLayout is the only date format accepted by Filter.
const TimestampLayout = "2006-01-02 15:04:05"

// Period is a q, p or k period as submitted to Filter.
type Period struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Fixed *float64 `json:"fixed,omitempty"`
	Extra *float64 `json:"extra,omitempty"`
}

// TemporalRequest is the input to Filter.
type TemporalRequest struct {
	Transactions []Entry  `json:"transactions"`
	QPeriods     []Period `json:"q_periods"`
	PPeriods     []Period `json:"p_periods"`
	KPeriods     []Period `json:"k_periods"`
	Wage         float64  `json:"wage"`
}

// PeriodError explains why a period was flagged.
type PeriodError struct {
	Period string `json:"period"`
	Reason string `json:"reason"`
}

// FilterResult is the outcome of Filter.
type FilterResult struct {
	Valid        []Entry       `json:"valid_transactions"`
	Invalid      []Rejection   `json:"invalid_transactions"`
	PeriodErrors []PeriodError `json:"period_errors"`
}

// Filter checks timestamps and periods. Entries that arrive with a status
// other than valid are passed through as rejected. Periods are checked
// against the bounds of the accepted transactions: start must not follow end,
// both ends must lie within the transaction range and k periods may not span
// two calendar years.
func Filter(req TemporalRequest) FilterResult {
	res := FilterResult{
		Valid:        []Entry{},
		Invalid:      []Rejection{},
		PeriodErrors: []PeriodError{},
	}

	seen := make(map[string]struct{}, len(req.Transactions))
	var first, last time.Time
	for _, e := range req.Transactions {
		if e.Status != StatusValid {
			res.Invalid = append(res.Invalid, Rejection{
				Transaction: e,
				Reason:      fmt.Sprintf("transaction already has status %s", e.Status),
			})
			continue
		}

		ts, err := time.Parse(TimestampLayout, e.Date)
		if err != nil {
			e.Status = StatusInvalidTimestamp
			res.Invalid = append(res.Invalid, Rejection{
				Transaction: e,
				Reason:      fmt.Sprintf("date %q does not match %s", e.Date, TimestampLayout),
			})
			continue
		}

		if _, dup := seen[e.Date]; dup {
			e.Status = StatusDuplicateTimestamp
			res.Invalid = append(res.Invalid, Rejection{
				Transaction: e,
				Reason:      fmt.Sprintf("a transaction at %s already exists", e.Date),
			})
			continue
		}
		seen[e.Date] = struct{}{}

		if len(res.Valid) == 0 || ts.Before(first) {
			first = ts
		}
		if len(res.Valid) == 0 || ts.After(last) {
			last = ts
		}
		res.Valid = append(res.Valid, e)
	}

	if len(res.Valid) == 0 {
		res.PeriodErrors = append(res.PeriodErrors, PeriodError{
			Period: "global",
			Reason: "no valid transactions available to establish temporal bounds",
		})
		return res
	}

	res.PeriodErrors = append(res.PeriodErrors, checkPeriods("q", req.QPeriods, first, last)...)
	res.PeriodErrors = append(res.PeriodErrors, checkPeriods("p", req.PPeriods, first, last)...)
	res.PeriodErrors = append(res.PeriodErrors, checkPeriods("k", req.KPeriods, first, last)...)

	return res
}

func checkPeriods(family string, periods []Period, first, last time.Time) []PeriodError {
	var errs []PeriodError
	for i, p := range periods {
		name := fmt.Sprintf("%s_%d", family, i)

		start, err := time.Parse(TimestampLayout, p.Start)
		if err != nil {
			errs = append(errs, PeriodError{Period: name, Reason: "one or more timestamps have an invalid format"})
			continue
		}
		end, err := time.Parse(TimestampLayout, p.End)
		if err != nil {
			errs = append(errs, PeriodError{Period: name, Reason: "one or more timestamps have an invalid format"})
			continue
		}

		if start.After(end) {
			errs = append(errs, PeriodError{
				Period: name,
				Reason: fmt.Sprintf("start (%s) is after end (%s)", p.Start, p.End),
			})
		}
		if start.Before(first) || end.After(last) {
			errs = append(errs, PeriodError{
				Period: name,
				Reason: fmt.Sprintf("period is outside the transaction range (%s to %s)",
					first.Format(TimestampLayout), last.Format(TimestampLayout)),
			})
		}
		if family == "k" && start.Year() != end.Year() {
			errs = append(errs, PeriodError{
				Period: name,
				Reason: fmt.Sprintf("k period spans multiple years (%d to %d)", start.Year(), end.Year()),
			})
		}
	}
	return errs
}

// FixedPeriods converts q periods to request form; a missing fixed value is zero.
func FixedPeriods(periods []Period) []document.FixedPeriod {
	out := make([]document.FixedPeriod, 0, len(periods))
	for _, p := range periods {
		fp := document.FixedPeriod{Start: p.Start, End: p.End}
		if p.Fixed != nil {
			fp.Fixed = *p.Fixed
		}
		out = append(out, fp)
	}
	return out
}

// ExtraPeriods converts p periods to request form; a missing extra is zero.
func ExtraPeriods(periods []Period) []document.ExtraPeriod {
	out := make([]document.ExtraPeriod, 0, len(periods))
	for _, p := range periods {
		ep := document.ExtraPeriod{Start: p.Start, End: p.End}
		if p.Extra != nil {
			ep.Extra = *p.Extra
		}
		out = append(out, ep)
	}
	return out
}

// Windows converts k periods to request form.
func Windows(periods []Period) []document.Window {
	out := make([]document.Window, 0, len(periods))
	for _, p := range periods {
		out = append(out, document.Window{Start: p.Start, End: p.End})
	}
	return out
}
