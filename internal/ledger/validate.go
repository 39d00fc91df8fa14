package ledger

import (
	"fmt"
	"math"
)

const (
	// maxInvestment caps the yearly investment regardless of wage.
	maxInvestment = 200_000.0
	// wageShare is the fraction of the wage that may be invested.
	wageShare = 0.10
)

// ValidationResult splits entries into accepted and rejected ones.
type ValidationResult struct {
	Valid   []Entry           `json:"valid_transactions"`
	Invalid []Rejection       `json:"invalid_transactions"`
	Summary ValidationSummary `json:"summary"`
}

// ValidationSummary reports how much of the limit was used.
type ValidationSummary struct {
	TotalInvested float64 `json:"total_invested"`
	Limit         float64 `json:"limit"`
}

// InvestmentLimit returns the most that may be invested for a wage.
func InvestmentLimit(wage float64) float64 {
	return math.Min(wage*wageShare, maxInvestment)
}

// Validate accepts entries in order until their remanents would exceed the
// investment limit. Repeated ids are rejected; an entry that is rejected for
// the limit does not reserve its id. Entries Build marked invalid_amount stay
// rejected.
func Validate(wage float64, entries []Entry) ValidationResult {
	limit := InvestmentLimit(wage)
	res := ValidationResult{
		Valid:   []Entry{},
		Invalid: []Rejection{},
		Summary: ValidationSummary{Limit: limit},
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Status == StatusInvalidAmount {
			res.Invalid = append(res.Invalid, Rejection{
				Transaction: e,
				Reason:      fmt.Sprintf("amount %v is not positive", e.Amount),
			})
			continue
		}

		if _, dup := seen[e.ID]; dup {
			e.Status = StatusDuplicate
			res.Invalid = append(res.Invalid, Rejection{
				Transaction: e,
				Reason:      fmt.Sprintf("transaction id %q has already been processed", e.ID),
			})
			continue
		}

		if res.Summary.TotalInvested+e.Remanent > limit {
			e.Status = StatusExceedsLimit
			res.Invalid = append(res.Invalid, Rejection{
				Transaction: e,
				Reason: fmt.Sprintf("adding %v would exceed the investment limit of %v, current total %v",
					e.Remanent, limit, res.Summary.TotalInvested),
			})
			continue
		}

		e.Status = StatusValid
		res.Summary.TotalInvested += e.Remanent
		res.Valid = append(res.Valid, e)
		seen[e.ID] = struct{}{}
	}

	return res
}
