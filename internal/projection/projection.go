// Package projection turns a saved lump sum into an inflation-adjusted
// retirement figure under one of two investment schemes.
package projection

import (
	"math"

	"github.com/Veraticus/roundup/internal/tax"
)

const (
	// RetirementAge is the age the projection horizon runs to.
	RetirementAge = 60
	// MinimumHorizon is used for anyone already at or past retirement age.
	MinimumHorizon = 5

	// maxDeduction caps the deductible contribution for the NPS scheme.
	maxDeduction = 200_000.0
	// deductionShare is the fraction of annual income that may be deducted.
	deductionShare = 0.10
)

// Scheme selects the growth regime.
type Scheme string

// Supported schemes.
const (
	// SchemeNPS is the tax-advantaged pension scheme.
	SchemeNPS Scheme = "nps"
	// SchemeIndex is plain index-fund growth with no tax benefit.
	SchemeIndex Scheme = "index"
)

// ParseScheme maps a mode string to a scheme. Only the exact string "nps"
// selects NPS; anything else, including an empty mode, means index.
func ParseScheme(mode string) Scheme {
	if mode == string(SchemeNPS) {
		return SchemeNPS
	}
	return SchemeIndex
}

// Rate returns the fixed annual growth rate of the scheme.
func (s Scheme) Rate() float64 {
	if s == SchemeNPS {
		return 0.0711
	}
	return 0.1449
}

// Params describes the saver.
type Params struct {
	Age          int
	AnnualIncome float64
	Inflation    float64 // annual rate as a fraction, 0.06 for 6%
}

// Result is the outcome of one projection.
type Result struct {
	RealValue  float64 // future value in today's money
	Profit     float64 // RealValue minus the amount invested
	TaxBenefit float64 // zero for SchemeIndex
}

// Horizon returns the number of years the investment grows.
func Horizon(age int) int {
	if age < RetirementAge {
		return RetirementAge - age
	}
	return MinimumHorizon
}

// Project compounds invested once per year until retirement and deflates the
// result. Only the lump sum grows; no further contributions are modelled.
func Project(scheme Scheme, invested float64, p Params) Result {
	years := float64(Horizon(p.Age))

	future := invested * math.Pow(1+scheme.Rate(), years)
	realValue := future / math.Pow(1+p.Inflation, years)

	res := Result{
		RealValue: realValue,
		Profit:    realValue - invested,
	}
	if scheme == SchemeNPS {
		res.TaxBenefit = tax.Rebate(p.AnnualIncome, Deduction(invested, p.AnnualIncome))
	}
	return res
}

// Deduction is the part of invested that is tax deductible under NPS.
func Deduction(invested, annualIncome float64) float64 {
	return math.Min(invested, math.Min(annualIncome*deductionShare, maxDeduction))
}
