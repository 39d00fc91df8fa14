// Package tax computes progressive slab income tax.
package tax

// Slab taxes the part of income strictly above Threshold at Rate.
type Slab struct {
	Threshold float64
	Rate      float64
}

// slabs are ordered from the highest threshold down.
var slabs = []Slab{
	{Threshold: 1_500_000, Rate: 0.30},
	{Threshold: 1_200_000, Rate: 0.20},
	{Threshold: 1_000_000, Rate: 0.15},
	{Threshold: 700_000, Rate: 0.10},
}

// Slabs returns a copy of the slab table, highest threshold first.
func Slabs() []Slab {
	out := make([]Slab, len(slabs))
	copy(out, slabs)
	return out
}

// Tax returns the tax owed on an annual income. Each slab's rate applies only
// to the slice of income above its threshold; income is then capped at that
// threshold before the next slab is considered.
func Tax(income float64) float64 {
	var owed float64
	for _, s := range slabs {
		if income > s.Threshold {
			owed += (income - s.Threshold) * s.Rate
			income = s.Threshold
		}
	}
	return owed
}

// Rebate is the tax saved by deducting deduction from income.
func Rebate(income, deduction float64) float64 {
	return Tax(income) - Tax(income-deduction)
}
