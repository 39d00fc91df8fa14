package engine

import (
	"github.com/Veraticus/roundup/internal/datekey"
	"github.com/Veraticus/roundup/internal/document"
	"github.com/Veraticus/roundup/internal/model"
)

// Inputs is a request converted to engine types.
type Inputs struct {
	Transactions []model.Transaction
	Overrides    []model.OverridePeriod
	Additives    []model.AdditivePeriod
	Windows      []model.Window
	TotalAmount  float64 // sum of raw amounts
	TotalCeiling float64 // sum of rounded-up ceilings
}

// Prepare keys every date and converts amounts. Amounts, fixed values and
// extras are truncated to whole units; the totals use the raw amounts.
func Prepare(req *document.Request) Inputs {
	in := Inputs{
		Transactions: make([]model.Transaction, 0, len(req.Transactions)),
		Overrides:    make([]model.OverridePeriod, 0, len(req.QPeriods)),
		Additives:    make([]model.AdditivePeriod, 0, len(req.PPeriods)),
		Windows:      make([]model.Window, 0, len(req.KPeriods)),
	}

	for i, t := range req.Transactions {
		ceiling := model.CeilingOf(t.Amount)
		in.TotalAmount += t.Amount
		in.TotalCeiling += float64(ceiling)
		in.Transactions = append(in.Transactions,
			model.NewTransaction(i, datekey.Parse(t.Date), int64(t.Amount), ceiling))
	}

	for i, q := range req.QPeriods {
		in.Overrides = append(in.Overrides, model.OverridePeriod{
			Start: datekey.Parse(q.Start),
			End:   datekey.Parse(q.End),
			Fixed: int64(q.Fixed),
			ID:    i,
		})
	}

	for _, p := range req.PPeriods {
		in.Additives = append(in.Additives, model.AdditivePeriod{
			Start: datekey.Parse(p.Start),
			End:   datekey.Parse(p.End),
			Extra: int64(p.Extra),
		})
	}

	for _, k := range req.KPeriods {
		in.Windows = append(in.Windows, model.Window{
			Start: datekey.Parse(k.Start),
			End:   datekey.Parse(k.End),
		})
	}

	return in
}
