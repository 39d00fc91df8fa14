// Package ledger prepares raw expenses for evaluation: it derives ceilings
// and remanents, enforces the yearly investment limit and checks dates and
// periods before the engine sees them.
package ledger

import (
	"fmt"

	"github.com/Veraticus/roundup/internal/document"
	"github.com/Veraticus/roundup/internal/model"
	"github.com/google/uuid"
)

// Entry statuses.
const (
	StatusValid              = "valid"
	StatusInvalidAmount      = "invalid_amount"
	StatusDuplicate          = "duplicate"
	StatusExceedsLimit       = "invalid_exceeds_limit"
	StatusDuplicateTimestamp = "invalid_duplicate_timestamp"
	StatusInvalidTimestamp   = "invalid_timestamp_format"
)

// Expense is a raw spend as submitted by a client.
type Expense struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Entry is an expense with its derived savings figures.
type Entry struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"`
	Ceiling  int64   `json:"ceiling"`
	Remanent float64 `json:"remanent"`
}

// Rejection pairs an entry with the reason it was refused.
type Rejection struct {
	Transaction Entry  `json:"transaction"`
	Reason      string `json:"reason"`
}

// idSource generates the random part of entry ids.
var idSource = func() string {
	return uuid.NewString()[:4]
}

// Build derives the ceiling and remanent of every expense. Non-positive
// amounts are kept but marked invalid with zero figures.
func Build(expenses []Expense) []Entry {
	entries := make([]Entry, 0, len(expenses))
	for i, exp := range expenses {
		entry := Entry{
			ID:     fmt.Sprintf("txn_%d_%s", i, idSource()),
			Date:   exp.Date,
			Amount: exp.Amount,
			Status: StatusValid,
		}
		if exp.Amount <= 0 {
			entry.Status = StatusInvalidAmount
		} else {
			entry.Ceiling = model.CeilingOf(exp.Amount)
			entry.Remanent = float64(entry.Ceiling) - exp.Amount
		}
		entries = append(entries, entry)
	}
	return entries
}

// Transactions converts valid entries to request transactions.
func Transactions(entries []Entry) []document.Transaction {
	out := make([]document.Transaction, 0, len(entries))
	for _, e := range entries {
		if e.Status != StatusValid {
			continue
		}
		out = append(out, document.Transaction{Date: e.Date, Amount: e.Amount})
	}
	return out
}
