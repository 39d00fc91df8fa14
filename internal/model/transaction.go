package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrRemanentAssigned is returned when a transaction's remanent is written twice.
var ErrRemanentAssigned = errors.New("remanent already assigned")

// Transaction represents a single dated spend as seen by the savings engine.
type Transaction struct {
	Time    int64 // comparable date key, see datekey.Parse
	Amount  int64
	Ceiling int64 // amount rounded up to the next multiple of 100
	ID      int   // input order, only used to break ties

	remanent int64
	settled  bool
}

// NewTransaction creates an unsettled transaction.
func NewTransaction(id int, time, amount, ceiling int64) Transaction {
	return Transaction{
		ID:      id,
		Time:    time,
		Amount:  amount,
		Ceiling: ceiling,
	}
}

// SetRemanent records the final remanent. It can only be called once.
func (t *Transaction) SetRemanent(v int64) error {
	if t.settled {
		return fmt.Errorf("%w: transaction %d", ErrRemanentAssigned, t.ID)
	}
	t.remanent = v
	t.settled = true
	return nil
}

// Remanent returns the savings contribution assigned to the transaction.
func (t *Transaction) Remanent() int64 {
	return t.remanent
}

// Settled reports whether the remanent has been assigned.
func (t *Transaction) Settled() bool {
	return t.settled
}

// RoundUp returns the distance from amount to the next multiple of 100.
// Exact multiples round up by nothing.
func RoundUp(amount int64) int64 {
	rem := amount % 100
	if rem == 0 {
		return 0
	}
	return 100 - rem
}

// CeilingOf rounds a raw amount up to the next multiple of 100.
func CeilingOf(amount float64) int64 {
	return int64(math.Ceil(amount/100.0) * 100)
}
