package sweep

import (
	"fmt"
	"sort"

	"github.com/Veraticus/roundup/internal/model"
)

// Kind identifies an event type. The numeric order is the tie-break applied
// to events sharing a timestamp: period starts come before transactions and
// period ends come after, so both bounds of every period are inclusive.
type Kind int

// Event kinds in tie-break order.
const (
	KindAdditiveStart Kind = iota + 1
	KindOverrideStart
	KindTransaction
	KindOverrideEnd
	KindAdditiveEnd
)

func (k Kind) String() string {
	switch k {
	case KindAdditiveStart:
		return "additive_start"
	case KindOverrideStart:
		return "override_start"
	case KindTransaction:
		return "transaction"
	case KindOverrideEnd:
		return "override_end"
	case KindAdditiveEnd:
		return "additive_end"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// OverrideKey orders active overrides: the latest start wins, equal starts
// fall back to the smallest declaration id.
type OverrideKey struct {
	Start int64
	ID    int
}

func (k OverrideKey) before(o OverrideKey) bool {
	if k.Start != o.Start {
		return k.Start > o.Start
	}
	return k.ID < o.ID
}

// Event is a single point on the sweep timeline. The set of implementations
// is closed; each carries only the payload its kind needs.
type Event interface {
	At() int64
	Kind() Kind
	apply(st *state, txns []model.Transaction) error
}

// AdditiveStart opens an additive period.
type AdditiveStart struct {
	Time  int64
	Extra int64
}

// AdditiveEnd closes an additive period.
type AdditiveEnd struct {
	Time  int64
	Extra int64
}

// OverrideStart opens a fixed-override period.
type OverrideStart struct {
	Time  int64
	Key   OverrideKey
	Fixed int64
}

// OverrideEnd closes a fixed-override period.
type OverrideEnd struct {
	Time int64
	Key  OverrideKey
}

// TransactionAt marks a transaction; Index points into the transaction slice.
type TransactionAt struct {
	Time  int64
	Index int
}

func (e AdditiveStart) At() int64 { return e.Time }
func (e AdditiveEnd) At() int64   { return e.Time }
func (e OverrideStart) At() int64 { return e.Time }
func (e OverrideEnd) At() int64   { return e.Time }
func (e TransactionAt) At() int64 { return e.Time }

func (AdditiveStart) Kind() Kind { return KindAdditiveStart }
func (AdditiveEnd) Kind() Kind   { return KindAdditiveEnd }
func (OverrideStart) Kind() Kind { return KindOverrideStart }
func (OverrideEnd) Kind() Kind   { return KindOverrideEnd }
func (TransactionAt) Kind() Kind { return KindTransaction }

func (e AdditiveStart) apply(st *state, _ []model.Transaction) error {
	st.extra += e.Extra
	return nil
}

func (e AdditiveEnd) apply(st *state, _ []model.Transaction) error {
	st.extra -= e.Extra
	return nil
}

func (e OverrideStart) apply(st *state, _ []model.Transaction) error {
	st.active.Insert(e.Key, e.Fixed)
	return nil
}

func (e OverrideEnd) apply(st *state, _ []model.Transaction) error {
	st.active.Remove(e.Key)
	return nil
}

func (e TransactionAt) apply(st *state, txns []model.Transaction) error {
	if e.Index < 0 || e.Index >= len(txns) {
		return fmt.Errorf("%w: index %d of %d", ErrUnknownTransaction, e.Index, len(txns))
	}
	txn := &txns[e.Index]

	remanent := model.RoundUp(txn.Amount)
	if fixed, ok := st.active.Top(); ok {
		remanent = fixed
	}
	remanent += st.extra

	return txn.SetRemanent(remanent)
}

// BuildEvents derives the sweep timeline from the input facts: one event per
// transaction and a start/end pair per period. The result is unsorted.
func BuildEvents(txns []model.Transaction, overrides []model.OverridePeriod, additives []model.AdditivePeriod) []Event {
	events := make([]Event, 0, len(txns)+2*len(overrides)+2*len(additives))

	for i, txn := range txns {
		events = append(events, TransactionAt{Time: txn.Time, Index: i})
	}

	for _, q := range overrides {
		key := OverrideKey{Start: q.Start, ID: q.ID}
		events = append(events,
			OverrideStart{Time: q.Start, Key: key, Fixed: q.Fixed},
			OverrideEnd{Time: q.End, Key: key},
		)
	}

	for _, p := range additives {
		events = append(events,
			AdditiveStart{Time: p.Start, Extra: p.Extra},
			AdditiveEnd{Time: p.End, Extra: p.Extra},
		)
	}

	return events
}

// Order sorts events by time, then kind. Events that tie on both keep their
// construction order so a given input always produces the same timeline.
func Order(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.At() != b.At() {
			return a.At() < b.At()
		}
		return a.Kind() < b.Kind()
	})
}
