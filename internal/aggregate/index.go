// Package aggregate answers "how much was saved between two dates" over a
// settled set of transactions.
package aggregate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Veraticus/roundup/internal/model"
)

// ErrUnsettled is returned when building from a transaction without a remanent.
var ErrUnsettled = errors.New("transaction remanent not settled")

// Index is an immutable prefix-sum table over remanents ordered by time.
// It is safe for concurrent readers.
type Index struct {
	times  []int64
	prefix []int64 // prefix[i] = sum of the first i remanents
}

// Build sorts the transactions by (time, id) and computes prefix sums. Every
// transaction must already carry its final remanent.
func Build(txns []model.Transaction) (*Index, error) {
	order := make([]int, len(txns))
	for i := range txns {
		if !txns[i].Settled() {
			return nil, fmt.Errorf("%w: transaction %d", ErrUnsettled, txns[i].ID)
		}
		order[i] = i
	}

	sort.Slice(order, func(a, b int) bool {
		ta, tb := &txns[order[a]], &txns[order[b]]
		if ta.Time != tb.Time {
			return ta.Time < tb.Time
		}
		return ta.ID < tb.ID
	})

	idx := &Index{
		times:  make([]int64, len(txns)),
		prefix: make([]int64, len(txns)+1),
	}
	for i, j := range order {
		idx.times[i] = txns[j].Time
		idx.prefix[i+1] = idx.prefix[i] + txns[j].Remanent()
	}

	return idx, nil
}

// Sum returns the total remanent of transactions with start <= time <= end.
// An empty or inverted range sums to zero.
func (x *Index) Sum(start, end int64) int64 {
	lo := sort.Search(len(x.times), func(i int) bool { return x.times[i] >= start })
	hi := sort.Search(len(x.times), func(i int) bool { return x.times[i] > end })
	if lo >= hi {
		return 0
	}
	return x.prefix[hi] - x.prefix[lo]
}

// SumWindow is Sum over a model.Window.
func (x *Index) SumWindow(w model.Window) int64 {
	return x.Sum(w.Start, w.End)
}

// Len returns the number of indexed transactions.
func (x *Index) Len() int {
	return len(x.times)
}

// Total returns the sum of every remanent.
func (x *Index) Total() int64 {
	return x.prefix[len(x.prefix)-1]
}
