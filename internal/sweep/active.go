package sweep

import "container/heap"

// activeOverrides is the set of open override periods. Top returns the fixed
// value of the latest-starting one. Removal is lazy: entries are only popped
// from the heap once they surface at the top.
type activeOverrides struct {
	heap    overrideHeap
	fixed   map[OverrideKey]int64
	removed map[OverrideKey]struct{}
}

func newActiveOverrides() *activeOverrides {
	return &activeOverrides{
		fixed:   make(map[OverrideKey]int64),
		removed: make(map[OverrideKey]struct{}),
	}
}

// Insert adds key to the set. Inserting a key that is already present is a no-op.
func (a *activeOverrides) Insert(key OverrideKey, fixed int64) {
	if _, ok := a.fixed[key]; ok {
		return
	}
	a.fixed[key] = fixed

	// still physically in the heap, just resurrect it
	if _, ok := a.removed[key]; ok {
		delete(a.removed, key)
		return
	}
	heap.Push(&a.heap, key)
}

// Remove drops key from the set if present.
func (a *activeOverrides) Remove(key OverrideKey) {
	if _, ok := a.fixed[key]; !ok {
		return
	}
	delete(a.fixed, key)
	a.removed[key] = struct{}{}
}

// Top returns the fixed value of the winning override.
func (a *activeOverrides) Top() (int64, bool) {
	for a.heap.Len() > 0 {
		key := a.heap[0]
		if _, gone := a.removed[key]; gone {
			heap.Pop(&a.heap)
			delete(a.removed, key)
			continue
		}
		return a.fixed[key], true
	}
	return 0, false
}

// Len returns the number of live overrides.
func (a *activeOverrides) Len() int {
	return len(a.fixed)
}

type overrideHeap []OverrideKey

func (h overrideHeap) Len() int           { return len(h) }
func (h overrideHeap) Less(i, j int) bool { return h[i].before(h[j]) }
func (h overrideHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *overrideHeap) Push(x any) {
	*h = append(*h, x.(OverrideKey))
}

func (h *overrideHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
