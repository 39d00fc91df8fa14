package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveOverrides(t *testing.T) {
	a := newActiveOverrides()

	_, ok := a.Top()
	assert.False(t, ok, "empty set has no top")

	a.Insert(OverrideKey{Start: 10, ID: 2}, 200)
	a.Insert(OverrideKey{Start: 30, ID: 5}, 500)
	a.Insert(OverrideKey{Start: 30, ID: 1}, 100)
	assert.Equal(t, 3, a.Len())

	top, ok := a.Top()
	assert.True(t, ok)
	assert.Equal(t, int64(100), top, "latest start, smallest id")

	a.Remove(OverrideKey{Start: 30, ID: 1})
	top, _ = a.Top()
	assert.Equal(t, int64(500), top)

	a.Remove(OverrideKey{Start: 30, ID: 5})
	top, _ = a.Top()
	assert.Equal(t, int64(200), top)
	assert.Equal(t, 1, a.Len())
}

func TestActiveOverrides_DuplicateInsertIsNoop(t *testing.T) {
	a := newActiveOverrides()
	key := OverrideKey{Start: 1, ID: 0}

	a.Insert(key, 7)
	a.Insert(key, 7)
	assert.Equal(t, 1, a.Len())

	a.Remove(key)
	_, ok := a.Top()
	assert.False(t, ok)
}

func TestActiveOverrides_ReinsertAfterLazyRemove(t *testing.T) {
	a := newActiveOverrides()
	key := OverrideKey{Start: 1, ID: 0}

	a.Insert(OverrideKey{Start: 5, ID: 1}, 50)
	a.Insert(key, 10)
	a.Remove(key) // still buried under the start=5 entry
	a.Insert(key, 10)
	a.Remove(OverrideKey{Start: 5, ID: 1})

	top, ok := a.Top()
	assert.True(t, ok)
	assert.Equal(t, int64(10), top)
	assert.Equal(t, 1, a.Len())
}

func TestActiveOverrides_RemoveMissing(t *testing.T) {
	a := newActiveOverrides()
	a.Remove(OverrideKey{Start: 1, ID: 1})
	assert.Equal(t, 0, a.Len())
}
