package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundUp(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   int64
	}{
		{name: "exact multiple", amount: 300, want: 0},
		{name: "zero", amount: 0, want: 0},
		{name: "small amount", amount: 50, want: 50},
		{name: "just over a hundred", amount: 101, want: 99},
		{name: "large amount", amount: 1519, want: 81},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundUp(tt.amount))
		})
	}
}

func TestCeilingOf(t *testing.T) {
	assert.Equal(t, int64(300), CeilingOf(250))
	assert.Equal(t, int64(100), CeilingOf(90))
	assert.Equal(t, int64(200), CeilingOf(200))
	assert.Equal(t, int64(200), CeilingOf(100.5))
}

func TestTransaction_SetRemanent(t *testing.T) {
	txn := NewTransaction(3, 20240101, 250, 300)
	assert.False(t, txn.Settled())

	require.NoError(t, txn.SetRemanent(50))
	assert.True(t, txn.Settled())
	assert.Equal(t, int64(50), txn.Remanent())

	err := txn.SetRemanent(70)
	require.ErrorIs(t, err, ErrRemanentAssigned)
	assert.Contains(t, err.Error(), "transaction 3")
	assert.Equal(t, int64(50), txn.Remanent(), "second write must not change the value")
}

