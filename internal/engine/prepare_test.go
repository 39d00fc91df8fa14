package engine

import (
	"testing"

	"github.com/Veraticus/roundup/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare(t *testing.T) {
	req := &document.Request{
		Transactions: []document.Transaction{
			{Date: "2024-01-02 10:00:00", Amount: 250.75},
			{Date: "2024-01-01 09:00:00", Amount: 90},
		},
		QPeriods: []document.FixedPeriod{{Start: "2024-01-01 00:00:00", End: "2024-01-31 00:00:00", Fixed: 40}},
		PPeriods: []document.ExtraPeriod{{Start: "2024-01-01 00:00:00", End: "2024-01-15 00:00:00", Extra: 5.9}},
		KPeriods: []document.Window{{Start: "2024-01-01 00:00:00", End: "2024-12-31 23:59:59"}},
	}

	in := Prepare(req)

	require.Len(t, in.Transactions, 2)
	assert.Equal(t, int64(20240102100000), in.Transactions[0].Time)
	assert.Equal(t, int64(250), in.Transactions[0].Amount, "amounts truncate to whole units")
	assert.Equal(t, int64(300), in.Transactions[0].Ceiling)
	assert.Equal(t, 1, in.Transactions[1].ID)
	assert.False(t, in.Transactions[0].Settled())

	assert.InDelta(t, 340.75, in.TotalAmount, 1e-9)
	assert.InDelta(t, 400.0, in.TotalCeiling, 1e-9)

	require.Len(t, in.Overrides, 1)
	assert.Equal(t, int64(40), in.Overrides[0].Fixed)
	assert.Equal(t, 0, in.Overrides[0].ID)

	require.Len(t, in.Additives, 1)
	assert.Equal(t, int64(5), in.Additives[0].Extra)

	require.Len(t, in.Windows, 1)
	assert.Equal(t, int64(20241231235959), in.Windows[0].End)
}
