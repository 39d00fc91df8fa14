package document

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRequest = `{
	"age": 29,
	"wage": 50000,
	"inflation": 5.5,
	"transactions": [
		{"date": "2023-10-12 20:15:30", "amount": 250},
		{"id": "txn_1_ab12", "date": "2023-02-28 15:49:20", "amount": 375, "ceiling": 400, "remanent": 25, "status": "valid"}
	],
	"q_periods": [{"start": "2023-07-01 00:00:00", "end": "2023-07-31 23:59:59", "fixed": 0}],
	"p_periods": [{"start": "2023-10-01 08:00:00", "end": "2023-12-31 19:59:59", "extra": 25}],
	"k_periods": [{"start": "2023-01-01 00:00:00", "end": "2023-12-31 23:59:59"}]
}`

func TestDecode(t *testing.T) {
	req, err := Decode(strings.NewReader(sampleRequest))
	require.NoError(t, err)

	assert.Equal(t, DefaultMode, req.Mode)
	assert.Equal(t, 29, req.Age)
	assert.InDelta(t, 600_000, req.AnnualIncome(), 1e-9)
	assert.InDelta(t, 0.055, req.InflationRate(), 1e-12)
	require.Len(t, req.Transactions, 2)
	assert.Equal(t, "2023-02-28 15:49:20", req.Transactions[1].Date)
	assert.InDelta(t, 375, req.Transactions[1].Amount, 1e-9)
	require.Len(t, req.QPeriods, 1)
	require.Len(t, req.PPeriods, 1)
	assert.InDelta(t, 25, req.PPeriods[0].Extra, 1e-9)
	require.Len(t, req.KPeriods, 1)
	assert.Equal(t, "2023-12-31 23:59:59", req.KPeriods[0].End)
}

func TestDecode_ExplicitMode(t *testing.T) {
	req, err := Decode(strings.NewReader(`{"mode": "index", "age": 30}`))
	require.NoError(t, err)
	assert.Equal(t, "index", req.Mode)
	assert.Empty(t, req.Transactions)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "truncated", input: `{"age": 3`},
		{name: "wrong type", input: `{"age": "old"}`},
		{name: "not an object", input: `[1, 2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestEncode_FieldOrder(t *testing.T) {
	resp := &Response{
		TotalTransactionAmount: 625,
		TotalCeiling:           700,
		SavingsByDates: []Savings{
			{Start: "a", End: "b", Amount: 75, Profit: 44.53, TaxBenefit: 0},
		},
		Performance: &Performance{ExecutionTimeUs: 12, Complexity: "O(N log N)", Engine: "test"},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, resp))
	out := buf.String()

	order := []string{
		`"totalTransactionAmount"`,
		`"totalCeiling"`,
		`"savingsByDates"`,
		`"start"`,
		`"end"`,
		`"amount"`,
		`"profit"`,
		`"taxBenefit"`,
		`"performance"`,
		`"executionTimeUs"`,
		`"complexity"`,
		`"engine"`,
	}
	last := -1
	for _, key := range order {
		pos := strings.Index(out, key)
		require.Greater(t, pos, last, "%s out of order", key)
		last = pos
	}

	assert.True(t, strings.HasPrefix(out, "{\n    \"totalTransactionAmount\""), "four space indent")
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestEncode_OmitsPerformance(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Response{SavingsByDates: []Savings{}}))
	assert.NotContains(t, buf.String(), "performance")
	assert.Contains(t, buf.String(), `"savingsByDates": []`)
}

func TestRound(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		places int
		want   float64
	}{
		{name: "one place down", value: 12.34, places: 1, want: 12.3},
		{name: "half away from zero", value: 0.25, places: 1, want: 0.3},
		{name: "negative half away from zero", value: -0.25, places: 1, want: -0.3},
		{name: "two places", value: 44.5349, places: 2, want: 44.53},
		{name: "binary value below the half", value: 1.005, places: 2, want: 1.0},
		{name: "one place half", value: 21.75, places: 1, want: 21.8},
		{name: "integer unchanged", value: 150, places: 1, want: 150},
		{name: "zero", value: 0, places: 2, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round(tt.value, tt.places), 1e-12)
		})
	}
}
