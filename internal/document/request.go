// Package document defines the JSON documents the engine reads and writes.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedDocument is returned when the input cannot be decoded.
var ErrMalformedDocument = errors.New("malformed input document")

// DefaultMode is used when the request carries no mode.
const DefaultMode = "nps"

// Request is the evaluation input.
type Request struct {
	Mode         string        `json:"mode"`
	Transactions []Transaction `json:"transactions"`
	QPeriods     []FixedPeriod `json:"q_periods"`
	PPeriods     []ExtraPeriod `json:"p_periods"`
	KPeriods     []Window      `json:"k_periods"`
	Age          int           `json:"age"`
	Wage         float64       `json:"wage"`      // monthly
	Inflation    float64       `json:"inflation"` // percent, 6 means 6%
}

// Transaction is a raw spend. Fields written by the ledger endpoints (id,
// ceiling, remanent, status) may be present and are ignored.
type Transaction struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// FixedPeriod is a q-period: transactions inside it save Fixed instead of
// their round-up.
type FixedPeriod struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Fixed float64 `json:"fixed"`
}

// ExtraPeriod is a p-period: transactions inside it save Extra on top.
type ExtraPeriod struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Extra float64 `json:"extra"`
}

// Window is a k-period query range.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AnnualIncome converts the monthly wage to a yearly figure.
func (r *Request) AnnualIncome() float64 {
	return r.Wage * 12
}

// InflationRate returns inflation as a fraction.
func (r *Request) InflationRate() float64 {
	return r.Inflation / 100
}

// Decode reads one request from r. A missing mode defaults to DefaultMode.
func Decode(r io.Reader) (*Request, error) {
	req := &Request{Mode: DefaultMode}
	if err := json.NewDecoder(r).Decode(req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMalformedDocument)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return req, nil
}
