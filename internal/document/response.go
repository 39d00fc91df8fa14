package document

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// Response is the evaluation output. Field order is part of the format.
type Response struct {
	TotalTransactionAmount float64      `json:"totalTransactionAmount"`
	TotalCeiling           float64      `json:"totalCeiling"`
	SavingsByDates         []Savings    `json:"savingsByDates"`
	Performance            *Performance `json:"performance,omitempty"`
}

// Savings is the result for one query window. Start and End echo the input.
type Savings struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Amount     float64 `json:"amount"`
	Profit     float64 `json:"profit"`
	TaxBenefit float64 `json:"taxBenefit"`
}

// Performance is diagnostic information about one evaluation.
type Performance struct {
	ExecutionTimeUs int64  `json:"executionTimeUs"`
	Complexity      string `json:"complexity"`
	Engine          string `json:"engine"`
}

// Encode writes resp to w as 4-space indented JSON followed by a newline.
func Encode(w io.Writer, resp *Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}

// Round rounds v to places decimal places, halves away from zero. The
// scaling happens on the binary value, so 1.005 rounds to 1.0 at two places.
func Round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
