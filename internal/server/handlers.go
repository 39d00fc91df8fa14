package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"

	"github.com/Veraticus/roundup/internal/common"
	"github.com/Veraticus/roundup/internal/document"
	"github.com/Veraticus/roundup/internal/engine"
	"github.com/Veraticus/roundup/internal/ledger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 10 << 20

// ValidateRequest is the body of the validator endpoint.
type ValidateRequest struct {
	Transactions []ledger.Entry `json:"transactions"`
	Wage         float64        `json:"wage"`
}

// ReturnsRequest is the body of the returns endpoints: raw expenses plus the
// q, p and k periods.
type ReturnsRequest struct {
	Transactions []ledger.Expense `json:"transactions"`
	Q            []ledger.Period  `json:"q"`
	P            []ledger.Period  `json:"p"`
	K            []ledger.Period  `json:"k"`
	Age          int              `json:"age"`
	Wage         float64          `json:"wage"`
	Inflation    float64          `json:"inflation"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var expenses []ledger.Expense
	if !decodeBody(w, r, &expenses) {
		return
	}
	writeJSON(w, r, http.StatusOK, ledger.Build(expenses))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, r, http.StatusOK, ledger.Validate(req.Wage, req.Transactions))
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req ledger.TemporalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, r, http.StatusOK, ledger.Filter(req))
}

// handleReturns runs the whole pipeline for a scheme: build, validate and
// filter the expenses, then evaluate what survives.
func (s *Server) handleReturns(mode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ReturnsRequest
		if !decodeBody(w, r, &body) {
			return
		}
		ctx := r.Context()

		validated := ledger.Validate(body.Wage, ledger.Build(body.Transactions))
		filtered := ledger.Filter(ledger.TemporalRequest{
			Transactions: validated.Valid,
			QPeriods:     body.Q,
			PPeriods:     body.P,
			KPeriods:     body.K,
			Wage:         body.Wage,
		})
		for _, pe := range filtered.PeriodErrors {
			common.LogDebug(ctx, "Period flagged", common.Fields{
				"request_id": RequestID(ctx),
				"period":     pe.Period,
				"reason":     pe.Reason,
			})
		}

		req := &document.Request{
			Mode:         mode,
			Transactions: ledger.Transactions(filtered.Valid),
			QPeriods:     ledger.FixedPeriods(body.Q),
			PPeriods:     ledger.ExtraPeriods(body.P),
			KPeriods:     ledger.Windows(body.K),
			Age:          body.Age,
			Wage:         body.Wage,
			Inflation:    body.Inflation,
		}

		s.engineCalls.Add(1)
		resp, err := s.evaluator.Evaluate(ctx, req)
		if err != nil {
			common.LogError(ctx, err, "Evaluation failed", common.Fields{
				"request_id": RequestID(ctx),
				"mode":       mode,
			})
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, r, http.StatusOK, resp)
	}
}

// PerformanceReport describes the running process.
type PerformanceReport struct {
	Status     string           `json:"status"`
	Metrics    ReportMetrics    `json:"metrics"`
	Efficiency ReportEfficiency `json:"algorithmEfficiency"`
}

// ReportMetrics holds runtime figures.
type ReportMetrics struct {
	UptimeSeconds    float64     `json:"uptimeSeconds"`
	TotalEngineCalls int64       `json:"totalEngineCalls"`
	Memory           MemoryUsage `json:"memoryUsage"`
	Goroutines       int         `json:"goroutines"`
}

// MemoryUsage is heap usage in megabytes.
type MemoryUsage struct {
	HeapAllocMB float64 `json:"heapAllocMB"`
	SysMB       float64 `json:"sysMB"`
}

// ReportEfficiency names the algorithm the engine uses.
type ReportEfficiency struct {
	TemporalComplexity string `json:"temporalComplexity"`
	Engine             string `json:"engine"`
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	writeJSON(w, r, http.StatusOK, PerformanceReport{
		Status: "operational",
		Metrics: ReportMetrics{
			UptimeSeconds:    document.Round(s.now().Sub(s.started).Seconds(), 2),
			TotalEngineCalls: s.engineCalls.Load(),
			Memory: MemoryUsage{
				HeapAllocMB: document.Round(float64(ms.HeapAlloc)/1e6, 4),
				SysMB:       document.Round(float64(ms.Sys)/1e6, 4),
			},
			Goroutines: runtime.NumGoroutine(),
		},
		Efficiency: ReportEfficiency{
			TemporalComplexity: engine.ComplexityLabel,
			Engine:             engine.EngineLabel,
		},
	})
}

// decodeBody reads a JSON body into dst, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = common.ErrNoInput
		}
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: %w", common.ErrMalformedInput, err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		common.LogError(r.Context(), err, "Failed to write response", common.Fields{
			"request_id": RequestID(r.Context()),
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, r, status, errorBody{Error: err.Error()})
}
