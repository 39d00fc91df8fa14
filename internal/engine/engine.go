// Package engine runs the full savings pipeline: sweep, aggregation and
// projection for every query window of a request.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/roundup/internal/aggregate"
	"github.com/Veraticus/roundup/internal/common"
	"github.com/Veraticus/roundup/internal/document"
	"github.com/Veraticus/roundup/internal/projection"
	"github.com/Veraticus/roundup/internal/sweep"
	"golang.org/x/sync/errgroup"
)

// Labels reported in the performance block.
const (
	ComplexityLabel = "O(N log N)"
	EngineLabel     = "Go sweep-line"
)

// Evaluator turns requests into responses. It holds no per-request state and
// is safe for concurrent use.
type Evaluator struct {
	now         func() time.Time
	parallelism int
	performance bool
}

// Config holds configuration options for the evaluator.
type Config struct {
	Parallelism int  // query windows projected concurrently
	Performance bool // attach the performance block to responses
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Parallelism: 4,
		Performance: true,
	}
}

// New creates an evaluator with the default configuration.
func New() *Evaluator {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an evaluator with custom configuration.
func NewWithConfig(config Config) *Evaluator {
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	return &Evaluator{
		now:         time.Now,
		parallelism: config.Parallelism,
		performance: config.Performance,
	}
}

// Evaluate runs the pipeline for req. The sweep and index build complete
// before any window is answered; windows are then projected concurrently and
// reported in input order.
func (e *Evaluator) Evaluate(ctx context.Context, req *document.Request) (*document.Response, error) {
	started := e.now()

	op := common.StartOperation(ctx, "engine.evaluate",
		"transactions", len(req.Transactions),
		"q_periods", len(req.QPeriods),
		"p_periods", len(req.PPeriods),
		"k_periods", len(req.KPeriods))
	ctx = op.Context()

	in := Prepare(req)

	sweepOp := common.StartOperation(ctx, "engine.sweep")
	if err := sweep.Run(sweepOp.Context(), in.Transactions, in.Overrides, in.Additives); err != nil {
		sweepOp.EndWithError(err)
		op.EndWithError(err)
		return nil, fmt.Errorf("%w: %w", common.ErrEvaluationFailed, err)
	}
	sweepOp.End()

	indexOp := common.StartOperation(ctx, "engine.index")
	idx, err := aggregate.Build(in.Transactions)
	if err != nil {
		indexOp.EndWithError(err)
		op.EndWithError(err)
		return nil, fmt.Errorf("%w: %w", common.ErrEvaluationFailed, err)
	}
	indexOp.End("indexed", idx.Len(), "saved", idx.Total())

	savings, err := e.project(ctx, idx, req, in)
	if err != nil {
		op.EndWithError(err)
		return nil, fmt.Errorf("%w: %w", common.ErrEvaluationFailed, err)
	}

	resp := &document.Response{
		TotalTransactionAmount: document.Round(in.TotalAmount, 1),
		TotalCeiling:           document.Round(in.TotalCeiling, 1),
		SavingsByDates:         savings,
	}

	elapsed := e.now().Sub(started)
	if e.performance {
		resp.Performance = &document.Performance{
			ExecutionTimeUs: elapsed.Microseconds(),
			Complexity:      ComplexityLabel,
			Engine:          EngineLabel,
		}
	}

	op.End("windows", len(savings))
	return resp, nil
}

// project answers every window against idx.
func (e *Evaluator) project(ctx context.Context, idx *aggregate.Index, req *document.Request, in Inputs) ([]document.Savings, error) {
	op := common.StartOperation(ctx, "engine.project", "windows", len(in.Windows))

	scheme := projection.ParseScheme(req.Mode)
	params := projection.Params{
		Age:          req.Age,
		AnnualIncome: req.AnnualIncome(),
		Inflation:    req.InflationRate(),
	}

	savings := make([]document.Savings, len(in.Windows))

	g, gctx := errgroup.WithContext(op.Context())
	g.SetLimit(e.parallelism)
	for i, w := range in.Windows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			invested := idx.SumWindow(w)
			res := projection.Project(scheme, float64(invested), params)

			savings[i] = document.Savings{
				Start:      req.KPeriods[i].Start,
				End:        req.KPeriods[i].End,
				Amount:     document.Round(float64(invested), 1),
				Profit:     document.Round(res.Profit, 2),
				TaxBenefit: document.Round(res.TaxBenefit, 1),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		op.EndWithError(err)
		return nil, fmt.Errorf("window projection interrupted: %w", err)
	}

	op.End("scheme", string(scheme))
	return savings, nil
}
