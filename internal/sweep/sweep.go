// Package sweep assigns every transaction its remanent by walking a single
// time-ordered timeline of transactions, override periods and additive periods.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/roundup/internal/model"
)

// ErrUnknownTransaction indicates an event that points outside the transaction slice.
var ErrUnknownTransaction = errors.New("event references unknown transaction")

// cancellation is checked every ctxCheckInterval events.
const ctxCheckInterval = 4096

// state is the mutable part of one sweep. It never outlives Run.
type state struct {
	active *activeOverrides
	extra  int64
}

// Run settles the remanent of every transaction in txns. Periods are assumed
// well formed (start <= end); they are not validated. On error some
// transactions may already be settled and the slice must be discarded.
func Run(ctx context.Context, txns []model.Transaction, overrides []model.OverridePeriod, additives []model.AdditivePeriod) error {
	events := BuildEvents(txns, overrides, additives)
	Order(events)

	st := &state{active: newActiveOverrides()}
	for i, ev := range events {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("sweep interrupted: %w", err)
			}
		}
		if err := ev.apply(st, txns); err != nil {
			return fmt.Errorf("failed to apply %s event at %d: %w", ev.Kind(), ev.At(), err)
		}
	}

	slog.Debug("Sweep complete",
		"events", len(events),
		"transactions", len(txns),
		"overrides", len(overrides),
		"additives", len(additives))

	return nil
}
