// Package jobs holds the scheduled maintenance sweeps that retire old
// reservation rows so the live collections only hold actionable
// records.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"courtside/internal/clock"
)

// SlotSweepStore is the slice of the slot request store the nightly
// sweep needs.
type SlotSweepStore interface {
	CompletePast(ctx context.Context, today time.Time) (int64, error)
	ExpirePastPending(ctx context.Context, today time.Time) (int64, error)
}

type Sweeper struct {
	slots  SlotSweepStore
	clock  clock.Clock
	logger *zap.SugaredLogger
}

func NewSweeper(slots SlotSweepStore, clk clock.Clock, logger *zap.SugaredLogger) *Sweeper {
	return &Sweeper{slots: slots, clock: clk, logger: logger}
}

// CompletePastSlots moves approved, paid requests whose date has gone
// by into completed.
func (s *Sweeper) CompletePastSlots() {
	s.run("complete-past-slots", func(ctx context.Context) (int64, error) {
		return s.slots.CompletePast(ctx, s.clock.Today())
	})
}

// ExpirePendingSlots rejects pending requests the owner never decided
// before the requested date passed.
func (s *Sweeper) ExpirePendingSlots() {
	s.run("expire-pending-slots", func(ctx context.Context) (int64, error) {
		return s.slots.ExpirePastPending(ctx, s.clock.Today())
	})
}

// RunNightly runs every nightly sweep in order, for manual execution.
func (s *Sweeper) RunNightly() {
	s.CompletePastSlots()
	s.ExpirePendingSlots()
}

func (s *Sweeper) run(name string, fn func(ctx context.Context) (int64, error)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("job panicked", "job", name, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := fn(ctx)
	if err != nil {
		s.logger.Errorw("job failed", "job", name, "error", err)
		return
	}
	s.logger.Infow("job completed", "job", name, "rows", n)
}
