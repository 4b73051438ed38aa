package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"courtside/internal/clock"
)

type fakeSweepStore struct {
	completed time.Time
	expired   time.Time
	err       error
}

func (f *fakeSweepStore) CompletePast(_ context.Context, today time.Time) (int64, error) {
	f.completed = today
	return 2, f.err
}

func (f *fakeSweepStore) ExpirePastPending(_ context.Context, today time.Time) (int64, error) {
	f.expired = today
	return 1, f.err
}

func TestSweeperRunNightly(t *testing.T) {
	store := &fakeSweepStore{}
	clk := clock.NewFake(time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC))

	s := NewSweeper(store, clk, zap.NewNop().Sugar())
	s.RunNightly()

	today := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, today, store.completed)
	assert.Equal(t, today, store.expired)
}

func TestSweeperSurvivesStoreErrors(t *testing.T) {
	store := &fakeSweepStore{err: errors.New("connection reset")}
	s := NewSweeper(store, clock.NewFake(time.Now()), zap.NewNop().Sugar())

	assert.NotPanics(t, func() { s.RunNightly() })
}
