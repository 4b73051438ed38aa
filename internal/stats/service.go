// Package stats computes the owner and organizer dashboard
// projections. Every figure is recomputed from the underlying rows on
// each call rather than maintained incrementally, so a projection can
// never drift from the collections it summarizes.
package stats

import (
	"context"

	"courtside/internal/clock"
	"courtside/internal/store"
	"courtside/internal/workflow"
)

type StatsStore interface {
	OwnerSlotRequests(ctx context.Context, ownerID int64) ([]store.OwnerSlot, error)
	OrganizerPendingJoins(ctx context.Context, organizerID int64) ([]store.JoinRequest, error)
}

type Service struct {
	stats StatsStore
	clock clock.Clock
}

func NewService(stats StatsStore, clk clock.Clock) *Service {
	return &Service{stats: stats, clock: clk}
}

// TotalRevenue sums the amounts of the owner's approved, paid
// requests across all their facilities. Pending, rejected, cancelled
// and unpaid rows contribute nothing.
func (s *Service) TotalRevenue(ctx context.Context, ownerID int64) (int, error) {
	slots, err := s.stats.OwnerSlotRequests(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	total := 0
	for i := range slots {
		if slots[i].Status == workflow.StatusApproved && slots[i].PaymentStatus == workflow.PaymentPaid {
			total += slots[i].Amount
		}
	}
	return total, nil
}

// TodaysSlots returns the owner's requests dated today regardless of
// status, so the dashboard shows pending decisions alongside the
// confirmed schedule. Date-only equality, time of day ignored.
func (s *Service) TodaysSlots(ctx context.Context, ownerID int64) ([]store.OwnerSlot, error) {
	slots, err := s.stats.OwnerSlotRequests(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()
	out := make([]store.OwnerSlot, 0)
	for i := range slots {
		if clock.Midnight(slots[i].Date).Equal(today) {
			out = append(out, slots[i])
		}
	}
	return out, nil
}

// OwnerSlots returns every slot request across the owner's
// facilities, newest date last.
func (s *Service) OwnerSlots(ctx context.Context, ownerID int64) ([]store.OwnerSlot, error) {
	return s.stats.OwnerSlotRequests(ctx, ownerID)
}

// PendingJoinCount counts the undecided join requests across every
// activity the user organizes.
func (s *Service) PendingJoinCount(ctx context.Context, organizerID int64) (int, error) {
	joins, err := s.stats.OrganizerPendingJoins(ctx, organizerID)
	if err != nil {
		return 0, err
	}
	return len(joins), nil
}

// PendingJoins returns the undecided join requests themselves, for
// the organizer inbox view.
func (s *Service) PendingJoins(ctx context.Context, organizerID int64) ([]store.JoinRequest, error) {
	return s.stats.OrganizerPendingJoins(ctx, organizerID)
}
