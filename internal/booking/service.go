// Package booking implements the slot reservation workflow: validated
// creation of reservation requests against a facility's operating
// window, owner decisions with a re-validated overlap check, payment
// flag updates and requester cancellation.
package booking

import (
	"context"
	"time"

	"courtside/internal/clock"
	"courtside/internal/store"
	"courtside/internal/workflow"
)

// FacilityStore is the slice of the facility registry this workflow
// reads from.
type FacilityStore interface {
	GetByID(ctx context.Context, facilityID int64) (*store.Facility, error)
}

// SlotStore persists slot requests. Transition and Cancel must apply
// their status change as a compare-and-set and report
// workflow.ErrConflict when the record already left the expected
// state.
type SlotStore interface {
	Create(ctx context.Context, req *store.SlotRequest) error
	GetByID(ctx context.Context, requestID int64) (*store.SlotRequest, error)
	ListApprovedForDate(ctx context.Context, facilityID int64, date time.Time) ([]store.SlotRequest, error)
	Transition(ctx context.Context, requestID int64, from, to workflow.Status) error
	Cancel(ctx context.Context, requestID int64) error
	SetPaymentStatus(ctx context.Context, requestID int64, status workflow.PaymentStatus) error
	SetReference(ctx context.Context, requestID int64, ref string) error
}

type Service struct {
	facilities FacilityStore
	slots      SlotStore
	clock      clock.Clock
	refs       *ReferenceGenerator
}

func NewService(facilities FacilityStore, slots SlotStore, clk clock.Clock, refs *ReferenceGenerator) *Service {
	return &Service{
		facilities: facilities,
		slots:      slots,
		clock:      clk,
		refs:       refs,
	}
}

// RequestSlotInput carries everything needed to open a reservation
// request. Date must be a bare date (midnight); Start/End are times of
// day on that date.
type RequestSlotInput struct {
	FacilityID  int64
	RequesterID int64
	Date        time.Time
	Start       store.TimeOfDay
	End         store.TimeOfDay
	Note        string
}

// RequestSlot validates the input against the facility and creates a
// pending, unpaid request. Only approved requests block the window:
// an owner may end up holding several competing pending requests for
// the same slot and picks one to approve.
func (s *Service) RequestSlot(ctx context.Context, in RequestSlotInput) (*store.SlotRequest, error) {
	facility, err := s.facilities.GetByID(ctx, in.FacilityID)
	if err != nil {
		return nil, err
	}
	if !facility.IsAvailable {
		return nil, workflow.ErrNotFound
	}

	date := clock.Midnight(in.Date)
	if date.Before(s.clock.Today()) {
		return nil, workflow.Invalid("date", "must not be in the past")
	}
	if in.Start >= in.End {
		return nil, workflow.Invalid("time_range", "start must be before end")
	}
	if in.Start < facility.OpenTime || in.End > facility.CloseTime {
		return nil, workflow.Invalidf("time_range", "outside operating window %s-%s",
			facility.OpenTime, facility.CloseTime)
	}

	approved, err := s.slots.ListApprovedForDate(ctx, facility.ID, date)
	if err != nil {
		return nil, err
	}
	for i := range approved {
		if store.Overlaps(in.Start, in.End, approved[i].StartTime, approved[i].EndTime) {
			return nil, workflow.ErrConflict
		}
	}

	req := &store.SlotRequest{
		FacilityID:    facility.ID,
		RequesterID:   in.RequesterID,
		Date:          date,
		StartTime:     in.Start,
		EndTime:       in.End,
		Amount:        slotAmount(in.Start, in.End, facility.PricePerHour),
		Status:        workflow.StatusPending,
		PaymentStatus: workflow.PaymentUnpaid,
	}
	if in.Note != "" {
		req.Note = &in.Note
	}
	if err := s.slots.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Approve confirms a pending request on behalf of the facility owner.
// The overlap check runs again here: two requests for the same window
// can both sit pending, and the second approval must lose.
func (s *Service) Approve(ctx context.Context, requestID, actorID int64) (*store.SlotRequest, error) {
	req, facility, err := s.loadForDecision(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}

	approved, err := s.slots.ListApprovedForDate(ctx, facility.ID, req.Date)
	if err != nil {
		return nil, err
	}
	for i := range approved {
		if approved[i].ID != req.ID && req.OverlapsWith(&approved[i]) {
			return nil, workflow.ErrConflict
		}
	}

	if err := s.decide(ctx, req, workflow.StatusApproved); err != nil {
		return nil, err
	}
	req.Status = workflow.StatusApproved

	ref := s.refs.Generate(req.ID, req.RequesterID)
	if err := s.slots.SetReference(ctx, req.ID, ref); err != nil {
		return nil, err
	}
	req.Reference = &ref
	return req, nil
}

// Reject declines a pending request on behalf of the facility owner.
func (s *Service) Reject(ctx context.Context, requestID, actorID int64) error {
	req, _, err := s.loadForDecision(ctx, requestID, actorID)
	if err != nil {
		return err
	}
	if err := s.decide(ctx, req, workflow.StatusRejected); err != nil {
		return err
	}
	req.Status = workflow.StatusRejected
	return nil
}

// Cancel is requester-initiated and allowed while the request is
// pending or approved and its date is still ahead. A cancelled
// approved request frees the window for future overlap checks.
func (s *Service) Cancel(ctx context.Context, requestID, requesterID int64) error {
	req, err := s.slots.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.RequesterID != requesterID {
		return workflow.ErrForbidden
	}
	if req.Status != workflow.StatusPending && req.Status != workflow.StatusApproved {
		return workflow.ErrConflict
	}
	if !req.Date.After(s.clock.Today()) {
		return workflow.Invalid("date", "only future reservations can be cancelled")
	}
	return s.slots.Cancel(ctx, req.ID)
}

// UpdatePaymentStatus records settlement state on an approved
// request. Settlement itself happens outside this system.
func (s *Service) UpdatePaymentStatus(ctx context.Context, requestID, actorID int64, status workflow.PaymentStatus) error {
	if !workflow.ValidPaymentStatus(status) {
		return workflow.Invalidf("payment_status", "unknown value %q", status)
	}
	req, err := s.slots.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	facility, err := s.facilities.GetByID(ctx, req.FacilityID)
	if err != nil {
		return err
	}
	if !facility.OwnedBy(actorID) {
		return workflow.ErrForbidden
	}
	if req.Status != workflow.StatusApproved {
		return workflow.ErrConflict
	}
	return s.slots.SetPaymentStatus(ctx, req.ID, status)
}

func (s *Service) loadForDecision(ctx context.Context, requestID, actorID int64) (*store.SlotRequest, *store.Facility, error) {
	req, err := s.slots.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	facility, err := s.facilities.GetByID(ctx, req.FacilityID)
	if err != nil {
		return nil, nil, err
	}
	if !facility.OwnedBy(actorID) {
		return nil, nil, workflow.ErrForbidden
	}
	return req, facility, nil
}

func (s *Service) decide(ctx context.Context, req *store.SlotRequest, to workflow.Status) error {
	if err := workflow.Decide(req.Status, to); err != nil {
		return err
	}
	// The store re-checks pending in the UPDATE itself, so a decision
	// racing this one still fails instead of overwriting.
	return s.slots.Transition(ctx, req.ID, workflow.StatusPending, to)
}

func slotAmount(start, end store.TimeOfDay, pricePerHour int) int {
	hours := end.Hours() - start.Hours()
	return int(hours * float64(pricePerHour))
}
