package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtside/internal/clock"
	"courtside/internal/store"
	"courtside/internal/workflow"
)

type fakeFacilities struct {
	byID map[int64]*store.Facility
}

func (f *fakeFacilities) GetByID(_ context.Context, id int64) (*store.Facility, error) {
	facility, ok := f.byID[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	return facility, nil
}

type fakeSlots struct {
	seq  int64
	byID map[int64]*store.SlotRequest
}

func newFakeSlots() *fakeSlots {
	return &fakeSlots{byID: make(map[int64]*store.SlotRequest)}
}

func (f *fakeSlots) Create(_ context.Context, req *store.SlotRequest) error {
	f.seq++
	req.ID = f.seq
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	stored := *req
	f.byID[req.ID] = &stored
	return nil
}

func (f *fakeSlots) GetByID(_ context.Context, id int64) (*store.SlotRequest, error) {
	req, ok := f.byID[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (f *fakeSlots) ListApprovedForDate(_ context.Context, facilityID int64, date time.Time) ([]store.SlotRequest, error) {
	var out []store.SlotRequest
	for _, req := range f.byID {
		if req.FacilityID == facilityID && req.Date.Equal(date) && req.Status == workflow.StatusApproved {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeSlots) Transition(_ context.Context, id int64, from, to workflow.Status) error {
	req, ok := f.byID[id]
	if !ok || req.Status != from {
		return workflow.ErrConflict
	}
	req.Status = to
	return nil
}

func (f *fakeSlots) Cancel(_ context.Context, id int64) error {
	req, ok := f.byID[id]
	if !ok {
		return workflow.ErrConflict
	}
	if req.Status != workflow.StatusPending && req.Status != workflow.StatusApproved {
		return workflow.ErrConflict
	}
	req.Status = workflow.StatusCancelled
	return nil
}

func (f *fakeSlots) SetPaymentStatus(_ context.Context, id int64, status workflow.PaymentStatus) error {
	req, ok := f.byID[id]
	if !ok || req.Status != workflow.StatusApproved {
		return workflow.ErrConflict
	}
	req.PaymentStatus = status
	return nil
}

func (f *fakeSlots) SetReference(_ context.Context, id int64, ref string) error {
	req, ok := f.byID[id]
	if !ok {
		return workflow.ErrNotFound
	}
	req.Reference = &ref
	return nil
}

const (
	ownerID     = int64(1)
	requesterID = int64(2)
	otherUserID = int64(3)
	facilityID  = int64(10)
)

func newTestService(t *testing.T) (*Service, *fakeSlots, *clock.Fake) {
	t.Helper()

	open, err := store.ParseTimeOfDay("08:00")
	require.NoError(t, err)
	close, err := store.ParseTimeOfDay("22:00")
	require.NoError(t, err)

	facilities := &fakeFacilities{byID: map[int64]*store.Facility{
		facilityID: {
			ID:           facilityID,
			OwnerID:      ownerID,
			Name:         "Riverside Futsal",
			PricePerHour: 1200,
			OpenTime:     open,
			CloseTime:    close,
			IsAvailable:  true,
		},
	}}

	slots := newFakeSlots()
	clk := clock.NewFake(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	refs, err := NewReferenceGenerator("test-salt")
	require.NoError(t, err)

	return NewService(facilities, slots, clk, refs), slots, clk
}

func tod(t *testing.T, s string) store.TimeOfDay {
	t.Helper()
	v, err := store.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func requestAt(t *testing.T, start, end string) RequestSlotInput {
	t.Helper()
	return RequestSlotInput{
		FacilityID:  facilityID,
		RequesterID: requesterID,
		Date:        time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Start:       tod(t, start),
		End:         tod(t, end),
	}
}

func TestRequestSlot(t *testing.T) {
	t.Run("creates a pending unpaid request with the computed amount", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		req, err := svc.RequestSlot(context.Background(), requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)

		assert.Equal(t, workflow.StatusPending, req.Status)
		assert.Equal(t, workflow.PaymentUnpaid, req.PaymentStatus)
		assert.Equal(t, 2400, req.Amount)
		assert.Nil(t, req.Reference)
	})

	t.Run("half hour windows price fractionally", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		req, err := svc.RequestSlot(context.Background(), requestAt(t, "10:00", "11:30"))
		require.NoError(t, err)
		assert.Equal(t, 1800, req.Amount)
	})

	t.Run("rejects past dates", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		in := requestAt(t, "10:00", "11:00")
		in.Date = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
		_, err := svc.RequestSlot(context.Background(), in)
		assert.True(t, workflow.IsValidation(err))
	})

	t.Run("accepts today", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		in := requestAt(t, "10:00", "11:00")
		in.Date = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		_, err := svc.RequestSlot(context.Background(), in)
		assert.NoError(t, err)
	})

	t.Run("rejects inverted and empty windows", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.RequestSlot(context.Background(), requestAt(t, "12:00", "10:00"))
		assert.True(t, workflow.IsValidation(err))

		_, err = svc.RequestSlot(context.Background(), requestAt(t, "10:00", "10:00"))
		assert.True(t, workflow.IsValidation(err))
	})

	t.Run("rejects windows outside operating hours", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.RequestSlot(context.Background(), requestAt(t, "06:00", "09:00"))
		assert.True(t, workflow.IsValidation(err))

		_, err = svc.RequestSlot(context.Background(), requestAt(t, "21:00", "23:00"))
		assert.True(t, workflow.IsValidation(err))
	})

	t.Run("retired facility reads as not found", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		facilities := svc.facilities.(*fakeFacilities)
		facilities.byID[facilityID].IsAvailable = false

		_, err := svc.RequestSlot(context.Background(), requestAt(t, "10:00", "11:00"))
		assert.ErrorIs(t, err, workflow.ErrNotFound)
	})

	t.Run("approved request blocks overlapping requests", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		ctx := context.Background()

		first, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)
		_, err = svc.Approve(ctx, first.ID, ownerID)
		require.NoError(t, err)

		_, err = svc.RequestSlot(ctx, requestAt(t, "11:00", "13:00"))
		assert.ErrorIs(t, err, workflow.ErrConflict)

		// The adjacent window is free: ranges are half open.
		_, err = svc.RequestSlot(ctx, requestAt(t, "12:00", "13:00"))
		assert.NoError(t, err)
	})

	t.Run("pending requests never block new requests", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		ctx := context.Background()

		_, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)

		_, err = svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		assert.NoError(t, err)
	})
}

func TestApprove(t *testing.T) {
	t.Run("owner approval sets status and a reference code", func(t *testing.T) {
		svc, slots, _ := newTestService(t)
		ctx := context.Background()

		req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)

		approved, err := svc.Approve(ctx, req.ID, ownerID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusApproved, approved.Status)
		require.NotNil(t, approved.Reference)
		assert.NotEmpty(t, *approved.Reference)

		stored, err := slots.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusApproved, stored.Status)
	})

	t.Run("non-owner cannot decide and state is unchanged", func(t *testing.T) {
		svc, slots, _ := newTestService(t)
		ctx := context.Background()

		req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)

		_, err = svc.Approve(ctx, req.ID, otherUserID)
		assert.ErrorIs(t, err, workflow.ErrForbidden)

		err = svc.Reject(ctx, req.ID, otherUserID)
		assert.ErrorIs(t, err, workflow.ErrForbidden)

		stored, err := slots.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusPending, stored.Status)
	})

	t.Run("second approval of competing pending requests loses", func(t *testing.T) {
		svc, slots, _ := newTestService(t)
		ctx := context.Background()

		first, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)
		second, err := svc.RequestSlot(ctx, requestAt(t, "11:00", "13:00"))
		require.NoError(t, err)

		_, err = svc.Approve(ctx, first.ID, ownerID)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, second.ID, ownerID)
		assert.ErrorIs(t, err, workflow.ErrConflict)

		stored, err := slots.GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusPending, stored.Status)
	})

	t.Run("deciding a decided request conflicts", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		ctx := context.Background()

		req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)

		_, err = svc.Approve(ctx, req.ID, ownerID)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, req.ID, ownerID)
		assert.ErrorIs(t, err, workflow.ErrConflict)
		err = svc.Reject(ctx, req.ID, ownerID)
		assert.ErrorIs(t, err, workflow.ErrConflict)
	})
}

func TestReject(t *testing.T) {
	svc, slots, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, req.ID, ownerID))

	stored, err := slots.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, stored.Status)

	// A rejected window is free again.
	_, err = svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
	assert.NoError(t, err)
}

func TestCancel(t *testing.T) {
	t.Run("requester cancels a pending request", func(t *testing.T) {
		svc, slots, _ := newTestService(t)
		ctx := context.Background()

		req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)

		require.NoError(t, svc.Cancel(ctx, req.ID, requesterID))

		stored, err := slots.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusCancelled, stored.Status)
	})

	t.Run("cancelling an approved request frees the window", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		ctx := context.Background()

		req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)
		_, err = svc.Approve(ctx, req.ID, ownerID)
		require.NoError(t, err)

		require.NoError(t, svc.Cancel(ctx, req.ID, requesterID))

		_, err = svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		assert.NoError(t, err)
	})

	t.Run("only the requester may cancel", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		ctx := context.Background()

		req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)

		err = svc.Cancel(ctx, req.ID, ownerID)
		assert.ErrorIs(t, err, workflow.ErrForbidden)
	})

	t.Run("same-day cancellation is refused", func(t *testing.T) {
		svc, _, clk := newTestService(t)
		ctx := context.Background()

		req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)

		clk.Set(time.Date(2026, 3, 12, 7, 0, 0, 0, time.UTC))
		err = svc.Cancel(ctx, req.ID, requesterID)
		assert.True(t, workflow.IsValidation(err))
	})

	t.Run("rejected requests cannot be cancelled", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		ctx := context.Background()

		req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)
		require.NoError(t, svc.Reject(ctx, req.ID, ownerID))

		err = svc.Cancel(ctx, req.ID, requesterID)
		assert.ErrorIs(t, err, workflow.ErrConflict)
	})
}

func TestUpdatePaymentStatus(t *testing.T) {
	t.Run("owner marks an approved request paid", func(t *testing.T) {
		svc, slots, _ := newTestService(t)
		ctx := context.Background()

		req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)
		_, err = svc.Approve(ctx, req.ID, ownerID)
		require.NoError(t, err)

		require.NoError(t, svc.UpdatePaymentStatus(ctx, req.ID, ownerID, workflow.PaymentPaid))

		stored, err := slots.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.PaymentPaid, stored.PaymentStatus)
	})

	t.Run("pending requests cannot take a payment flag", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		ctx := context.Background()

		req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)

		err = svc.UpdatePaymentStatus(ctx, req.ID, ownerID, workflow.PaymentPaid)
		assert.ErrorIs(t, err, workflow.ErrConflict)
	})

	t.Run("unknown values and non-owners are refused", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		ctx := context.Background()

		req, err := svc.RequestSlot(ctx, requestAt(t, "10:00", "12:00"))
		require.NoError(t, err)
		_, err = svc.Approve(ctx, req.ID, ownerID)
		require.NoError(t, err)

		err = svc.UpdatePaymentStatus(ctx, req.ID, ownerID, "partial")
		assert.True(t, workflow.IsValidation(err))

		err = svc.UpdatePaymentStatus(ctx, req.ID, requesterID, workflow.PaymentPaid)
		assert.ErrorIs(t, err, workflow.ErrForbidden)
	})
}

func TestReferenceGenerator(t *testing.T) {
	refs, err := NewReferenceGenerator("salt-a")
	require.NoError(t, err)

	a := refs.Generate(1, 2)
	b := refs.Generate(1, 2)
	c := refs.Generate(2, 2)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "CS-")
}
