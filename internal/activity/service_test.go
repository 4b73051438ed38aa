package activity

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

type fakeActivities struct {
	seq        int64
	activities map[int64]*store.Activity
	requests   map[int64]*store.JoinRequest
	rosters    map[int64][]int64
}

func newFakeActivities() *fakeActivities {
	return &fakeActivities{
		activities: make(map[int64]*store.Activity),
		requests:   make(map[int64]*store.JoinRequest),
		rosters:    make(map[int64][]int64),
	}
}

func (f *fakeActivities) Create(_ context.Context, a *store.Activity) error {
	f.seq++
	a.ID = f.seq
	stored := *a
	f.activities[a.ID] = &stored
	f.rosters[a.ID] = []int64{a.OrganizerID}
	a.PlayerIDs = []int64{a.OrganizerID}
	return nil
}

func (f *fakeActivities) GetByID(_ context.Context, id int64) (*store.Activity, error) {
	a, ok := f.activities[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	copied := *a
	copied.PlayerIDs = append([]int64(nil), f.rosters[id]...)
	return &copied, nil
}

func (f *fakeActivities) RosterCount(_ context.Context, id int64) (int, error) {
	return len(f.rosters[id]), nil
}

func (f *fakeActivities) AddPlayer(_ context.Context, activityID, userID int64, maxPlayers int) error {
	if len(f.rosters[activityID]) >= maxPlayers {
		return workflow.ErrConflict
	}
	f.rosters[activityID] = append(f.rosters[activityID], userID)
	return nil
}

func (f *fakeActivities) SetStatus(_ context.Context, id int64, status store.ActivityStatus) error {
	a, ok := f.activities[id]
	if !ok {
		return workflow.ErrNotFound
	}
	a.Status = status
	return nil
}

func (f *fakeActivities) CreateJoinRequest(_ context.Context, req *store.JoinRequest) error {
	f.seq++
	req.ID = f.seq
	stored := *req
	f.requests[req.ID] = &stored
	return nil
}

func (f *fakeActivities) GetJoinRequest(_ context.Context, id int64) (*store.JoinRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (f *fakeActivities) HasPendingJoinRequest(_ context.Context, activityID, userID int64) (bool, error) {
	for _, req := range f.requests {
		if req.ActivityID == activityID && req.UserID == userID && req.Status == workflow.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeActivities) TransitionJoin(_ context.Context, id int64, from, to workflow.Status) error {
	req, ok := f.requests[id]
	if !ok || req.Status != from {
		return workflow.ErrConflict
	}
	req.Status = to
	return nil
}

func (f *fakeActivities) RejectPendingJoinRequests(_ context.Context, activityID int64) (int64, error) {
	var n int64
	for _, req := range f.requests {
		if req.ActivityID == activityID && req.Status == workflow.StatusPending {
			req.Status = workflow.StatusRejected
			n++
		}
	}
	return n, nil
}

const (
	organizerID = int64(1)
	playerID    = int64(2)
	outsiderID  = int64(3)
)

func newTestService() (*Service, *fakeActivities) {
	fakes := newFakeActivities()
	clk := clock.NewFake(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	return NewService(fakes, clk), fakes
}

func createInput(t *testing.T) CreateInput {
	t.Helper()
	start, err := store.ParseTimeOfDay("18:00")
	require.NoError(t, err)
	end, err := store.ParseTimeOfDay("20:00")
	require.NoError(t, err)

	return CreateInput{
		OrganizerID:     organizerID,
		Sport:           "badminton",
		Date:            time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Start:           start,
		End:             end,
		LocationName:    "Community Hall Court 2",
		MaxPlayers:      2,
		RequiredPlayers: 1,
	}
}

func TestCreateActivity(t *testing.T) {
	t.Run("seats the organizer and opens the session", func(t *testing.T) {
		svc, _ := newTestService()

		in := createInput(t)
		in.MaxPlayers = 4
		in.RequiredPlayers = 3

		a, err := svc.Create(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, store.ActivityOpen, a.Status)
		assert.Equal(t, []int64{organizerID}, a.PlayerIDs)
	})

	t.Run("unsupported sport", func(t *testing.T) {
		svc, _ := newTestService()

		in := createInput(t)
		in.Sport = "curling"
		_, err := svc.Create(context.Background(), in)
		assert.True(t, workflow.IsValidation(err))
	})

	t.Run("invalid size for sport", func(t *testing.T) {
		svc, _ := newTestService()

		in := createInput(t)
		in.MaxPlayers = 7
		_, err := svc.Create(context.Background(), in)
		assert.True(t, workflow.IsValidation(err))
	})

	t.Run("required players must leave room for the organizer", func(t *testing.T) {
		svc, _ := newTestService()

		in := createInput(t)
		in.MaxPlayers = 4
		in.RequiredPlayers = 4
		_, err := svc.Create(context.Background(), in)
		assert.True(t, workflow.IsValidation(err))
	})

	t.Run("past date", func(t *testing.T) {
		svc, _ := newTestService()

		in := createInput(t)
		in.Date = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
		_, err := svc.Create(context.Background(), in)
		assert.True(t, workflow.IsValidation(err))
	})
}

func TestRequestToJoin(t *testing.T) {
	t.Run("opens a pending request", func(t *testing.T) {
		svc, _ := newTestService()
		ctx := context.Background()

		a, err := svc.Create(ctx, createInput(t))
		require.NoError(t, err)

		req, err := svc.RequestToJoin(ctx, a.ID, playerID, "got my own racket")
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusPending, req.Status)
	})

	t.Run("roster members cannot queue a request", func(t *testing.T) {
		svc, _ := newTestService()
		ctx := context.Background()

		a, err := svc.Create(ctx, createInput(t))
		require.NoError(t, err)

		_, err = svc.RequestToJoin(ctx, a.ID, organizerID, "")
		assert.ErrorIs(t, err, workflow.ErrConflict)
	})

	t.Run("one outstanding request per user", func(t *testing.T) {
		svc, _ := newTestService()
		ctx := context.Background()

		a, err := svc.Create(ctx, createInput(t))
		require.NoError(t, err)

		_, err = svc.RequestToJoin(ctx, a.ID, playerID, "")
		require.NoError(t, err)

		_, err = svc.RequestToJoin(ctx, a.ID, playerID, "")
		assert.ErrorIs(t, err, workflow.ErrConflict)
	})

	t.Run("full and cancelled sessions refuse requests", func(t *testing.T) {
		svc, fakes := newTestService()
		ctx := context.Background()

		a, err := svc.Create(ctx, createInput(t))
		require.NoError(t, err)

		fakes.activities[a.ID].Status = store.ActivityFull
		_, err = svc.RequestToJoin(ctx, a.ID, playerID, "")
		assert.True(t, workflow.IsValidation(err))

		fakes.activities[a.ID].Status = store.ActivityCancelled
		_, err = svc.RequestToJoin(ctx, a.ID, playerID, "")
		assert.True(t, workflow.IsValidation(err))
	})
}

func TestApproveJoin(t *testing.T) {
	t.Run("admits the requester and flips to full at capacity", func(t *testing.T) {
		svc, fakes := newTestService()
		ctx := context.Background()

		a, err := svc.Create(ctx, createInput(t)) // badminton, max 2
		require.NoError(t, err)

		req, err := svc.RequestToJoin(ctx, a.ID, playerID, "")
		require.NoError(t, err)

		require.NoError(t, svc.ApproveJoin(ctx, a.ID, req.ID, organizerID))

		assert.Equal(t, []int64{organizerID, playerID}, fakes.rosters[a.ID])
		assert.Equal(t, store.ActivityFull, fakes.activities[a.ID].Status)
		assert.Equal(t, workflow.StatusApproved, fakes.requests[req.ID].Status)
	})

	t.Run("stays open below capacity", func(t *testing.T) {
		svc, fakes := newTestService()
		ctx := context.Background()

		in := createInput(t)
		in.MaxPlayers = 4
		in.RequiredPlayers = 2
		a, err := svc.Create(ctx, in)
		require.NoError(t, err)

		req, err := svc.RequestToJoin(ctx, a.ID, playerID, "")
		require.NoError(t, err)
		require.NoError(t, svc.ApproveJoin(ctx, a.ID, req.ID, organizerID))

		assert.Equal(t, store.ActivityOpen, fakes.activities[a.ID].Status)
	})

	t.Run("the last seat only admits one of two pending requests", func(t *testing.T) {
		svc, fakes := newTestService()
		ctx := context.Background()

		a, err := svc.Create(ctx, createInput(t)) // one free seat
		require.NoError(t, err)

		first, err := svc.RequestToJoin(ctx, a.ID, playerID, "")
		require.NoError(t, err)
		second, err := svc.RequestToJoin(ctx, a.ID, outsiderID, "")
		require.NoError(t, err)

		require.NoError(t, svc.ApproveJoin(ctx, a.ID, first.ID, organizerID))

		err = svc.ApproveJoin(ctx, a.ID, second.ID, organizerID)
		assert.Error(t, err)
		assert.NotContains(t, fakes.rosters[a.ID], outsiderID)
		assert.Equal(t, workflow.StatusPending, fakes.requests[second.ID].Status)
	})

	t.Run("non-organizer decisions are forbidden with no state change", func(t *testing.T) {
		svc, fakes := newTestService()
		ctx := context.Background()

		a, err := svc.Create(ctx, createInput(t))
		require.NoError(t, err)

		req, err := svc.RequestToJoin(ctx, a.ID, playerID, "")
		require.NoError(t, err)

		err = svc.ApproveJoin(ctx, a.ID, req.ID, outsiderID)
		assert.ErrorIs(t, err, workflow.ErrForbidden)
		err = svc.RejectJoin(ctx, a.ID, req.ID, outsiderID)
		assert.ErrorIs(t, err, workflow.ErrForbidden)

		assert.Equal(t, workflow.StatusPending, fakes.requests[req.ID].Status)
		assert.Equal(t, []int64{organizerID}, fakes.rosters[a.ID])
	})

	t.Run("decided requests refuse further decisions", func(t *testing.T) {
		svc, _ := newTestService()
		ctx := context.Background()

		in := createInput(t)
		in.MaxPlayers = 4
		in.RequiredPlayers = 2
		a, err := svc.Create(ctx, in)
		require.NoError(t, err)

		req, err := svc.RequestToJoin(ctx, a.ID, playerID, "")
		require.NoError(t, err)
		require.NoError(t, svc.ApproveJoin(ctx, a.ID, req.ID, organizerID))

		err = svc.ApproveJoin(ctx, a.ID, req.ID, organizerID)
		assert.ErrorIs(t, err, workflow.ErrConflict)
		err = svc.RejectJoin(ctx, a.ID, req.ID, organizerID)
		assert.ErrorIs(t, err, workflow.ErrConflict)
	})

	t.Run("filling every seat closes the session to new requests", func(t *testing.T) {
		svc, fakes := newTestService()
		ctx := context.Background()

		in := createInput(t)
		in.MaxPlayers = 4
		in.RequiredPlayers = 3
		a, err := svc.Create(ctx, in)
		require.NoError(t, err)

		for _, userID := range []int64{playerID, outsiderID, int64(4)} {
			req, err := svc.RequestToJoin(ctx, a.ID, userID, "")
			require.NoError(t, err)
			require.NoError(t, svc.ApproveJoin(ctx, a.ID, req.ID, organizerID))
		}

		assert.Len(t, fakes.rosters[a.ID], 4)
		assert.Equal(t, store.ActivityFull, fakes.activities[a.ID].Status)

		_, err = svc.RequestToJoin(ctx, a.ID, int64(5), "")
		assert.True(t, workflow.IsValidation(err))
	})

	t.Run("request must belong to the activity", func(t *testing.T) {
		svc, _ := newTestService()
		ctx := context.Background()

		a, err := svc.Create(ctx, createInput(t))
		require.NoError(t, err)

		inB := createInput(t)
		inB.Sport = "tennis"
		b, err := svc.Create(ctx, inB)
		require.NoError(t, err)

		req, err := svc.RequestToJoin(ctx, b.ID, playerID, "")
		require.NoError(t, err)

		err = svc.ApproveJoin(ctx, a.ID, req.ID, organizerID)
		assert.ErrorIs(t, err, workflow.ErrNotFound)
	})
}

func TestCancelActivity(t *testing.T) {
	t.Run("cancellation sweeps pending requests to rejected", func(t *testing.T) {
		svc, fakes := newTestService()
		ctx := context.Background()

		in := createInput(t)
		in.MaxPlayers = 4
		in.RequiredPlayers = 2
		a, err := svc.Create(ctx, in)
		require.NoError(t, err)

		first, err := svc.RequestToJoin(ctx, a.ID, playerID, "")
		require.NoError(t, err)
		second, err := svc.RequestToJoin(ctx, a.ID, outsiderID, "")
		require.NoError(t, err)

		require.NoError(t, svc.Cancel(ctx, a.ID, organizerID))

		assert.Equal(t, store.ActivityCancelled, fakes.activities[a.ID].Status)
		assert.Equal(t, workflow.StatusRejected, fakes.requests[first.ID].Status)
		assert.Equal(t, workflow.StatusRejected, fakes.requests[second.ID].Status)
	})

	t.Run("only the organizer may cancel", func(t *testing.T) {
		svc, _ := newTestService()
		ctx := context.Background()

		a, err := svc.Create(ctx, createInput(t))
		require.NoError(t, err)

		err = svc.Cancel(ctx, a.ID, outsiderID)
		assert.ErrorIs(t, err, workflow.ErrForbidden)
	})

	t.Run("cancelling twice conflicts", func(t *testing.T) {
		svc, _ := newTestService()
		ctx := context.Background()

		a, err := svc.Create(ctx, createInput(t))
		require.NoError(t, err)

		require.NoError(t, svc.Cancel(ctx, a.ID, organizerID))
		err = svc.Cancel(ctx, a.ID, organizerID)
		assert.ErrorIs(t, err, workflow.ErrConflict)
	})
}
