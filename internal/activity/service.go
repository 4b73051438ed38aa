// Package activity implements the group activity workflow: creating
// capacity-bounded pickup sessions, the join request lifecycle, and
// organizer decisions that admit players onto the roster.
package activity

import (
	"context"
	"time"

	"courtside/internal/clock"
	"courtside/internal/store"
	"courtside/internal/workflow"
)

// allowedTeamSizes maps each supported sport to its valid max player
// counts. Keep in sync with the "sport" validator tag.
var allowedTeamSizes = map[string][]int{
	"futsal":     {10, 12, 14},
	"basketball": {6, 8, 10},
	"badminton":  {2, 4},
	"tennis":     {2, 4},
	"cricket":    {12, 16, 22},
	"volleyball": {8, 12},
}

// ActivityStore persists activities and join requests. AddPlayer must
// enforce the capacity bound inside the insert itself and report
// workflow.ErrConflict when the roster is already full; TransitionJoin
// is a compare-and-set on the request status.
type ActivityStore interface {
	Create(ctx context.Context, a *store.Activity) error
	GetByID(ctx context.Context, activityID int64) (*store.Activity, error)
	RosterCount(ctx context.Context, activityID int64) (int, error)
	AddPlayer(ctx context.Context, activityID, userID int64, maxPlayers int) error
	SetStatus(ctx context.Context, activityID int64, status store.ActivityStatus) error
	CreateJoinRequest(ctx context.Context, req *store.JoinRequest) error
	GetJoinRequest(ctx context.Context, requestID int64) (*store.JoinRequest, error)
	HasPendingJoinRequest(ctx context.Context, activityID, userID int64) (bool, error)
	TransitionJoin(ctx context.Context, requestID int64, from, to workflow.Status) error
	RejectPendingJoinRequests(ctx context.Context, activityID int64) (int64, error)
}

type Service struct {
	activities ActivityStore
	clock      clock.Clock
}

func NewService(activities ActivityStore, clk clock.Clock) *Service {
	return &Service{activities: activities, clock: clk}
}

type CreateInput struct {
	OrganizerID     int64
	Sport           string
	Date            time.Time
	Start           store.TimeOfDay
	End             store.TimeOfDay
	LocationName    string
	MaxPlayers      int
	RequiredPlayers int
	PerHeadFee      *int
}

// Create opens a new activity with the organizer already seated. The
// organizer occupies a roster spot, so max_players == 1 means the
// session is born full.
func (s *Service) Create(ctx context.Context, in CreateInput) (*store.Activity, error) {
	sizes, ok := allowedTeamSizes[in.Sport]
	if !ok {
		return nil, workflow.Invalidf("sport", "unsupported sport %q", in.Sport)
	}
	if !containsInt(sizes, in.MaxPlayers) {
		return nil, workflow.Invalidf("max_players", "%d is not a valid size for %s", in.MaxPlayers, in.Sport)
	}
	if in.RequiredPlayers < 1 || in.RequiredPlayers > in.MaxPlayers-1 {
		return nil, workflow.Invalid("required_players", "must be between 1 and max_players-1")
	}
	if in.Start >= in.End {
		return nil, workflow.Invalid("time_range", "start must be before end")
	}
	date := clock.Midnight(in.Date)
	if date.Before(s.clock.Today()) {
		return nil, workflow.Invalid("date", "must not be in the past")
	}
	if in.PerHeadFee != nil && *in.PerHeadFee < 0 {
		return nil, workflow.Invalid("per_head_fee", "must not be negative")
	}

	status := store.ActivityOpen
	if in.MaxPlayers == 1 {
		status = store.ActivityFull
	}

	a := &store.Activity{
		OrganizerID:     in.OrganizerID,
		Sport:           in.Sport,
		Date:            date,
		StartTime:       in.Start,
		EndTime:         in.End,
		LocationName:    in.LocationName,
		MaxPlayers:      in.MaxPlayers,
		RequiredPlayers: in.RequiredPlayers,
		PerHeadFee:      in.PerHeadFee,
		Status:          status,
	}
	if err := s.activities.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RequestToJoin opens a pending join request. Players already on the
// roster, or with a pending request outstanding, cannot queue another
// one.
func (s *Service) RequestToJoin(ctx context.Context, activityID, userID int64, note string) (*store.JoinRequest, error) {
	a, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	switch a.Status {
	case store.ActivityCancelled:
		return nil, workflow.Invalid("activity", "activity is cancelled")
	case store.ActivityFull:
		return nil, workflow.Invalid("activity", "activity is full")
	}
	if a.HasPlayer(userID) {
		return nil, workflow.ErrConflict
	}
	pending, err := s.activities.HasPendingJoinRequest(ctx, activityID, userID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, workflow.ErrConflict
	}

	req := &store.JoinRequest{
		ActivityID: activityID,
		UserID:     userID,
		Status:     workflow.StatusPending,
	}
	if note != "" {
		req.Note = &note
	}
	if err := s.activities.CreateJoinRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ApproveJoin admits the requester onto the roster. The status flip
// and the roster insert are both guarded at the store, so two racing
// approvals for the last seat cannot both land.
func (s *Service) ApproveJoin(ctx context.Context, activityID, requestID, actorID int64) error {
	a, req, err := s.loadForDecision(ctx, activityID, requestID, actorID)
	if err != nil {
		return err
	}
	if a.Status == store.ActivityCancelled {
		return workflow.Invalid("activity", "activity is cancelled")
	}

	count, err := s.activities.RosterCount(ctx, a.ID)
	if err != nil {
		return err
	}
	if count >= a.MaxPlayers {
		return workflow.ErrConflict
	}

	if err := workflow.Decide(req.Status, workflow.StatusApproved); err != nil {
		return err
	}
	if err := s.activities.TransitionJoin(ctx, req.ID, workflow.StatusPending, workflow.StatusApproved); err != nil {
		return err
	}
	if err := s.activities.AddPlayer(ctx, a.ID, req.UserID, a.MaxPlayers); err != nil {
		return err
	}

	count, err = s.activities.RosterCount(ctx, a.ID)
	if err != nil {
		return err
	}
	if count >= a.MaxPlayers {
		return s.activities.SetStatus(ctx, a.ID, store.ActivityFull)
	}
	return nil
}

// RejectJoin declines a pending join request.
func (s *Service) RejectJoin(ctx context.Context, activityID, requestID, actorID int64) error {
	_, req, err := s.loadForDecision(ctx, activityID, requestID, actorID)
	if err != nil {
		return err
	}
	if err := workflow.Decide(req.Status, workflow.StatusRejected); err != nil {
		return err
	}
	return s.activities.TransitionJoin(ctx, req.ID, workflow.StatusPending, workflow.StatusRejected)
}

// Cancel shuts down the activity and sweeps every pending join
// request to rejected so nobody is left waiting on a dead session.
func (s *Service) Cancel(ctx context.Context, activityID, actorID int64) error {
	a, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return err
	}
	if !a.OrganizedBy(actorID) {
		return workflow.ErrForbidden
	}
	if a.Status == store.ActivityCancelled {
		return workflow.ErrConflict
	}
	if err := s.activities.SetStatus(ctx, a.ID, store.ActivityCancelled); err != nil {
		return err
	}
	_, err = s.activities.RejectPendingJoinRequests(ctx, a.ID)
	return err
}

func (s *Service) loadForDecision(ctx context.Context, activityID, requestID, actorID int64) (*store.Activity, *store.JoinRequest, error) {
	a, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, nil, err
	}
	if !a.OrganizedBy(actorID) {
		return nil, nil, workflow.ErrForbidden
	}
	req, err := s.activities.GetJoinRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req.ActivityID != a.ID {
		return nil, nil, workflow.ErrNotFound
	}
	return a, req, nil
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// Sports returns the supported sport names, for request validation.
func Sports() []string {
	out := make([]string, 0, len(allowedTeamSizes))
	for sport := range allowedTeamSizes {
		out = append(out, sport)
	}
	return out
}
