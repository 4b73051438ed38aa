package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"courtside/internal/workflow"
)

// QueryTimeoutDuration bounds every store call.
var QueryTimeoutDuration = time.Second * 5

// Storage bundles the per-aggregate stores behind interfaces so the
// workflow services and handlers never touch a connection directly.
//
// Facilities, Slots and Users run on the pgx pool; Activities and
// Stats still run on database/sql + lib/pq (they predate the pgx
// migration and lean on pq.Array for the roster columns).
type Storage struct {
	Users interface {
		Create(context.Context, *User) error
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		SetRefreshToken(ctx context.Context, userID int64, token string) error
		GetRefreshToken(ctx context.Context, userID int64) (string, error)
		DeleteRefreshToken(ctx context.Context, userID int64) error
	}
	Facilities interface {
		Create(context.Context, *Facility) error
		GetByID(context.Context, int64) (*Facility, error)
		Update(ctx context.Context, facility *Facility) error
		Retire(ctx context.Context, facilityID int64) error
		AddPhotoURL(ctx context.Context, facilityID int64, url string) error
		RemovePhotoURL(ctx context.Context, facilityID int64, url string) error
		ListByOwner(ctx context.Context, ownerID int64) ([]Facility, error)
	}
	Slots interface {
		Create(context.Context, *SlotRequest) error
		GetByID(context.Context, int64) (*SlotRequest, error)
		ListApprovedForDate(ctx context.Context, facilityID int64, date time.Time) ([]SlotRequest, error)
		ListForFacilityDate(ctx context.Context, facilityID int64, date time.Time, status workflow.Status) ([]SlotRequest, error)
		ListByRequester(ctx context.Context, requesterID int64) ([]SlotRequest, error)
		Transition(ctx context.Context, requestID int64, from, to workflow.Status) error
		Cancel(ctx context.Context, requestID int64) error
		SetPaymentStatus(ctx context.Context, requestID int64, status workflow.PaymentStatus) error
		SetReference(ctx context.Context, requestID int64, ref string) error
		CompletePast(ctx context.Context, today time.Time) (int64, error)
		ExpirePastPending(ctx context.Context, today time.Time) (int64, error)
	}
	Activities interface {
		Create(context.Context, *Activity) error
		GetByID(context.Context, int64) (*Activity, error)
		Roster(ctx context.Context, activityID int64) ([]int64, error)
		RosterCount(ctx context.Context, activityID int64) (int, error)
		AddPlayer(ctx context.Context, activityID, userID int64, maxPlayers int) error
		SetStatus(ctx context.Context, activityID int64, status ActivityStatus) error
		CreateJoinRequest(context.Context, *JoinRequest) error
		GetJoinRequest(ctx context.Context, requestID int64) (*JoinRequest, error)
		HasPendingJoinRequest(ctx context.Context, activityID, userID int64) (bool, error)
		TransitionJoin(ctx context.Context, requestID int64, from, to workflow.Status) error
		RejectPendingJoinRequests(ctx context.Context, activityID int64) (int64, error)
		ListPendingJoinRequests(ctx context.Context, activityID int64) ([]JoinRequest, error)
	}
	Stats interface {
		OwnerSlotRequests(ctx context.Context, ownerID int64) ([]OwnerSlot, error)
		OrganizerPendingJoins(ctx context.Context, organizerID int64) ([]JoinRequest, error)
	}
}

func NewStorage(pool *pgxpool.Pool, db *sql.DB) Storage {
	return Storage{
		Users:      &UsersStore{pool},
		Facilities: &FacilitiesStore{pool},
		Slots:      &SlotRequestStore{pool},
		Activities: &ActivityStore{db},
		Stats:      &StatsStore{db},
	}
}
