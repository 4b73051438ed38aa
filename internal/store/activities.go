package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"courtside/internal/workflow"
)

// ActivityStatus is the roster state of a group activity, derived
// from |roster| against max_players unless the organizer cancelled.
type ActivityStatus string

const (
	ActivityOpen      ActivityStatus = "open"
	ActivityFull      ActivityStatus = "full"
	ActivityCancelled ActivityStatus = "cancelled"
)

// Activity is a capacity-bounded pickup game. The organizer always
// holds the first roster seat; the location is free text, not a
// facility reference, since games happen off-platform too.
type Activity struct {
	ID              int64          `json:"id"`
	OrganizerID     int64          `json:"organizer_id"`
	Sport           string         `json:"sport"`
	Date            time.Time      `json:"date"`
	StartTime       TimeOfDay      `json:"start_time"`
	EndTime         TimeOfDay      `json:"end_time"`
	LocationName    string         `json:"location_name"`
	MaxPlayers      int            `json:"max_players"`
	RequiredPlayers int            `json:"required_players"`
	PerHeadFee      *int           `json:"per_head_fee,omitempty"`
	Status          ActivityStatus `json:"status"`
	PlayerIDs       []int64        `json:"player_ids,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// OrganizedBy is the capability predicate for organizer-gated
// operations.
func (a *Activity) OrganizedBy(userID int64) bool {
	return a.OrganizerID == userID
}

// HasPlayer reports whether the user already holds a roster seat.
func (a *Activity) HasPlayer(userID int64) bool {
	for _, id := range a.PlayerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// JoinRequest asks for a roster seat on an activity.
type JoinRequest struct {
	ID         int64           `json:"id"`
	ActivityID int64           `json:"activity_id"`
	UserID     int64           `json:"user_id"`
	Note       *string         `json:"note,omitempty"`
	Status     workflow.Status `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type ActivityStore struct {
	db *sql.DB
}

// Create inserts the activity and seats the organizer in the same
// transaction, so a roster never exists without its first member.
func (s *ActivityStore) Create(ctx context.Context, activity *Activity) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO activities (organizer_id, sport, date, start_time, end_time, location_name, max_players, required_players, per_head_fee, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		activity.OrganizerID,
		activity.Sport,
		activity.Date,
		activity.StartTime,
		activity.EndTime,
		activity.LocationName,
		activity.MaxPlayers,
		activity.RequiredPlayers,
		activity.PerHeadFee,
		activity.Status,
	).Scan(&activity.ID, &activity.CreatedAt, &activity.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating activity: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO activity_players (activity_id, user_id, joined_at) VALUES ($1, $2, NOW())`,
		activity.ID, activity.OrganizerID,
	)
	if err != nil {
		return fmt.Errorf("error seating organizer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	activity.PlayerIDs = []int64{activity.OrganizerID}
	return nil
}

func (s *ActivityStore) GetByID(ctx context.Context, activityID int64) (*Activity, error) {
	query := `
		SELECT
			a.id, a.organizer_id, a.sport, a.date, a.start_time, a.end_time,
			a.location_name, a.max_players, a.required_players, a.per_head_fee,
			a.status, a.created_at, a.updated_at,
			COALESCE(
				(SELECT array_agg(ap.user_id ORDER BY ap.joined_at)
				 FROM activity_players ap
				 WHERE ap.activity_id = a.id),
				'{}'
			) AS player_ids
		FROM activities a
		WHERE a.id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var a Activity
	err := s.db.QueryRowContext(ctx, query, activityID).Scan(
		&a.ID,
		&a.OrganizerID,
		&a.Sport,
		&a.Date,
		&a.StartTime,
		&a.EndTime,
		&a.LocationName,
		&a.MaxPlayers,
		&a.RequiredPlayers,
		&a.PerHeadFee,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
		pq.Array(&a.PlayerIDs),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, workflow.ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving activity: %w", err)
	}
	return &a, nil
}

func (s *ActivityStore) Roster(ctx context.Context, activityID int64) ([]int64, error) {
	query := `SELECT user_id FROM activity_players WHERE activity_id = $1 ORDER BY joined_at`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *ActivityStore) RosterCount(ctx context.Context, activityID int64) (int, error) {
	query := `SELECT COUNT(*) FROM activity_players WHERE activity_id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var count int
	if err := s.db.QueryRowContext(ctx, query, activityID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting roster: %w", err)
	}
	return count, nil
}

// AddPlayer seats a user only while the roster is below maxPlayers.
// The count check runs inside the INSERT, so two approvals racing for
// the last seat cannot both land.
func (s *ActivityStore) AddPlayer(ctx context.Context, activityID, userID int64, maxPlayers int) error {
	query := `
		INSERT INTO activity_players (activity_id, user_id, joined_at)
		SELECT $1, $2, NOW()
		WHERE (SELECT COUNT(*) FROM activity_players WHERE activity_id = $1) < $3
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, activityID, userID, maxPlayers)
	if err != nil {
		return fmt.Errorf("error adding player: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return workflow.ErrConflict
	}
	return nil
}

func (s *ActivityStore) SetStatus(ctx context.Context, activityID int64, status ActivityStatus) error {
	query := `UPDATE activities SET status = $1, updated_at = NOW() WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, status, activityID)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return workflow.ErrNotFound
	}
	return nil
}

func (s *ActivityStore) CreateJoinRequest(ctx context.Context, req *JoinRequest) error {
	query := `
		INSERT INTO activity_join_requests (activity_id, user_id, note, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRowContext(ctx, query,
		req.ActivityID, req.UserID, req.Note, req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (s *ActivityStore) GetJoinRequest(ctx context.Context, requestID int64) (*JoinRequest, error) {
	query := `
		SELECT id, activity_id, user_id, note, status, created_at, updated_at
		FROM activity_join_requests
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var req JoinRequest
	err := s.db.QueryRowContext(ctx, query, requestID).Scan(
		&req.ID,
		&req.ActivityID,
		&req.UserID,
		&req.Note,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, workflow.ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving join request: %w", err)
	}
	return &req, nil
}

func (s *ActivityStore) HasPendingJoinRequest(ctx context.Context, activityID, userID int64) (bool, error) {
	query := `
		SELECT 1 FROM activity_join_requests
		WHERE activity_id = $1 AND user_id = $2 AND status = 'pending'
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists int
	err := s.db.QueryRowContext(ctx, query, activityID, userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// TransitionJoin is the same compare-and-set as on slot requests: the
// WHERE clause pins the expected status and zero rows means another
// decision already landed.
func (s *ActivityStore) TransitionJoin(ctx context.Context, requestID int64, from, to workflow.Status) error {
	query := `
		UPDATE activity_join_requests
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, to, requestID, from)
	if err != nil {
		return fmt.Errorf("error updating join request: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return workflow.ErrConflict
	}
	return nil
}

// RejectPendingJoinRequests sweeps every pending request on a
// cancelled activity into rejected.
func (s *ActivityStore) RejectPendingJoinRequests(ctx context.Context, activityID int64) (int64, error) {
	query := `
		UPDATE activity_join_requests
		SET status = 'rejected', updated_at = NOW()
		WHERE activity_id = $1 AND status = 'pending'
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, activityID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *ActivityStore) ListPendingJoinRequests(ctx context.Context, activityID int64) ([]JoinRequest, error) {
	query := `
		SELECT id, activity_id, user_id, note, status, created_at, updated_at
		FROM activity_join_requests
		WHERE activity_id = $1 AND status = 'pending'
		ORDER BY created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, activityID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving join requests: %w", err)
	}
	defer rows.Close()

	var out []JoinRequest
	for rows.Next() {
		var req JoinRequest
		if err := rows.Scan(
			&req.ID,
			&req.ActivityID,
			&req.UserID,
			&req.Note,
			&req.Status,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
