package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"courtside/internal/workflow"
)

// OwnerSlot is a slot request joined with the owning facility, the
// row shape the aggregation engine folds over.
type OwnerSlot struct {
	RequestID     int64                  `json:"request_id"`
	FacilityID    int64                  `json:"facility_id"`
	FacilityName  string                 `json:"facility_name"`
	RequesterID   int64                  `json:"requester_id"`
	Date          time.Time              `json:"date"`
	StartTime     TimeOfDay              `json:"start_time"`
	EndTime       TimeOfDay              `json:"end_time"`
	Amount        int                    `json:"amount"`
	Status        workflow.Status        `json:"status"`
	PaymentStatus workflow.PaymentStatus `json:"payment_status"`
}

// StatsStore lists raw rows for the aggregation engine. Sums and
// filters happen in Go so the projections are recomputed from the
// underlying collections on every call, never maintained
// incrementally.
type StatsStore struct {
	db *sql.DB
}

func (s *StatsStore) OwnerSlotRequests(ctx context.Context, ownerID int64) ([]OwnerSlot, error) {
	query := `
		SELECT
			r.id, r.facility_id, f.name, r.requester_id, r.date,
			r.start_time, r.end_time, r.amount, r.status, r.payment_status
		FROM slot_requests r
		JOIN facilities f ON f.id = r.facility_id
		WHERE f.owner_id = $1
		ORDER BY r.date, r.start_time
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing owner slot requests: %w", err)
	}
	defer rows.Close()

	var out []OwnerSlot
	for rows.Next() {
		var o OwnerSlot
		if err := rows.Scan(
			&o.RequestID,
			&o.FacilityID,
			&o.FacilityName,
			&o.RequesterID,
			&o.Date,
			&o.StartTime,
			&o.EndTime,
			&o.Amount,
			&o.Status,
			&o.PaymentStatus,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *StatsStore) OrganizerPendingJoins(ctx context.Context, organizerID int64) ([]JoinRequest, error) {
	query := `
		SELECT jr.id, jr.activity_id, jr.user_id, jr.note, jr.status, jr.created_at, jr.updated_at
		FROM activity_join_requests jr
		JOIN activities a ON a.id = jr.activity_id
		WHERE a.organizer_id = $1 AND jr.status = 'pending'
		ORDER BY jr.created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, fmt.Errorf("error listing pending joins: %w", err)
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
