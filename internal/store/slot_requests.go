package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courtside/internal/workflow"
)

// SlotRequest is a reservation request for one [start, end) window on
// a facility and date. Once it reaches a terminal status the record is
// immutable except for the payment flag.
type SlotRequest struct {
	ID            int64                  `json:"id"`
	FacilityID    int64                  `json:"facility_id"`
	RequesterID   int64                  `json:"requester_id"`
	Date          time.Time              `json:"date"`
	StartTime     TimeOfDay              `json:"start_time"`
	EndTime       TimeOfDay              `json:"end_time"`
	Amount        int                    `json:"amount"`
	Note          *string                `json:"note,omitempty"`
	Status        workflow.Status        `json:"status"`
	PaymentStatus workflow.PaymentStatus `json:"payment_status"`
	Reference     *string                `json:"reference,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// OverlapsWith reports whether the two requests contend for the same
// window on the same facility and date.
func (r *SlotRequest) OverlapsWith(other *SlotRequest) bool {
	if r.FacilityID != other.FacilityID || !r.Date.Equal(other.Date) {
		return false
	}
	return Overlaps(r.StartTime, r.EndTime, other.StartTime, other.EndTime)
}

type SlotRequestStore struct {
	db *pgxpool.Pool
}

// NewSlotRequestStore is used by the standalone cron runner, which
// only needs this store.
func NewSlotRequestStore(pool *pgxpool.Pool) *SlotRequestStore {
	return &SlotRequestStore{db: pool}
}

const slotColumns = `id, facility_id, requester_id, date, start_time, end_time, amount, note, status, payment_status, reference, created_at, updated_at`

func scanSlot(row pgx.Row, r *SlotRequest) error {
	return row.Scan(
		&r.ID,
		&r.FacilityID,
		&r.RequesterID,
		&r.Date,
		&r.StartTime,
		&r.EndTime,
		&r.Amount,
		&r.Note,
		&r.Status,
		&r.PaymentStatus,
		&r.Reference,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
}

func (s *SlotRequestStore) Create(ctx context.Context, req *SlotRequest) error {
	query := `
		INSERT INTO slot_requests (facility_id, requester_id, date, start_time, end_time, amount, note, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		req.FacilityID,
		req.RequesterID,
		req.Date,
		req.StartTime,
		req.EndTime,
		req.Amount,
		req.Note,
		req.Status,
		req.PaymentStatus,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (s *SlotRequestStore) GetByID(ctx context.Context, requestID int64) (*SlotRequest, error) {
	query := `SELECT ` + slotColumns + ` FROM slot_requests WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var r SlotRequest
	if err := scanSlot(s.db.QueryRow(ctx, query, requestID), &r); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workflow.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ListApprovedForDate returns the approved requests that block new
// overlapping reservations. Pending requests deliberately never
// appear here.
func (s *SlotRequestStore) ListApprovedForDate(ctx context.Context, facilityID int64, date time.Time) ([]SlotRequest, error) {
	return s.ListForFacilityDate(ctx, facilityID, date, workflow.StatusApproved)
}

func (s *SlotRequestStore) ListForFacilityDate(ctx context.Context, facilityID int64, date time.Time, status workflow.Status) ([]SlotRequest, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slot_requests
		WHERE facility_id = $1 AND date = $2 AND status = $3
		ORDER BY start_time
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, facilityID, date, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSlots(rows)
}

func (s *SlotRequestStore) ListByRequester(ctx context.Context, requesterID int64) ([]SlotRequest, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slot_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSlots(rows)
}

func collectSlots(rows pgx.Rows) ([]SlotRequest, error) {
	var out []SlotRequest
	for rows.Next() {
		var r SlotRequest
		if err := scanSlot(rows, &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Transition applies a status change as a compare-and-set against the
// stored status. Zero rows affected means the record already left the
// expected state, so a second decision on the same request reports a
// conflict instead of overwriting the first.
func (s *SlotRequestStore) Transition(ctx context.Context, requestID int64, from, to workflow.Status) error {
	query := `
		UPDATE slot_requests
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, to, requestID, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrConflict
	}
	return nil
}

// Cancel is requester-initiated and is the one transition allowed out
// of approved; the same compare-and-set shape guards it.
func (s *SlotRequestStore) Cancel(ctx context.Context, requestID int64) error {
	query := `
		UPDATE slot_requests
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'approved')
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, requestID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrConflict
	}
	return nil
}

func (s *SlotRequestStore) SetPaymentStatus(ctx context.Context, requestID int64, status workflow.PaymentStatus) error {
	query := `
		UPDATE slot_requests
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'approved'
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, status, requestID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrConflict
	}
	return nil
}

func (s *SlotRequestStore) SetReference(ctx context.Context, requestID int64, ref string) error {
	query := `UPDATE slot_requests SET reference = $1 WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, ref, requestID)
	return err
}

// CompletePast marks approved, paid requests whose date has passed as
// completed. Run by the nightly sweep.
func (s *SlotRequestStore) CompletePast(ctx context.Context, today time.Time) (int64, error) {
	query := `
		UPDATE slot_requests
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'approved' AND payment_status = 'paid' AND date < $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, today)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ExpirePastPending rejects pending requests the owner never decided
// before the requested date went by.
func (s *SlotRequestStore) ExpirePastPending(ctx context.Context, today time.Time) (int64, error) {
	query := `
		UPDATE slot_requests
		SET status = 'rejected', updated_at = NOW()
		WHERE status = 'pending' AND date < $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, today)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
