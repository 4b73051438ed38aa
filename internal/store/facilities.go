package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courtside/internal/workflow"
)

// Facility is a bookable venue: an hourly rate, an operating window
// [open, close) and the sports it hosts.
type Facility struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	PricePerHour int       `json:"price_per_hour"`
	OpenTime     TimeOfDay `json:"open_time"`
	CloseTime    TimeOfDay `json:"close_time"`
	Sports       []string  `json:"sports"`
	PhotoURLs    []string  `json:"photo_urls,omitempty"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnedBy is the capability predicate every owner-gated operation
// checks against.
func (f *Facility) OwnedBy(userID int64) bool {
	return f.OwnerID == userID
}

type FacilitiesStore struct {
	db *pgxpool.Pool
}

func (s *FacilitiesStore) Create(ctx context.Context, facility *Facility) error {
	query := `
		INSERT INTO facilities (owner_id, name, address, price_per_hour, open_time, close_time, sports, photo_urls, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		facility.OwnerID,
		facility.Name,
		facility.Address,
		facility.PricePerHour,
		facility.OpenTime,
		facility.CloseTime,
		facility.Sports,
		facility.PhotoURLs,
		facility.IsAvailable,
	).Scan(&facility.ID, &facility.CreatedAt, &facility.UpdatedAt)
}

func (s *FacilitiesStore) GetByID(ctx context.Context, facilityID int64) (*Facility, error) {
	query := `
		SELECT id, owner_id, name, address, price_per_hour, open_time, close_time, sports, photo_urls, is_available, created_at, updated_at
		FROM facilities
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var f Facility
	err := s.db.QueryRow(ctx, query, facilityID).Scan(
		&f.ID,
		&f.OwnerID,
		&f.Name,
		&f.Address,
		&f.PricePerHour,
		&f.OpenTime,
		&f.CloseTime,
		&f.Sports,
		&f.PhotoURLs,
		&f.IsAvailable,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workflow.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Update writes the merged facility record back. The caller (the
// registry handler) is responsible for re-validating invariants before
// calling this.
func (s *FacilitiesStore) Update(ctx context.Context, facility *Facility) error {
	query := `
		UPDATE facilities
		SET name = $1, address = $2, price_per_hour = $3, open_time = $4, close_time = $5, sports = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		facility.Name,
		facility.Address,
		facility.PricePerHour,
		facility.OpenTime,
		facility.CloseTime,
		facility.Sports,
		facility.ID,
	).Scan(&facility.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workflow.ErrNotFound
		}
		return err
	}
	return nil
}

// Retire marks the facility unavailable. The record stays; approved
// slot requests against it remain valid.
func (s *FacilitiesStore) Retire(ctx context.Context, facilityID int64) error {
	query := `UPDATE facilities SET is_available = false, updated_at = NOW() WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, facilityID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrNotFound
	}
	return nil
}

func (s *FacilitiesStore) AddPhotoURL(ctx context.Context, facilityID int64, url string) error {
	query := `UPDATE facilities SET photo_urls = array_append(photo_urls, $1) WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, url, facilityID)
	return err
}

func (s *FacilitiesStore) RemovePhotoURL(ctx context.Context, facilityID int64, url string) error {
	query := `UPDATE facilities SET photo_urls = array_remove(photo_urls, $1) WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, url, facilityID)
	return err
}

func (s *FacilitiesStore) ListByOwner(ctx context.Context, ownerID int64) ([]Facility, error) {
	query := `
		SELECT id, owner_id, name, address, price_per_hour, open_time, close_time, sports, photo_urls, is_available, created_at, updated_at
		FROM facilities
		WHERE owner_id = $1
		ORDER BY created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Facility
	for rows.Next() {
		var f Facility
		if err := rows.Scan(
			&f.ID,
			&f.OwnerID,
			&f.Name,
			&f.Address,
			&f.PricePerHour,
			&f.OpenTime,
			&f.CloseTime,
			&f.Sports,
			&f.PhotoURLs,
			&f.IsAvailable,
			&f.CreatedAt,
			&f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
