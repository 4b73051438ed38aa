package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtside/internal/workflow"
)

func TestStatsStoreOwnerSlotRequests(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := &StatsStore{db: db}

	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "facility_id", "name", "requester_id", "date",
		"start_time", "end_time", "amount", "status", "payment_status",
	}).
		AddRow(int64(1), int64(10), "Riverside Futsal", int64(2), date, int64(600), int64(720), 2400, "approved", "paid").
		AddRow(int64(2), int64(10), "Riverside Futsal", int64(3), date, int64(720), int64(780), 1200, "pending", "unpaid")

	mock.ExpectQuery(regexp.QuoteMeta("FROM slot_requests r")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	out, err := s.OwnerSlotRequests(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Riverside Futsal", out[0].FacilityName)
	assert.Equal(t, TimeOfDay(600), out[0].StartTime)
	assert.Equal(t, workflow.StatusApproved, out[0].Status)
	assert.Equal(t, workflow.PaymentPaid, out[0].PaymentStatus)
	assert.Equal(t, workflow.StatusPending, out[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsStoreOrganizerPendingJoins(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := &StatsStore{db: db}

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "activity_id", "user_id", "note", "status", "created_at", "updated_at"}).
		AddRow(int64(4), int64(7), int64(42), nil, "pending", now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_join_requests jr")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	out, err := s.OrganizerPendingJoins(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(7), out[0].ActivityID)
	assert.Equal(t, workflow.StatusPending, out[0].Status)
	assert.Nil(t, out[0].Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}
