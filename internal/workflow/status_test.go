package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	t.Run("pending can be approved", func(t *testing.T) {
		require.NoError(t, Decide(StatusPending, StatusApproved))
	})

	t.Run("pending can be rejected", func(t *testing.T) {
		require.NoError(t, Decide(StatusPending, StatusRejected))
	})

	t.Run("terminal states refuse further decisions", func(t *testing.T) {
		for _, from := range []Status{StatusApproved, StatusRejected, StatusCancelled, StatusCompleted} {
			assert.ErrorIs(t, Decide(from, StatusApproved), ErrConflict, "from %s", from)
			assert.ErrorIs(t, Decide(from, StatusRejected), ErrConflict, "from %s", from)
		}
	})

	t.Run("only approved and rejected are decisions", func(t *testing.T) {
		assert.True(t, IsValidation(Decide(StatusPending, StatusCancelled)))
		assert.True(t, IsValidation(Decide(StatusPending, StatusPending)))
		assert.True(t, IsValidation(Decide(StatusPending, StatusCompleted)))
	})
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	for _, s := range []Status{StatusApproved, StatusRejected, StatusCancelled, StatusCompleted} {
		assert.True(t, s.Terminal(), "status %s", s)
	}
}

func TestValidPaymentStatus(t *testing.T) {
	assert.True(t, ValidPaymentStatus(PaymentUnpaid))
	assert.True(t, ValidPaymentStatus(PaymentPaid))
	assert.True(t, ValidPaymentStatus(PaymentRefunded))
	assert.False(t, ValidPaymentStatus("partial"))
	assert.False(t, ValidPaymentStatus(""))
}

func TestValidationError(t *testing.T) {
	err := Invalidf("date", "must not be before %s", "2026-01-01")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "invalid date: must not be before 2026-01-01", err.Error())
	assert.False(t, IsValidation(ErrConflict))
}
