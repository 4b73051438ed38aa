package workflow

// Status is the lifecycle state of a request record (a slot request or
// a join request). Pending is the only state a decision can be applied
// to; everything else is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"

	// StatusCompleted is set by the nightly sweep once an approved,
	// paid reservation's date has passed.
	StatusCompleted Status = "completed"
)

// Terminal reports whether no further decision may be applied.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Decide validates a pending -> approved/rejected transition. The
// stores apply the same rule as a conditional UPDATE, so a record that
// raced into a terminal state between the load and the write still
// fails with ErrConflict instead of being overwritten.
func Decide(from, to Status) error {
	if to != StatusApproved && to != StatusRejected {
		return Invalid("status", "decision must be approved or rejected")
	}
	if from.Terminal() {
		return ErrConflict
	}
	return nil
}

// PaymentStatus tracks settlement state on an approved slot request.
// Settlement itself happens outside this system; only the flag lives
// here.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// ValidPaymentStatus reports whether s is one of the known values.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}
