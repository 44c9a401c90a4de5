package schedule

import (
	"testing"

	"sharilka/internal/models"

	"github.com/stretchr/testify/assert"
)

func waitingBooking() *models.Booking {
	return bookingOn(1, 1, day(15), day(16), models.StatusWaiting)
}

func TestDecide_Approve(t *testing.T) {
	b := waitingBooking()

	err := Decide(b, 42, 42, true)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, b.Status)
}

func TestDecide_Reject(t *testing.T) {
	b := waitingBooking()

	err := Decide(b, 42, 42, false)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusRejected, b.Status)
}

func TestDecide_IdempotencyGuard(t *testing.T) {
	b := waitingBooking()

	assert.NoError(t, Decide(b, 42, 42, true))
	assert.ErrorIs(t, Decide(b, 42, 42, true), ErrAlreadyApproved)

	b = waitingBooking()
	assert.NoError(t, Decide(b, 42, 42, false))
	assert.ErrorIs(t, Decide(b, 42, 42, false), ErrAlreadyRejected)
}

func TestDecide_RejectApprovedAllowed(t *testing.T) {
	// Only the same terminal state is guarded; flipping approved -> rejected
	// goes through, matching the original decision semantics.
	b := waitingBooking()
	assert.NoError(t, Decide(b, 42, 42, true))
	assert.NoError(t, Decide(b, 42, 42, false))
	assert.Equal(t, models.StatusRejected, b.Status)
}

func TestDecide_NotOwner(t *testing.T) {
	b := waitingBooking()

	err := Decide(b, 7, 42, true)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, models.StatusWaiting, b.Status, "status must not change")
}
