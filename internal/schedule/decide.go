package schedule

import "sharilka/internal/models"

// Decide applies the owner's approve/reject decision to a booking.
//
// waiting -> approved | rejected; both targets are terminal. Re-approving an
// approved booking or re-rejecting a rejected one fails rather than silently
// succeeding. Ownership is re-asserted here even though the service checks it
// upstream: flipping someone else's booking is a security invariant, not a UX
// nicety.
func Decide(b *models.Booking, actorID, ownerID int64, approve bool) error {
	if actorID != ownerID {
		return ErrNotOwner
	}

	if approve {
		if b.Status == models.StatusApproved {
			return ErrAlreadyApproved
		}
		b.Status = models.StatusApproved
		return nil
	}

	if b.Status == models.StatusRejected {
		return ErrAlreadyRejected
	}
	b.Status = models.StatusRejected
	return nil
}
