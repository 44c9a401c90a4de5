package schedule

import (
	"time"

	"sharilka/internal/models"
)

// Overlaps reports whether the candidate interval [start, end] collides with
// the booking. The test is boundary-inclusive on both ends: a candidate that
// starts exactly when an approved booking ends still conflicts. That matches
// the historical behavior of the conflict query and is a policy, not a bug.
func Overlaps(start, end time.Time, b *models.Booking) bool {
	if within(start, b.Start, b.End) {
		return true
	}
	if within(end, b.Start, b.End) {
		return true
	}
	// Candidate fully encloses the booking.
	return !start.After(b.Start) && !end.Before(b.End)
}

// HasConflict decides whether a candidate interval may be scheduled against
// the item's committed reservations. Callers pass only APPROVED bookings:
// waiting holds on the same slot are tolerated until the owner resolves them.
// Pure predicate, no side effects.
func HasConflict(start, end time.Time, approved []*models.Booking) bool {
	for _, b := range approved {
		if Overlaps(start, end, b) {
			return true
		}
	}
	return false
}

// ValidateInterval enforces end > start.
func ValidateInterval(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidInterval
	}
	return nil
}

func within(t, lo, hi time.Time) bool {
	return !t.Before(lo) && !t.After(hi)
}
