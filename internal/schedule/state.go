package schedule

import (
	"fmt"
	"strings"
	"time"

	"sharilka/internal/models"
)

// State names a filter bucket for booking listings.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// ParseState maps a raw filter value to a State. Unrecognized values fail
// fast instead of degrading to a sentinel member. Empty input means ALL.
func ParseState(raw string) (State, error) {
	switch State(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", StateAll:
		return StateAll, nil
	case StateCurrent:
		return StateCurrent, nil
	case StatePast:
		return StatePast, nil
	case StateFuture:
		return StateFuture, nil
	case StateWaiting:
		return StateWaiting, nil
	case StateRejected:
		return StateRejected, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownState, raw)
	}
}

// InBucket reports whether the booking belongs to the bucket at the given
// instant. CURRENT/PAST/FUTURE partition the time axis; WAITING/REJECTED are
// status-based and orthogonal to it.
func InBucket(b *models.Booking, state State, now time.Time) bool {
	switch state {
	case StateAll:
		return true
	case StateCurrent:
		return !b.Start.After(now) && b.End.After(now)
	case StatePast:
		return b.End.Before(now)
	case StateFuture:
		return b.Start.After(now)
	case StateWaiting:
		return b.Status == models.StatusWaiting
	case StateRejected:
		return b.Status == models.StatusRejected
	default:
		return false
	}
}

// FilterBucket keeps the bookings matching the bucket, preserving order.
func FilterBucket(bookings []*models.Booking, state State, now time.Time) []*models.Booking {
	out := make([]*models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if InBucket(b, state, now) {
			out = append(out, b)
		}
	}
	return out
}
