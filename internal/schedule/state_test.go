package schedule

import (
	"testing"
	"time"

	"sharilka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		raw  string
		want State
		ok   bool
	}{
		{"ALL", StateAll, true},
		{"all", StateAll, true},
		{"", StateAll, true},
		{"  current ", StateCurrent, true},
		{"PAST", StatePast, true},
		{"FUTURE", StateFuture, true},
		{"WAITING", StateWaiting, true},
		{"REJECTED", StateRejected, true},
		{"UNSUPPORTED_STATUS", "", false},
		{"canceled", "", false},
	}

	for _, tt := range tests {
		got, err := ParseState(tt.raw)
		if tt.ok {
			require.NoError(t, err, "raw=%q", tt.raw)
			assert.Equal(t, tt.want, got)
		} else {
			assert.ErrorIs(t, err, ErrUnknownState, "raw=%q", tt.raw)
		}
	}
}

func TestInBucket_TimePartition(t *testing.T) {
	now := day(10)
	bookings := []*models.Booking{
		bookingOn(1, 1, day(1), day(2), models.StatusApproved),   // past
		bookingOn(2, 1, day(9), day(12), models.StatusApproved),  // current
		bookingOn(3, 1, day(15), day(16), models.StatusWaiting),  // future
		bookingOn(4, 1, day(10), day(11), models.StatusApproved), // starts exactly now -> current
		bookingOn(5, 1, day(8), day(10), models.StatusApproved),  // ends exactly now -> neither current nor past
	}

	// CURRENT/PAST/FUTURE are mutually exclusive; exhaustive except for
	// bookings ending exactly at now (end == now is neither past nor current
	// under strict end < now / end > now).
	for _, b := range bookings[:4] {
		matches := 0
		for _, s := range []State{StateCurrent, StatePast, StateFuture} {
			if InBucket(b, s, now) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "booking %d must be in exactly one time bucket", b.ID)
	}
}

func TestInBucket_StatusBuckets(t *testing.T) {
	now := day(10)
	waiting := bookingOn(1, 1, day(15), day(16), models.StatusWaiting)
	rejected := bookingOn(2, 1, day(15), day(16), models.StatusRejected)
	approved := bookingOn(3, 1, day(15), day(16), models.StatusApproved)

	assert.True(t, InBucket(waiting, StateWaiting, now))
	assert.False(t, InBucket(waiting, StateRejected, now))
	assert.True(t, InBucket(rejected, StateRejected, now))
	assert.False(t, InBucket(approved, StateWaiting, now))

	// Status buckets are orthogonal to time buckets.
	assert.True(t, InBucket(waiting, StateFuture, now))
	assert.True(t, InBucket(waiting, StateAll, now))
}

func TestFilterBucket(t *testing.T) {
	now := day(10)
	bookings := []*models.Booking{
		bookingOn(1, 1, day(1), day(2), models.StatusApproved),
		bookingOn(2, 1, day(15), day(16), models.StatusWaiting),
		bookingOn(3, 1, day(18), day(19), models.StatusRejected),
	}

	assert.Len(t, FilterBucket(bookings, StateAll, now), 3)
	past := FilterBucket(bookings, StatePast, now)
	require.Len(t, past, 1)
	assert.Equal(t, int64(1), past[0].ID)

	future := FilterBucket(bookings, StateFuture, now)
	assert.Len(t, future, 2)

	rejected := FilterBucket(bookings, StateRejected, now)
	require.Len(t, rejected, 1)
	assert.Equal(t, int64(3), rejected[0].ID)
}

func TestFilterBucket_RejectedOnlyHistory(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	bookings := []*models.Booking{
		bookingOn(1, 1, day(1), day(2), models.StatusRejected),
	}

	// A rejected-only history contributes nothing to the waiting bucket.
	assert.Empty(t, FilterBucket(bookings, StateWaiting, now))
}
