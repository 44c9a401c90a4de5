package database

import (
	"context"
	"testing"
	"time"

	"sharilka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingConflictCheck(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	rival := createTestUser(t, db, "Rival", "rival@example.com")
	item := createTestItem(t, db, owner.ID, "Drill")

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	first := createTestBooking(t, db, item, booker, base, base.Add(2*time.Hour))
	assert.Equal(t, models.StatusWaiting, first.Status)
	assert.Equal(t, int64(1), first.Version)

	// A waiting booking does not block another waiting booking for the
	// same slot.
	second := createTestBooking(t, db, item, rival, base, base.Add(2*time.Hour))
	assert.NotZero(t, second.ID)

	// Once one of them is approved, an overlapping create is refused.
	require.NoError(t, db.ApproveBookingWithConflictCheck(ctx, first.ID, first.Version))

	overlapping := &models.Booking{
		ItemID:     item.ID,
		ItemName:   item.Name,
		BookerID:   rival.ID,
		BookerName: rival.Name,
		Start:      base.Add(time.Hour),
		End:        base.Add(3 * time.Hour),
	}
	err := db.CreateBookingWithConflictCheck(ctx, overlapping)
	assert.ErrorIs(t, err, ErrSlotConflict)

	// A booking that merely touches the approved end is still a conflict.
	touching := &models.Booking{
		ItemID:     item.ID,
		ItemName:   item.Name,
		BookerID:   rival.ID,
		BookerName: rival.Name,
		Start:      base.Add(2 * time.Hour),
		End:        base.Add(4 * time.Hour),
	}
	err = db.CreateBookingWithConflictCheck(ctx, touching)
	assert.ErrorIs(t, err, ErrSlotConflict)

	// Disjoint slot goes through.
	disjoint := &models.Booking{
		ItemID:     item.ID,
		ItemName:   item.Name,
		BookerID:   rival.ID,
		BookerName: rival.Name,
		Start:      base.Add(3 * time.Hour),
		End:        base.Add(4 * time.Hour),
	}
	require.NoError(t, db.CreateBookingWithConflictCheck(ctx, disjoint))
}

func TestCreateBookingConflictEnclosedCandidate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Tent")

	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	wide := createTestBooking(t, db, item, booker, base, base.Add(10*24*time.Hour))
	require.NoError(t, db.ApproveBookingWithConflictCheck(ctx, wide.ID, wide.Version))

	// Candidate strictly inside the approved interval must be refused.
	inside := &models.Booking{
		ItemID:     item.ID,
		ItemName:   item.Name,
		BookerID:   booker.ID,
		BookerName: booker.Name,
		Start:      base.Add(2 * 24 * time.Hour),
		End:        base.Add(3 * 24 * time.Hour),
	}
	err := db.CreateBookingWithConflictCheck(ctx, inside)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestApproveBookingConflictCheck(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	rival := createTestUser(t, db, "Rival", "rival@example.com")
	item := createTestItem(t, db, owner.ID, "Kayak")

	base := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	first := createTestBooking(t, db, item, booker, base, base.Add(2*time.Hour))
	second := createTestBooking(t, db, item, rival, base.Add(time.Hour), base.Add(3*time.Hour))

	require.NoError(t, db.ApproveBookingWithConflictCheck(ctx, first.ID, first.Version))

	// The overlapping waiting booking can no longer be approved.
	err := db.ApproveBookingWithConflictCheck(ctx, second.ID, second.Version)
	assert.ErrorIs(t, err, ErrSlotConflict)

	// But it can still be rejected.
	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, second.ID, second.Version, models.StatusRejected))

	got, err := db.GetBooking(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Equal(t, int64(2), got.Version)
}

func TestOptimisticLocking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Bike")

	base := time.Date(2026, 9, 3, 12, 0, 0, 0, time.UTC)
	booking := createTestBooking(t, db, item, booker, base, base.Add(time.Hour))
	assert.Equal(t, int64(1), booking.Version)

	// Successful update bumps the version.
	err := db.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, models.StatusApproved)
	require.NoError(t, err)

	// Stale version loses.
	err = db.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, models.StatusRejected)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	updated, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, models.StatusApproved, updated.Status)
}

func TestGetBookingNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBooking(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetBookingsByBookerAndOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	itemA := createTestItem(t, db, owner.ID, "Ladder")
	itemB := createTestItem(t, db, booker.ID, "Saw")

	base := time.Date(2026, 9, 4, 8, 0, 0, 0, time.UTC)
	early := createTestBooking(t, db, itemA, booker, base, base.Add(time.Hour))
	late := createTestBooking(t, db, itemA, booker, base.Add(5*time.Hour), base.Add(6*time.Hour))
	createTestBooking(t, db, itemB, owner, base, base.Add(time.Hour))

	byBooker, err := db.GetBookingsByBooker(ctx, booker.ID)
	require.NoError(t, err)
	require.Len(t, byBooker, 2)
	// Newest start first.
	assert.Equal(t, late.ID, byBooker[0].ID)
	assert.Equal(t, early.ID, byBooker[1].ID)

	byOwner, err := db.GetBookingsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, byOwner, 2)
	assert.Equal(t, late.ID, byOwner[0].ID)
	assert.Equal(t, "Ladder", byOwner[0].ItemName)
}

func TestGetItemBookingsForTimeline(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Projector")

	base := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	second := createTestBooking(t, db, item, booker, base.Add(48*time.Hour), base.Add(49*time.Hour))
	first := createTestBooking(t, db, item, booker, base, base.Add(time.Hour))
	rejected := createTestBooking(t, db, item, booker, base.Add(24*time.Hour), base.Add(25*time.Hour))
	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, rejected.ID, rejected.Version, models.StatusRejected))

	bookings, err := db.GetItemBookingsForTimeline(ctx, []int64{item.ID})
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	// Ascending by start, rejected excluded.
	assert.Equal(t, first.ID, bookings[0].ID)
	assert.Equal(t, second.ID, bookings[1].ID)

	none, err := db.GetItemBookingsForTimeline(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHasFinishedBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Camera")

	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)

	// Future booking does not count even when approved.
	future := createTestBooking(t, db, item, booker, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, db.ApproveBookingWithConflictCheck(ctx, future.ID, future.Version))

	ok, err := db.HasFinishedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	// Started booking counts once approved.
	past := createTestBooking(t, db, item, booker, now.Add(-2*time.Hour), now.Add(-time.Hour))
	ok, err = db.HasFinishedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok, "waiting booking should not count")

	require.NoError(t, db.ApproveBookingWithConflictCheck(ctx, past.ID, past.Version))
	ok, err = db.HasFinishedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)
}
