package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sharilka/internal/models"
)

const bookingColumns = `id, item_id, item_name, booker_id, booker_name, start_at, end_at, status, created_at, updated_at, version`

// Closed-interval overlap against an existing row: the candidate's start or
// end falls inside [start_at, end_at], or the candidate encloses the row.
// Touching boundaries count as overlap. Placeholder order: start, end, start, end.
const overlapPredicate = `(? BETWEEN start_at AND end_at OR ? BETWEEN start_at AND end_at OR (start_at >= ? AND end_at <= ?))`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.ItemID, &b.ItemName, &b.BookerID, &b.BookerName,
		&b.Start, &b.End, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// CreateBookingWithConflictCheck inserts a waiting booking after re-checking
// the overlap predicate against approved bookings inside the same transaction.
// Two racing creates for overlapping slots both land as waiting (that is
// allowed); the transactional check only guards against an approved booking
// appearing between the service-level check and the insert.
func (db *DB) CreateBookingWithConflictCheck(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	conflicts, err := countApprovedOverlaps(ctx, tx, booking.ItemID, 0, booking.Start, booking.End)
	if err != nil {
		return err
	}
	if conflicts > 0 {
		return ErrSlotConflict
	}

	query := `INSERT INTO bookings (item_id, item_name, booker_id, booker_name, start_at, end_at, status, created_at, updated_at, version)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, query,
		booking.ItemID,
		booking.ItemName,
		booking.BookerID,
		booking.BookerName,
		booking.Start.UTC(),
		booking.End.UTC(),
		models.StatusWaiting,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.Status = models.StatusWaiting
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	return tx.Commit()
}

// ApproveBookingWithConflictCheck flips a booking to approved, re-running the
// overlap check against other approved bookings of the same item inside the
// transaction. The version guard makes a losing concurrent approver fail with
// ErrConcurrentModification instead of silently double-approving.
func (db *DB) ApproveBookingWithConflictCheck(ctx context.Context, id, fromVersion int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get booking in tx: %w", err)
	}

	conflicts, err := countApprovedOverlaps(ctx, tx, booking.ItemID, id, booking.Start, booking.End)
	if err != nil {
		return err
	}
	if conflicts > 0 {
		return ErrSlotConflict
	}

	update := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := tx.ExecContext(ctx, update, models.StatusApproved, time.Now().UTC(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to approve booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}

	return tx.Commit()
}

func countApprovedOverlaps(ctx context.Context, tx *sql.Tx, itemID, excludeID int64, start, end time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE item_id = ? AND id != ? AND status = ? AND ` + overlapPredicate

	var count int
	err := tx.QueryRowContext(ctx, query,
		itemID, excludeID, models.StatusApproved,
		start.UTC(), end.UTC(), start.UTC(), end.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) GetBookingsByBooker(ctx context.Context, bookerID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booker_id = ? ORDER BY start_at DESC`
	return db.queryBookings(ctx, query, bookerID)
}

func (db *DB) GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error) {
	query := `SELECT b.id, b.item_id, b.item_name, b.booker_id, b.booker_name, b.start_at, b.end_at, b.status, b.created_at, b.updated_at, b.version
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ? ORDER BY b.start_at DESC`
	return db.queryBookings(ctx, query, ownerID)
}

func (db *DB) GetApprovedBookingsInRange(ctx context.Context, itemID int64, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND status = ? AND ` + overlapPredicate + ` ORDER BY start_at ASC`
	return db.queryBookings(ctx, query,
		itemID, models.StatusApproved,
		start.UTC(), end.UTC(), start.UTC(), end.UTC(),
	)
}

// GetItemBookingsForTimeline returns approved and waiting bookings for the
// given items, ordered by start ascending, as the timeline classifier expects.
func (db *DB) GetItemBookingsForTimeline(ctx context.Context, itemIDs []int64) ([]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id IN (` + placeholders + `) AND status IN (?, ?) ORDER BY start_at ASC`

	args := make([]any, 0, len(itemIDs)+2)
	for _, id := range itemIDs {
		args = append(args, id)
	}
	args = append(args, models.StatusApproved, models.StatusWaiting)

	return db.queryBookings(ctx, query, args...)
}

// HasFinishedBooking reports whether the booker has an approved booking of
// the item that started before now. Gate for leaving comments.
func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE booker_id = ? AND item_id = ? AND status = ? AND start_at < ?`
	var count int
	err := db.QueryRowContext(ctx, query, bookerID, itemID, models.StatusApproved, now.UTC()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}
