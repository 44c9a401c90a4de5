package database

import (
	"context"
	"os"
	"testing"
	"time"

	"sharilka/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, name, email string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

func createTestItem(t *testing.T, db *DB, ownerID int64, name string) *models.Item {
	t.Helper()
	item := &models.Item{OwnerID: ownerID, Name: name, Description: name + " description", Available: true}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func createTestBooking(t *testing.T, db *DB, item *models.Item, booker *models.User, start, end time.Time) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ItemID:     item.ID,
		ItemName:   item.Name,
		BookerID:   booker.ID,
		BookerName: booker.Name,
		Start:      start,
		End:        end,
	}
	require.NoError(t, db.CreateBookingWithConflictCheck(context.Background(), b))
	return b
}
