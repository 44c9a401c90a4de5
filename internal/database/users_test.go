package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice", "alice@example.com")
	assert.NotZero(t, user.ID)

	got, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)

	got.Name = "Alice B"
	got.TelegramChatID = 42
	require.NoError(t, db.UpdateUser(ctx, got))

	updated, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, int64(42), updated.TelegramChatID)

	all, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, db.DeleteUser(ctx, user.ID))
	_, err = db.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserEmailUnique(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := createTestUser(t, db, "Alice", "same@example.com")
	second := createTestUser(t, db, "Bob", "bob@example.com")

	dup := *second
	dup.Email = first.Email
	err := db.CreateUser(ctx, &dup)
	assert.ErrorIs(t, err, ErrEmailTaken)

	second.Email = first.Email
	err = db.UpdateUser(ctx, second)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.DeleteUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
