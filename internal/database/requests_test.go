package database

import (
	"context"
	"testing"
	"time"

	"sharilka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	requestor := createTestUser(t, db, "Requestor", "req@example.com")
	other := createTestUser(t, db, "Other", "other@example.com")

	r := &models.ItemRequest{RequestorID: requestor.ID, Description: "need a drill"}
	require.NoError(t, db.CreateRequest(ctx, r))
	assert.NotZero(t, r.ID)

	time.Sleep(5 * time.Millisecond)
	r2 := &models.ItemRequest{RequestorID: requestor.ID, Description: "need a saw"}
	require.NoError(t, db.CreateRequest(ctx, r2))

	foreign := &models.ItemRequest{RequestorID: other.ID, Description: "need a tent"}
	require.NoError(t, db.CreateRequest(ctx, foreign))

	got, err := db.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "need a drill", got.Description)

	_, err = db.GetRequest(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	own, err := db.GetRequestsByRequestor(ctx, requestor.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	// Newest first.
	assert.Equal(t, r2.ID, own[0].ID)

	others, err := db.GetRequestsExcluding(ctx, requestor.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, foreign.ID, others[0].ID)
}
