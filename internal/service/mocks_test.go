package service

import (
	"context"
	"time"

	"sharilka/internal/models"
	"sharilka/internal/schedule"

	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) CreateBookingWithConflictCheck(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *mockRepo) ApproveBookingWithConflictCheck(ctx context.Context, id, fromVersion int64) error {
	args := m.Called(ctx, id, fromVersion)
	return args.Error(0)
}

func (m *mockRepo) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	args := m.Called(ctx, id, fromVersion, status)
	return args.Error(0)
}

func (m *mockRepo) GetBookingsByBooker(ctx context.Context, bookerID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, bookerID)
	if b := args.Get(0); b != nil {
		return b.([]*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, ownerID)
	if b := args.Get(0); b != nil {
		return b.([]*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetApprovedBookingsInRange(ctx context.Context, itemID int64, start, end time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, itemID, start, end)
	if b := args.Get(0); b != nil {
		return b.([]*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetItemBookingsForTimeline(ctx context.Context, itemIDs []int64) ([]*models.Booking, error) {
	args := m.Called(ctx, itemIDs)
	if b := args.Get(0); b != nil {
		return b.([]*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, bookerID, itemID, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if i := args.Get(0); i != nil {
		return i.(*models.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetItemsByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.Item, error) {
	args := m.Called(ctx, ownerID, from, size)
	if i := args.Get(0); i != nil {
		return i.([]*models.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) CreateItem(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockRepo) UpdateItem(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockRepo) DeleteItem(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepo) SearchItems(ctx context.Context, text string, from, size int) ([]*models.Item, error) {
	args := m.Called(ctx, text, from, size)
	if i := args.Get(0); i != nil {
		return i.([]*models.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	args := m.Called(ctx, requestIDs)
	if i := args.Get(0); i != nil {
		return i.([]*models.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockRepo) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockRepo) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *mockRepo) GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	args := m.Called(ctx, itemIDs)
	if c := args.Get(0); c != nil {
		return c.([]*models.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *mockRepo) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.ItemRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	args := m.Called(ctx, requestorID)
	if r := args.Get(0); r != nil {
		return r.([]*models.ItemRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetRequestsExcluding(ctx context.Context, requestorID int64, from, size int) ([]*models.ItemRequest, error) {
	args := m.Called(ctx, requestorID, from, size)
	if r := args.Get(0); r != nil {
		return r.([]*models.ItemRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetTimeline(ctx context.Context, itemID int64) (*schedule.Timeline, bool, error) {
	args := m.Called(ctx, itemID)
	if tl := args.Get(0); tl != nil {
		return tl.(*schedule.Timeline), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *mockCache) SetTimeline(ctx context.Context, itemID int64, tl schedule.Timeline) error {
	args := m.Called(ctx, itemID, tl)
	return args.Error(0)
}

func (m *mockCache) InvalidateItem(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *mockCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

type mockBus struct {
	mock.Mock
}

func (m *mockBus) PublishJSON(eventType string, payload interface{}) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}

type mockWorker struct {
	mock.Mock
}

func (m *mockWorker) EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error {
	args := m.Called(ctx, taskType, bookingID, booking, status)
	return args.Error(0)
}
