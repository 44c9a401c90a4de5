package domain

import (
	"context"
	"time"

	"sharilka/internal/models"
	"sharilka/internal/schedule"
)

type Repository interface {
	// Bookings
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBookingWithConflictCheck(ctx context.Context, booking *models.Booking) error
	ApproveBookingWithConflictCheck(ctx context.Context, id, fromVersion int64) error
	UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error
	GetBookingsByBooker(ctx context.Context, bookerID int64) ([]*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error)
	GetApprovedBookingsInRange(ctx context.Context, itemID int64, start, end time.Time) ([]*models.Booking, error)
	GetItemBookingsForTimeline(ctx context.Context, itemIDs []int64) ([]*models.Booking, error)
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)

	// Items
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	SearchItems(ctx context.Context, text string, from, size int) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)

	// Users
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error

	// Comments
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)

	// Item requests
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetRequestsExcluding(ctx context.Context, requestorID int64, from, size int) ([]*models.ItemRequest, error)
}

// TimelineCache stores computed last/next projections keyed by item id.
// Writes to an item's bookings must invalidate its entry.
type TimelineCache interface {
	GetTimeline(ctx context.Context, itemID int64) (*schedule.Timeline, bool, error)
	SetTimeline(ctx context.Context, itemID int64, tl schedule.Timeline) error
	InvalidateItem(ctx context.Context, itemID int64) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker accepts export tasks without blocking the request path.
type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}

type BookingService interface {
	Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error)
	Decide(ctx context.Context, ownerID, bookingID int64, approve bool) (*models.Booking, error)
	Get(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	ListByBooker(ctx context.Context, bookerID int64, state schedule.State, from, size int) ([]*models.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state schedule.State, from, size int) ([]*models.Booking, error)
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error)
	Patch(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	Get(ctx context.Context, userID, itemID int64) (*models.ItemWithBookings, error)
	Delete(ctx context.Context, ownerID, itemID int64) error
	ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemWithBookings, error)
	Search(ctx context.Context, text string, from, size int) ([]*models.Item, error)
	AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error)
}

type UserService interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Patch(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type RequestService interface {
	Create(ctx context.Context, requestorID int64, description string) (*models.ItemRequest, error)
	ListOwn(ctx context.Context, requestorID int64) ([]*models.ItemRequestWithItems, error)
	ListOther(ctx context.Context, requestorID int64, from, size int) ([]*models.ItemRequestWithItems, error)
	Get(ctx context.Context, userID, requestID int64) (*models.ItemRequestWithItems, error)
}
