package service

import (
	"context"
	"errors"
	"time"

	"sharilka/internal/database"
	"sharilka/internal/domain"
	"sharilka/internal/events"
	"sharilka/internal/metrics"
	"sharilka/internal/models"
	"sharilka/internal/schedule"

	"github.com/rs/zerolog"
)

const TaskExportBooking = "export_booking"

type BookingService struct {
	repo         domain.Repository
	cache        domain.TimelineCache
	eventBus     domain.EventPublisher
	exportWorker domain.SyncWorker
	logger       *zerolog.Logger
	now          func() time.Time
}

func NewBookingService(repo domain.Repository, cache domain.TimelineCache, eventBus domain.EventPublisher, exportWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:         repo,
		cache:        cache,
		eventBus:     eventBus,
		exportWorker: exportWorker,
		logger:       logger,
		now:          time.Now,
	}
}

// Create places a waiting booking for the item. The slot is checked against
// approved bookings twice: a cheap pre-check here and the authoritative check
// inside the insert transaction.
func (s *BookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	if err := schedule.ValidateInterval(start, end); err != nil {
		return nil, err
	}
	if start.Before(s.now()) {
		return nil, schedule.ErrInvalidInterval
	}

	booker, err := s.repo.GetUser(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == bookerID {
		return nil, database.ErrSelfBooking
	}
	if !item.Available {
		return nil, database.ErrItemUnavailable
	}

	approved, err := s.repo.GetApprovedBookingsInRange(ctx, itemID, start, end)
	if err != nil {
		return nil, err
	}
	if schedule.HasConflict(start, end, approved) {
		metrics.IncSlotConflict()
		return nil, database.ErrSlotConflict
	}

	booking := &models.Booking{
		ItemID:     itemID,
		ItemName:   item.Name,
		BookerID:   bookerID,
		BookerName: booker.Name,
		Start:      start.UTC(),
		End:        end.UTC(),
	}
	if err := s.repo.CreateBookingWithConflictCheck(ctx, booking); err != nil {
		if errors.Is(err, database.ErrSlotConflict) {
			metrics.IncSlotConflict()
		}
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking, item.OwnerID)
	s.invalidateTimeline(ctx, itemID)
	s.enqueueExport(ctx, booking)

	return booking, nil
}

// Decide applies the owner's approve/reject verdict. Approval re-runs the
// overlap check transactionally so two overlapping waiting bookings can never
// both end up approved.
func (s *BookingService) Decide(ctx context.Context, ownerID, bookingID int64, approve bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}

	if err := schedule.Decide(booking, ownerID, item.OwnerID, approve); err != nil {
		return nil, err
	}

	if approve {
		err = s.repo.ApproveBookingWithConflictCheck(ctx, bookingID, booking.Version)
	} else {
		err = s.repo.UpdateBookingStatusWithVersion(ctx, bookingID, booking.Version, models.StatusRejected)
	}
	if err != nil {
		switch {
		case errors.Is(err, database.ErrSlotConflict):
			metrics.IncSlotConflict()
		case errors.Is(err, database.ErrConcurrentModification):
			metrics.IncVersionConflict()
		}
		return nil, err
	}

	updated, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	eventType := events.EventBookingRejected
	if approve {
		eventType = events.EventBookingApproved
	}
	metrics.IncBookingDecision(updated.Status)
	s.publishEvent(eventType, updated, item.OwnerID)
	s.invalidateTimeline(ctx, updated.ItemID)
	s.enqueueExport(ctx, updated)

	return updated, nil
}

// Get returns the booking to its booker or the item's owner. Anyone else gets
// a not-found, not a forbidden: strangers must not learn the booking exists.
func (s *BookingService) Get(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID == userID {
		return booking, nil
	}

	item, err := s.repo.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != userID {
		return nil, database.ErrNotFound
	}

	return booking, nil
}

func (s *BookingService) ListByBooker(ctx context.Context, bookerID int64, state schedule.State, from, size int) ([]*models.Booking, error) {
	if _, err := s.repo.GetUser(ctx, bookerID); err != nil {
		return nil, err
	}

	bookings, err := s.repo.GetBookingsByBooker(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	return paginate(schedule.FilterBucket(bookings, state, s.now()), from, size), nil
}

func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, state schedule.State, from, size int) ([]*models.Booking, error) {
	if _, err := s.repo.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	bookings, err := s.repo.GetBookingsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return paginate(schedule.FilterBucket(bookings, state, s.now()), from, size), nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, ownerID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		ItemID:     booking.ItemID,
		ItemName:   booking.ItemName,
		OwnerID:    ownerID,
		BookerID:   booking.BookerID,
		BookerName: booking.BookerName,
		Status:     booking.Status,
		Start:      booking.Start,
		End:        booking.End,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) invalidateTimeline(ctx context.Context, itemID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateItem(ctx, itemID); err != nil {
		s.logger.Error().Err(err).Int64("item_id", itemID).Msg("timeline invalidation error")
	}
}

func (s *BookingService) enqueueExport(ctx context.Context, booking *models.Booking) {
	if s.exportWorker == nil {
		return
	}
	if err := s.exportWorker.EnqueueTask(ctx, TaskExportBooking, booking.ID, booking, booking.Status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("export enqueue error")
	}
}

// paginate slices with offset semantics. Out-of-range offsets yield an empty
// page rather than an error.
func paginate[T any](list []T, from, size int) []T {
	if from < 0 {
		from = 0
	}
	if from >= len(list) {
		return []T{}
	}
	end := from + size
	if size <= 0 || end > len(list) {
		end = len(list)
	}
	return list[from:end]
}
