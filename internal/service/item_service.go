package service

import (
	"context"
	"strings"
	"time"

	"sharilka/internal/database"
	"sharilka/internal/domain"
	"sharilka/internal/events"
	"sharilka/internal/metrics"
	"sharilka/internal/models"
	"sharilka/internal/schedule"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo     domain.Repository
	cache    domain.TimelineCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewItemService(repo domain.Repository, cache domain.TimelineCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:     repo,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if _, err := s.repo.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	// An item offered for a request must reference an existing request.
	if item.RequestID != 0 {
		if _, err := s.repo.GetRequest(ctx, item.RequestID); err != nil {
			return nil, err
		}
	}

	item.OwnerID = ownerID
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Patch updates only the fields present in the patch. Non-owners get a
// not-found to avoid leaking who owns what.
func (s *ItemService) Patch(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, database.ErrNotFound
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns the item with its comments. The last/next booking projection is
// attached only for the owner; bookers see the item without the schedule.
func (s *ItemService) Get(ctx context.Context, userID, itemID int64) (*models.ItemWithBookings, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	view := &models.ItemWithBookings{Item: *item, Comments: []models.Comment{}}

	comments, err := s.repo.GetCommentsByItems(ctx, []int64{itemID})
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		view.Comments = append(view.Comments, *c)
	}

	if item.OwnerID == userID {
		tl, err := s.timelineFor(ctx, itemID)
		if err != nil {
			return nil, err
		}
		view.LastBooking = tl.Last
		view.NextBooking = tl.Next
	}

	return view, nil
}

func (s *ItemService) Delete(ctx context.Context, ownerID, itemID int64) error {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != ownerID {
		return database.ErrNotFound
	}

	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateItem(ctx, itemID); err != nil {
			s.logger.Error().Err(err).Int64("item_id", itemID).Msg("timeline invalidation error")
		}
	}
	return nil
}

// ListByOwner annotates each of the owner's items with its timeline in one
// batch query instead of per-item lookups.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemWithBookings, error) {
	if _, err := s.repo.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByOwner(ctx, ownerID, from, size)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []*models.ItemWithBookings{}, nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	bookings, err := s.repo.GetItemBookingsForTimeline(ctx, ids)
	if err != nil {
		return nil, err
	}
	timelines := schedule.ClassifyByItem(bookings, s.now())

	comments, err := s.repo.GetCommentsByItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	commentsByItem := make(map[int64][]models.Comment)
	for _, c := range comments {
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], *c)
	}

	views := make([]*models.ItemWithBookings, 0, len(items))
	for _, item := range items {
		view := &models.ItemWithBookings{Item: *item, Comments: commentsByItem[item.ID]}
		if view.Comments == nil {
			view.Comments = []models.Comment{}
		}
		tl := timelines[item.ID]
		view.LastBooking = tl.Last
		view.NextBooking = tl.Next
		views = append(views, view)
	}
	return views, nil
}

// Search returns available items matching the text. Blank text yields an
// empty result without touching storage.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchItems(ctx, text, from, size)
}

// AddComment lets a booker review an item, but only after an approved booking
// of theirs has started.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	author, err := s.repo.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	finished, err := s.repo.HasFinishedBooking(ctx, authorID, itemID, s.now())
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, database.ErrCommentNotAllowed
	}

	comment := &models.Comment{
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Text:       text,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.BookingEventPayload{
			ItemID:     itemID,
			BookerID:   authorID,
			BookerName: author.Name,
			Comment:    text,
		}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("item_id", itemID).Msg("publish event error")
		}
	}

	return comment, nil
}

// timelineFor serves the projection from cache when possible and recomputes
// it from storage on a miss.
func (s *ItemService) timelineFor(ctx context.Context, itemID int64) (schedule.Timeline, error) {
	if s.cache != nil {
		tl, ok, err := s.cache.GetTimeline(ctx, itemID)
		if err != nil {
			s.logger.Error().Err(err).Int64("item_id", itemID).Msg("timeline cache read error")
		} else if ok {
			metrics.IncTimelineCache("hit")
			return *tl, nil
		}
	}
	metrics.IncTimelineCache("miss")

	bookings, err := s.repo.GetItemBookingsForTimeline(ctx, []int64{itemID})
	if err != nil {
		return schedule.Timeline{}, err
	}
	tl := schedule.Classify(bookings, s.now())

	if s.cache != nil {
		if err := s.cache.SetTimeline(ctx, itemID, tl); err != nil {
			s.logger.Error().Err(err).Int64("item_id", itemID).Msg("timeline cache write error")
		}
	}
	return tl, nil
}
