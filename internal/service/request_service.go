package service

import (
	"context"

	"sharilka/internal/domain"
	"sharilka/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{repo: repo, logger: logger}
}

func (s *RequestService) Create(ctx context.Context, requestorID int64, description string) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUser(ctx, requestorID); err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		RequestorID: requestorID,
		Description: description,
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// ListOwn returns the user's requests with the items offered for each.
func (s *RequestService) ListOwn(ctx context.Context, requestorID int64) ([]*models.ItemRequestWithItems, error) {
	if _, err := s.repo.GetUser(ctx, requestorID); err != nil {
		return nil, err
	}

	requests, err := s.repo.GetRequestsByRequestor(ctx, requestorID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

// ListOther pages through everyone else's requests, newest first.
func (s *RequestService) ListOther(ctx context.Context, requestorID int64, from, size int) ([]*models.ItemRequestWithItems, error) {
	if _, err := s.repo.GetUser(ctx, requestorID); err != nil {
		return nil, err
	}

	requests, err := s.repo.GetRequestsExcluding(ctx, requestorID, from, size)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (*models.ItemRequestWithItems, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	views, err := s.attachItems(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *RequestService) attachItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestWithItems, error) {
	views := make([]*models.ItemRequestWithItems, 0, len(requests))
	if len(requests) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}

	items, err := s.repo.GetItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	itemsByRequest := make(map[int64][]models.Item)
	for _, item := range items {
		itemsByRequest[item.RequestID] = append(itemsByRequest[item.RequestID], *item)
	}

	for _, r := range requests {
		view := &models.ItemRequestWithItems{ItemRequest: *r, Items: itemsByRequest[r.ID]}
		if view.Items == nil {
			view.Items = []models.Item{}
		}
		views = append(views, view)
	}
	return views, nil
}
