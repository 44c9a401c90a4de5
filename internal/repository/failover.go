package repository

import (
	"context"
	"sync/atomic"
	"time"

	"sharilka/internal/domain"
	"sharilka/internal/schedule"

	"github.com/rs/zerolog"
)

// FailoverTimelineCache serves from the primary cache until it errors, then
// switches to the fallback and probes the primary again after a minute.
type FailoverTimelineCache struct {
	primary   domain.TimelineCache
	fallback  domain.TimelineCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverTimelineCache(primary, fallback domain.TimelineCache, logger *zerolog.Logger) *FailoverTimelineCache {
	return &FailoverTimelineCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverTimelineCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary timeline cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck = time.Now()
}

func (r *FailoverTimelineCache) GetTimeline(ctx context.Context, itemID int64) (*schedule.Timeline, bool, error) {
	if !r.isDown.Load() {
		tl, ok, err := r.primary.GetTimeline(ctx, itemID)
		if err == nil {
			return tl, ok, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		tl, ok, err := r.primary.GetTimeline(ctx, itemID)
		if err == nil {
			r.isDown.Store(false)
			return tl, ok, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetTimeline(ctx, itemID)
}

func (r *FailoverTimelineCache) SetTimeline(ctx context.Context, itemID int64, tl schedule.Timeline) error {
	if !r.isDown.Load() {
		err := r.primary.SetTimeline(ctx, itemID, tl)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetTimeline(ctx, itemID, tl)
}

func (r *FailoverTimelineCache) InvalidateItem(ctx context.Context, itemID int64) error {
	if !r.isDown.Load() {
		err := r.primary.InvalidateItem(ctx, itemID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.InvalidateItem(ctx, itemID)
}

func (r *FailoverTimelineCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
