package repository

import (
	"context"
	"sync"
	"time"

	"sharilka/internal/schedule"
)

type timelineEntry struct {
	tl        schedule.Timeline
	expiresAt time.Time
}

type rateEntry struct {
	count    int
	windowAt time.Time
}

// MemoryTimelineCache is the in-process fallback used when Redis is down.
type MemoryTimelineCache struct {
	mu        sync.RWMutex
	timelines map[int64]timelineEntry
	rates     map[string]rateEntry
	ttl       time.Duration
}

func NewMemoryTimelineCache(ttl time.Duration) *MemoryTimelineCache {
	return &MemoryTimelineCache{
		timelines: make(map[int64]timelineEntry),
		rates:     make(map[string]rateEntry),
		ttl:       ttl,
	}
}

func (m *MemoryTimelineCache) GetTimeline(_ context.Context, itemID int64) (*schedule.Timeline, bool, error) {
	m.mu.RLock()
	entry, ok := m.timelines[itemID]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	tl := entry.tl
	return &tl, true, nil
}

func (m *MemoryTimelineCache) SetTimeline(_ context.Context, itemID int64, tl schedule.Timeline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timelines[itemID] = timelineEntry{tl: tl, expiresAt: time.Now().Add(m.ttl)}
	return nil
}

func (m *MemoryTimelineCache) InvalidateItem(_ context.Context, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.timelines, itemID)
	return nil
}

func (m *MemoryTimelineCache) CheckRateLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	entry, ok := m.rates[key]
	if !ok || now.After(entry.windowAt) {
		m.rates[key] = rateEntry{count: 1, windowAt: now.Add(window)}
		return limit >= 1, nil
	}

	entry.count++
	m.rates[key] = entry
	return entry.count <= limit, nil
}
