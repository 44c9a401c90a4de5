package schedule

import (
	"time"

	"sharilka/internal/models"
)

// Timeline holds the nearest past-or-current and nearest future booking of an
// item relative to a reference instant. Either pointer may be nil.
type Timeline struct {
	Last *models.Booking
	Next *models.Booking
}

// Classify computes the last/next projection for one item.
//
// Input must be the item's bookings restricted to approved+waiting statuses,
// ordered by ascending start time. Last is the most recent booking whose start
// is at or before now; Next is the first booking whose start is strictly after
// now. When both are set, Last.Start <= now < Next.Start.
func Classify(bookings []*models.Booking, now time.Time) Timeline {
	var tl Timeline
	if len(bookings) == 0 {
		return tl
	}

	if bookings[0].Start.After(now) {
		tl.Next = bookings[0]
		return tl
	}

	tl.Last = bookings[0]
	for i := 1; i < len(bookings); i++ {
		if bookings[i].Start.After(now) {
			tl.Next = bookings[i]
			break
		}
		tl.Last = bookings[i]
	}
	return tl
}

// ClassifyByItem applies Classify to a flat multi-item booking list, grouping
// by item id and preserving the per-item start ordering of the input. The
// result is identical to calling Classify once per item.
func ClassifyByItem(bookings []*models.Booking, now time.Time) map[int64]Timeline {
	grouped := make(map[int64][]*models.Booking)
	for _, b := range bookings {
		grouped[b.ItemID] = append(grouped[b.ItemID], b)
	}

	timelines := make(map[int64]Timeline, len(grouped))
	for itemID, group := range grouped {
		timelines[itemID] = Classify(group, now)
	}
	return timelines
}
