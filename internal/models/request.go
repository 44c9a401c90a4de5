package models

import "time"

// ItemRequest is a wish for an item that does not exist yet. Items created in
// response reference the request via Item.RequestID.
type ItemRequest struct {
	ID          int64     `json:"id"`
	RequestorID int64     `json:"requestor_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItemRequestWithItems bundles a request with the items offered for it.
type ItemRequestWithItems struct {
	ItemRequest
	Items []Item `json:"items"`
}
