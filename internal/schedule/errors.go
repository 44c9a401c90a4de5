package schedule

import "errors"

var (
	ErrInvalidInterval = errors.New("booking end must be after start")
	ErrSlotConflict    = errors.New("slot conflicts with an approved booking")
	ErrNotOwner        = errors.New("actor is not the item owner")
	ErrAlreadyApproved = errors.New("booking is already approved")
	ErrAlreadyRejected = errors.New("booking is already rejected")
	ErrUnknownState    = errors.New("unknown booking filter state")
)
