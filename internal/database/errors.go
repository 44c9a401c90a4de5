package database

import "errors"

var (
	ErrNotFound               = errors.New("record not found")
	ErrEmailTaken             = errors.New("email is already in use")
	ErrItemUnavailable        = errors.New("item is not available for booking")
	ErrSelfBooking            = errors.New("owner cannot book own item")
	ErrSlotConflict           = errors.New("interval conflicts with an approved booking")
	ErrConcurrentModification = errors.New("booking was modified concurrently")
	ErrCommentNotAllowed      = errors.New("commenting requires a finished booking")
	ErrInvalidEmail           = errors.New("email is invalid")
)
