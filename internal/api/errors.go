package api

import (
	"errors"
	"net/http"

	"sharilka/internal/database"
	"sharilka/internal/schedule"
)

// statusFor maps domain errors to HTTP status codes.
//
// Ownership violations map to 404 rather than 403: a stranger probing booking
// ids must not be able to tell "does not exist" from "not yours". Lost
// optimistic-lock races are 409 so clients know to refetch and retry.
func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, database.ErrSelfBooking),
		errors.Is(err, schedule.ErrNotOwner):
		return http.StatusNotFound

	case errors.Is(err, schedule.ErrInvalidInterval),
		errors.Is(err, schedule.ErrUnknownState),
		errors.Is(err, schedule.ErrAlreadyApproved),
		errors.Is(err, schedule.ErrAlreadyRejected),
		errors.Is(err, database.ErrItemUnavailable),
		errors.Is(err, database.ErrSlotConflict),
		errors.Is(err, database.ErrCommentNotAllowed),
		errors.Is(err, database.ErrInvalidEmail):
		return http.StatusBadRequest

	case errors.Is(err, database.ErrEmailTaken),
		errors.Is(err, database.ErrConcurrentModification):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeError(w, status, message)
}
