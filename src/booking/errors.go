package booking

import "errors"

var (
	// ErrSeatsUnavailable is returned when another booking already holds one
	// or more of the requested seats. The caller should re-query
	// availability and retry with a different seat set.
	ErrSeatsUnavailable = errors.New("seats no longer available, please reselect")

	// ErrNotFound covers unknown bookings, events and seat ids.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition signals a state-machine guard violation, usually
	// a lost race between two transitions on the same booking.
	ErrInvalidTransition = errors.New("this booking can no longer be modified")

	// ErrEmptySeatSet rejects hold requests with no seats.
	ErrEmptySeatSet = errors.New("at least one seat is required")
)
