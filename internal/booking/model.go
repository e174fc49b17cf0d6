package booking

import "errors"

var ErrNotFound = errors.New("booking not found")

// Order selects how List sorts bookings.
type Order int

const (
	// OrderNewestFirst sorts by creation time, newest first.
	OrderNewestFirst Order = iota
	// OrderByBookingDate sorts by booking date, oldest first.
	OrderByBookingDate
)
