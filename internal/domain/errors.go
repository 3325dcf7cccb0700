package domain

import "errors"

var (
	// ErrSlotConflict means the requested range overlaps a confirmed booking
	// on the same room and date.
	ErrSlotConflict = errors.New("slot conflicts with an existing booking")

	// ErrBookingNotFound covers both a missing booking and a booking owned
	// by another user, so a cancel request leaks nothing about foreign bookings.
	ErrBookingNotFound = errors.New("booking not found or not yours")

	// ErrNoSession means a booking-flow message arrived for a user with no
	// active session.
	ErrNoSession = errors.New("no active booking session")

	// ErrRoomNotFound means the room id is not in the catalog.
	ErrRoomNotFound = errors.New("room not found")

	// ErrBadDate means the date text matched none of the accepted forms or
	// names an impossible calendar date.
	ErrBadDate = errors.New("unrecognized date")
)
