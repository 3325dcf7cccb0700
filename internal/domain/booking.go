package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking is a reservation of one room for one slot on one date.
// Date is the canonical YYYY-MM-DD form, StartTime/EndTime are zero-padded
// HH:MM, so string comparison orders them chronologically.
type Booking struct {
	ID        string
	UserID    string
	RoomID    int64
	Title     string
	Organizer string
	Date      string
	StartTime string
	EndTime   string
	Status    BookingStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
