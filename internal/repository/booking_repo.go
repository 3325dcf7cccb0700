package repository

import (
	"context"

	"github.com/nontawat/roombot/internal/domain"
)

// BookingRepository is the persistence contract of the booking engine.
// Create must perform the overlap check and the insert as one critical
// section per (room, date): of two concurrent creates for overlapping
// ranges, at most one may succeed.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Cancel(ctx context.Context, bookingID, userID string) (*domain.Booking, error)
	GetByID(ctx context.Context, bookingID string) (*domain.Booking, error)
	ListConfirmedByRoomAndDate(ctx context.Context, roomID int64, date string) ([]domain.Booking, error)
	ListConfirmedByUser(ctx context.Context, userID string) ([]domain.Booking, error)
}
