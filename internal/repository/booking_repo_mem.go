package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nontawat/roombot/internal/domain"
)

// MemoryBookingRepository keeps bookings in process memory. It backs tests
// and single-node deployments that run without Postgres; the mutex gives the
// same create-time atomicity the PG implementation gets from its advisory lock.
type MemoryBookingRepository struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[string]*domain.Booking)}
}

func (r *MemoryBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.RoomID != booking.RoomID || b.Date != booking.Date || b.Status != domain.BookingStatusConfirmed {
			continue
		}
		if b.StartTime < booking.EndTime && b.EndTime > booking.StartTime {
			return domain.ErrSlotConflict
		}
	}

	now := time.Now()
	booking.Status = domain.BookingStatusConfirmed
	booking.CreatedAt = now
	booking.UpdatedAt = now

	stored := *booking
	r.bookings[booking.ID] = &stored
	return nil
}

func (r *MemoryBookingRepository) Cancel(ctx context.Context, bookingID, userID string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok || b.UserID != userID || b.Status != domain.BookingStatusConfirmed {
		return nil, domain.ErrBookingNotFound
	}
	b.Status = domain.BookingStatusCancelled
	b.UpdatedAt = time.Now()
	out := *b
	return &out, nil
}

func (r *MemoryBookingRepository) GetByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	out := *b
	return &out, nil
}

func (r *MemoryBookingRepository) ListConfirmedByRoomAndDate(ctx context.Context, roomID int64, date string) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if b.RoomID == roomID && b.Date == date && b.Status == domain.BookingStatusConfirmed {
			bookings = append(bookings, *b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].StartTime < bookings[j].StartTime })
	return bookings, nil
}

func (r *MemoryBookingRepository) ListConfirmedByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if b.UserID == userID && b.Status == domain.BookingStatusConfirmed {
			bookings = append(bookings, *b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date < bookings[j].Date
		}
		return bookings[i].StartTime < bookings[j].StartTime
	})
	return bookings, nil
}

var _ BookingRepository = (*MemoryBookingRepository)(nil)
