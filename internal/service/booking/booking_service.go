package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nontawat/roombot/internal/catalog"
	"github.com/nontawat/roombot/internal/domain"
	"github.com/nontawat/roombot/internal/kafka"
	"github.com/nontawat/roombot/internal/repository"
	"github.com/nontawat/roombot/internal/schedule"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID string) (*domain.Booking, error)
	AvailableSlots(ctx context.Context, roomID int64, date string) ([]domain.TimeSlot, error)
	HoldSlot(ctx context.Context, roomID int64, date, start string) (bool, error)
	ReleaseSlot(ctx context.Context, roomID int64, date, start string) error
	DaySchedule(ctx context.Context, date string) ([]RoomDaySummary, error)
	MyBookings(ctx context.Context, userID string) ([]domain.Booking, error)
}

type Cache interface {
	AcquireSlotHold(ctx context.Context, roomID int64, date, start string, ttl time.Duration) (bool, error)
	ReleaseSlotHold(ctx context.Context, roomID int64, date, start string) error
	GetDaySchedule(ctx context.Context, date string, out interface{}) (bool, error)
	SetDaySchedule(ctx context.Context, date string, payload interface{}) error
	InvalidateDaySchedule(ctx context.Context, date string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	UserID    string `json:"user_id"`
	RoomID    int64  `json:"room_id"`
	Title     string `json:"title"`
	Organizer string `json:"organizer"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// RoomDaySummary is one row of the status view: a room plus its confirmed
// bookings for the day. An empty Bookings slice means free all day.
type RoomDaySummary struct {
	Room     domain.Room      `json:"room"`
	Bookings []domain.Booking `json:"bookings"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	rooms              *catalog.Catalog
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	rooms *catalog.Catalog,
	holdTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		rooms:    rooms,
		holdTTL:  holdTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.UserID == "" {
		return nil, errors.New("user id is required")
	}
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	if input.Organizer == "" {
		return nil, errors.New("organizer is required")
	}
	if !schedule.IsGridSlot(input.StartTime, input.EndTime) {
		return nil, errors.New("time range is not a bookable slot")
	}
	room, err := s.rooms.ByID(input.RoomID)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		RoomID:    input.RoomID,
		Title:     input.Title,
		Organizer: input.Organizer,
		Date:      input.Date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
	}

	// The repository owns the authoritative overlap check. Whatever the
	// availability view said earlier, only this call decides.
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.ReleaseSlotHold(ctx, booking.RoomID, booking.Date, booking.StartTime)
		_ = s.cache.InvalidateDaySchedule(ctx, booking.Date)
	}
	if err := s.publish(ctx, "booking_confirmed", booking, room.Name); err != nil {
		log.Printf("failed to publish booking_confirmed for %s: %v", booking.ID, err)
	}
	return booking, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID string) (*domain.Booking, error) {
	cancelled, err := s.bookings.Cancel(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	roomName := ""
	if room, err := s.rooms.ByID(cancelled.RoomID); err == nil {
		roomName = room.Name
	}
	if s.cache != nil {
		_ = s.cache.InvalidateDaySchedule(ctx, cancelled.Date)
	}
	if err := s.publish(ctx, "booking_cancelled", cancelled, roomName); err != nil {
		log.Printf("failed to publish booking_cancelled for %s: %v", cancelled.ID, err)
	}
	return cancelled, nil
}

func (s *BookingService) MyBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListConfirmedByUser(ctx, userID)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, roomName string) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:      eventType,
		BookingID: booking.ID,
		UserID:    booking.UserID,
		RoomID:    booking.RoomID,
		RoomName:  roomName,
		Title:     booking.Title,
		Organizer: booking.Organizer,
		Date:      booking.Date,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		Status:    string(booking.Status),
		At:        time.Now(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
