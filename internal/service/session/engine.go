package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/nontawat/roombot/internal/catalog"
	"github.com/nontawat/roombot/internal/domain"
	"github.com/nontawat/roombot/internal/schedule"
	"github.com/nontawat/roombot/internal/service/booking"
)

type OutcomeKind int

const (
	// OutcomeStarted: a session was created, the user is asked for a date.
	OutcomeStarted OutcomeKind = iota
	// OutcomeReprompt: input did not fit the current step, ask again.
	OutcomeReprompt
	// OutcomeAdvanced: a field was recorded, ask for the next one.
	OutcomeAdvanced
	// OutcomeNoSlots: the chosen date has no free slots, back to the date step.
	OutcomeNoSlots
	// OutcomeConfirmed: the booking was stored.
	OutcomeConfirmed
	// OutcomeConflict: the slot was taken before finalize; session is over.
	OutcomeConflict
	// OutcomeNoSession: booking-flow input arrived with no session in progress.
	OutcomeNoSession
)

// Outcome is the engine's answer to one inbound event. Which fields are set
// depends on Kind; the transport renders it, the engine never formats text.
type Outcome struct {
	Kind    OutcomeKind
	Step    Step
	Reason  string
	Room    *domain.Room
	Slots   []domain.TimeSlot
	Booking *domain.Booking
}

// Engine drives the booking conversation: room, date, slot, title,
// organizer, then a create against the store.
type Engine struct {
	registry *Registry
	bookings booking.BookingUseCase
	rooms    *catalog.Catalog
	now      func() time.Time
}

func NewEngine(bookings booking.BookingUseCase, rooms *catalog.Catalog) *Engine {
	return &Engine{
		registry: NewRegistry(),
		bookings: bookings,
		rooms:    rooms,
		now:      time.Now,
	}
}

// HasSession reports whether free text for this user belongs to a booking flow.
func (e *Engine) HasSession(userID string) bool {
	return e.registry.Has(userID)
}

// OnRoomSelected starts a session. Picking a room while another flow is in
// progress restarts the flow with the new room.
func (e *Engine) OnRoomSelected(ctx context.Context, userID string, roomID int64) Outcome {
	lock := e.registry.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	room, err := e.rooms.ByID(roomID)
	if err != nil {
		return Outcome{Kind: OutcomeNoSession, Reason: "unknown room"}
	}

	if old := e.registry.get(userID); old != nil && old.StartTime != "" {
		_ = e.bookings.ReleaseSlot(ctx, old.RoomID, old.Date, old.StartTime)
	}

	e.registry.put(&Session{
		UserID:    userID,
		Step:      StepDate,
		RoomID:    room.ID,
		RoomName:  room.Name,
		UpdatedAt: e.now(),
	})
	return Outcome{Kind: OutcomeStarted, Step: StepDate, Room: room}
}

// OnMessage feeds free text into the active session. Input that does not fit
// the current step re-prompts for the same field; state never advances on
// bad input and never crashes on a missing session.
func (e *Engine) OnMessage(ctx context.Context, userID, text string) Outcome {
	lock := e.registry.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s := e.registry.get(userID)
	if s == nil {
		return Outcome{Kind: OutcomeNoSession}
	}
	s.UpdatedAt = e.now()

	switch s.Step {
	case StepDate:
		return e.handleDate(ctx, s, text)
	case StepTime:
		// A slot pick is a structured action; plain text here means the user
		// typed instead of tapping. Show the options again.
		return e.repromptTime(ctx, s)
	case StepTitle:
		return e.handleTitle(s, text)
	case StepOrganizer:
		return e.handleOrganizer(ctx, s, text)
	default:
		return Outcome{Kind: OutcomeNoSession}
	}
}

func (e *Engine) handleDate(ctx context.Context, s *Session, text string) Outcome {
	date, err := schedule.ParseDate(e.now(), text)
	if err != nil {
		return Outcome{Kind: OutcomeReprompt, Step: StepDate, Reason: "unrecognized date"}
	}

	slots, err := e.bookings.AvailableSlots(ctx, s.RoomID, date)
	if err != nil {
		log.Printf("list available slots for room %d on %s: %v", s.RoomID, date, err)
		return Outcome{Kind: OutcomeReprompt, Step: StepDate, Reason: "could not check availability, try again"}
	}
	if len(slots) == 0 {
		return Outcome{Kind: OutcomeNoSlots, Step: StepDate}
	}

	s.Date = date
	s.Step = StepTime
	return Outcome{Kind: OutcomeAdvanced, Step: StepTime, Slots: slots}
}

func (e *Engine) repromptTime(ctx context.Context, s *Session) Outcome {
	slots, err := e.bookings.AvailableSlots(ctx, s.RoomID, s.Date)
	if err != nil || len(slots) == 0 {
		s.Step = StepDate
		s.Date = ""
		return Outcome{Kind: OutcomeNoSlots, Step: StepDate}
	}
	return Outcome{Kind: OutcomeReprompt, Step: StepTime, Reason: "pick one of the offered slots", Slots: slots}
}

// OnSlotSelected records the time pick. The slot is re-validated against
// current availability: a postback can be stale, replayed from an old
// message after someone else booked the slot.
func (e *Engine) OnSlotSelected(ctx context.Context, userID string, slot domain.TimeSlot) Outcome {
	lock := e.registry.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s := e.registry.get(userID)
	if s == nil {
		return Outcome{Kind: OutcomeNoSession}
	}
	s.UpdatedAt = e.now()
	if s.Step != StepTime {
		return Outcome{Kind: OutcomeReprompt, Step: s.Step, Reason: "not picking a time right now"}
	}
	if !schedule.IsGridSlot(slot.Start, slot.End) {
		return e.repromptStaleSlot(ctx, s)
	}

	slots, err := e.bookings.AvailableSlots(ctx, s.RoomID, s.Date)
	if err != nil {
		log.Printf("revalidate slot for room %d on %s: %v", s.RoomID, s.Date, err)
		return e.repromptStaleSlot(ctx, s)
	}
	available := false
	for _, free := range slots {
		if free == slot {
			available = true
			break
		}
	}
	if !available {
		return e.repromptStaleSlot(ctx, s)
	}

	if held, err := e.bookings.HoldSlot(ctx, s.RoomID, s.Date, slot.Start); err != nil {
		log.Printf("hold slot for room %d on %s: %v", s.RoomID, s.Date, err)
	} else if !held {
		// Someone else is mid-flow on this slot right now.
		return e.repromptStaleSlot(ctx, s)
	}

	s.StartTime = slot.Start
	s.EndTime = slot.End
	s.Step = StepTitle
	return Outcome{Kind: OutcomeAdvanced, Step: StepTitle}
}

func (e *Engine) repromptStaleSlot(ctx context.Context, s *Session) Outcome {
	slots, err := e.bookings.AvailableSlots(ctx, s.RoomID, s.Date)
	if err != nil || len(slots) == 0 {
		s.Step = StepDate
		s.Date = ""
		return Outcome{Kind: OutcomeNoSlots, Step: StepDate}
	}
	return Outcome{Kind: OutcomeReprompt, Step: StepTime, Reason: "that slot is no longer available", Slots: slots}
}

func (e *Engine) handleTitle(s *Session, text string) Outcome {
	title := strings.TrimSpace(text)
	if title == "" {
		return Outcome{Kind: OutcomeReprompt, Step: StepTitle, Reason: "title cannot be empty"}
	}
	s.Title = title
	s.Step = StepOrganizer
	return Outcome{Kind: OutcomeAdvanced, Step: StepOrganizer}
}

func (e *Engine) handleOrganizer(ctx context.Context, s *Session, text string) Outcome {
	organizer := strings.TrimSpace(text)
	if organizer == "" {
		return Outcome{Kind: OutcomeReprompt, Step: StepOrganizer, Reason: "organizer cannot be empty"}
	}

	// Terminal step either way: the session is gone after this event.
	e.registry.remove(s.UserID)

	created, err := e.bookings.CreateBooking(ctx, booking.CreateBookingInput{
		UserID:    s.UserID,
		RoomID:    s.RoomID,
		Title:     s.Title,
		Organizer: organizer,
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	})
	if err != nil {
		_ = e.bookings.ReleaseSlot(ctx, s.RoomID, s.Date, s.StartTime)
		candidate := &domain.Booking{
			UserID:    s.UserID,
			RoomID:    s.RoomID,
			Title:     s.Title,
			Organizer: organizer,
			Date:      s.Date,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		}
		if errors.Is(err, domain.ErrSlotConflict) {
			return Outcome{Kind: OutcomeConflict, Booking: candidate}
		}
		log.Printf("create booking for %s: %v", s.UserID, err)
		return Outcome{Kind: OutcomeConflict, Booking: candidate, Reason: "could not store the booking"}
	}
	return Outcome{Kind: OutcomeConfirmed, Booking: created}
}

// Reset drops the user's session, releasing any slot hold. Used by the
// help/reset path.
func (e *Engine) Reset(ctx context.Context, userID string) {
	lock := e.registry.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if s := e.registry.get(userID); s != nil && s.StartTime != "" {
		_ = e.bookings.ReleaseSlot(ctx, s.RoomID, s.Date, s.StartTime)
	}
	e.registry.remove(userID)
}

// ExpireIdle drops sessions untouched for longer than maxIdle and releases
// their slot holds. Run periodically; abandoned flows must not pin slots.
func (e *Engine) ExpireIdle(ctx context.Context, maxIdle time.Duration) int {
	idle := e.registry.takeIdle(e.now().Add(-maxIdle))
	for _, s := range idle {
		if s.StartTime != "" {
			_ = e.bookings.ReleaseSlot(ctx, s.RoomID, s.Date, s.StartTime)
		}
	}
	return len(idle)
}
