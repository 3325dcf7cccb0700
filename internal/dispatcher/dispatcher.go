package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nontawat/roombot/internal/catalog"
	"github.com/nontawat/roombot/internal/domain"
	"github.com/nontawat/roombot/internal/schedule"
	"github.com/nontawat/roombot/internal/service/booking"
	"github.com/nontawat/roombot/internal/service/session"
)

// Option is a tap suggestion attached to a reply. Text options send a plain
// message back, Postback options send a structured payload.
type Option struct {
	Label    string `json:"label"`
	Text     string `json:"text,omitempty"`
	Postback string `json:"postback,omitempty"`
}

// Reply is the outbound message for one inbound event.
type Reply struct {
	Text    string   `json:"text"`
	Options []Option `json:"options,omitempty"`
}

// Dispatcher routes inbound text and postback actions to top-level commands
// or to the user's booking session.
type Dispatcher struct {
	sessions *session.Engine
	bookings booking.BookingUseCase
	rooms    *catalog.Catalog
	now      func() time.Time
}

func New(sessions *session.Engine, bookings booking.BookingUseCase, rooms *catalog.Catalog) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		bookings: bookings,
		rooms:    rooms,
		now:      time.Now,
	}
}

// HandleText routes a free-text message. Known commands win over the booking
// flow; anything else goes to the active session, and without a session the
// fallback is the help view.
func (d *Dispatcher) HandleText(ctx context.Context, userID, text string) Reply {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "book", "booking", "จอง":
		return d.roomSelection()
	case "status", "สถานะ":
		return d.status(ctx)
	case "mybooking", "my bookings", "การจองของฉัน":
		return d.myBookings(ctx, userID)
	case "help", "ช่วยเหลือ":
		d.sessions.Reset(ctx, userID)
		return helpReply()
	}

	if !d.sessions.HasSession(userID) {
		return helpReply()
	}
	return d.renderOutcome(d.sessions.OnMessage(ctx, userID, text))
}

// HandleAction routes a decoded postback.
func (d *Dispatcher) HandleAction(ctx context.Context, userID string, action Action) Reply {
	switch action.Kind {
	case ActionSelectRoom:
		return d.renderOutcome(d.sessions.OnRoomSelected(ctx, userID, action.RoomID))
	case ActionSelectSlot:
		return d.renderOutcome(d.sessions.OnSlotSelected(ctx, userID, action.Slot))
	case ActionCancelBooking:
		return d.cancel(ctx, userID, action.BookingID)
	}
	return helpReply()
}

func (d *Dispatcher) roomSelection() Reply {
	opts := make([]Option, 0, len(d.rooms.List()))
	for _, room := range d.rooms.List() {
		opts = append(opts, Option{
			Label:    fmt.Sprintf("%s (%d)", room.Name, room.Capacity),
			Postback: fmt.Sprintf("room_%d", room.ID),
		})
	}
	return Reply{Text: "Pick a meeting room:", Options: opts}
}

func (d *Dispatcher) status(ctx context.Context) Reply {
	today := schedule.Today(d.now())
	summaries, err := d.bookings.DaySchedule(ctx, today)
	if err != nil {
		log.Printf("day schedule for %s: %v", today, err)
		return Reply{Text: "Could not load today's schedule, try again later."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Room status for %s:\n", today)
	for _, s := range summaries {
		fmt.Fprintf(&b, "\n%s (%d people)\n", s.Room.Name, s.Room.Capacity)
		if len(s.Bookings) == 0 {
			b.WriteString("  free all day\n")
			continue
		}
		for _, bk := range s.Bookings {
			fmt.Fprintf(&b, "  %s-%s %s\n", bk.StartTime, bk.EndTime, bk.Title)
		}
	}
	return Reply{Text: b.String()}
}

func (d *Dispatcher) myBookings(ctx context.Context, userID string) Reply {
	bookings, err := d.bookings.MyBookings(ctx, userID)
	if err != nil {
		log.Printf("my bookings for %s: %v", userID, err)
		return Reply{Text: "Could not load your bookings, try again later."}
	}
	if len(bookings) == 0 {
		return Reply{Text: "You have no room bookings yet."}
	}

	var b strings.Builder
	b.WriteString("Your bookings:\n")
	opts := make([]Option, 0, len(bookings))
	for _, bk := range bookings {
		roomName := fmt.Sprintf("room %d", bk.RoomID)
		if room, err := d.rooms.ByID(bk.RoomID); err == nil {
			roomName = room.Name
		}
		fmt.Fprintf(&b, "\n%s\n%s %s %s-%s\n%s\n", bk.ID, roomName, bk.Date, bk.StartTime, bk.EndTime, bk.Title)
		opts = append(opts, Option{
			Label:    fmt.Sprintf("Cancel %s %s", bk.Date, bk.StartTime),
			Postback: fmt.Sprintf("cancel_%s", bk.ID),
		})
	}
	return Reply{Text: b.String(), Options: opts}
}

func (d *Dispatcher) cancel(ctx context.Context, userID, bookingID string) Reply {
	cancelled, err := d.bookings.CancelBooking(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return Reply{Text: "Booking not found, or it is not yours to cancel."}
		}
		log.Printf("cancel booking %s for %s: %v", bookingID, userID, err)
		return Reply{Text: "Could not cancel the booking, try again later."}
	}
	return Reply{Text: fmt.Sprintf("Booking cancelled.\nID: %s", cancelled.ID)}
}

func (d *Dispatcher) renderOutcome(o session.Outcome) Reply {
	switch o.Kind {
	case session.OutcomeStarted:
		return Reply{
			Text: fmt.Sprintf("You picked %s.\nWhat date? (today, tomorrow, 25/09/2567 or 2024-09-25)", o.Room.Name),
			Options: []Option{
				{Label: "Today", Text: "today"},
				{Label: "Tomorrow", Text: "tomorrow"},
			},
		}
	case session.OutcomeReprompt:
		return d.renderReprompt(o)
	case session.OutcomeAdvanced:
		return d.renderAdvanced(o)
	case session.OutcomeNoSlots:
		return Reply{Text: "No free slots on that date. Pick another date."}
	case session.OutcomeConfirmed:
		return renderConfirmation(o.Booking, d.rooms)
	case session.OutcomeConflict:
		if o.Reason != "" {
			return Reply{Text: "Sorry, the booking could not be saved. Send \"book\" to try again."}
		}
		return Reply{Text: fmt.Sprintf("Sorry, %s-%s on %s was just booked by someone else. Send \"book\" to pick another slot.", o.Booking.StartTime, o.Booking.EndTime, o.Booking.Date)}
	case session.OutcomeNoSession:
		return helpReply()
	}
	return helpReply()
}

func (d *Dispatcher) renderReprompt(o session.Outcome) Reply {
	switch o.Step {
	case session.StepDate:
		return Reply{
			Text: "That date didn't parse. Try: today, tomorrow, 25/09/2567 or 2024-09-25.",
			Options: []Option{
				{Label: "Today", Text: "today"},
				{Label: "Tomorrow", Text: "tomorrow"},
			},
		}
	case session.StepTime:
		return Reply{Text: o.Reason + ". Pick a slot:", Options: slotOptions(o.Slots)}
	case session.StepTitle:
		return Reply{Text: "What is the meeting about? Send a short title."}
	case session.StepOrganizer:
		return Reply{Text: "Who is organizing? Send a name."}
	}
	return helpReply()
}

func (d *Dispatcher) renderAdvanced(o session.Outcome) Reply {
	switch o.Step {
	case session.StepTime:
		return Reply{Text: "Pick a time slot:", Options: slotOptions(o.Slots)}
	case session.StepTitle:
		return Reply{Text: "What is the meeting title?"}
	case session.StepOrganizer:
		return Reply{Text: "Who is the organizer?"}
	}
	return helpReply()
}

func renderConfirmation(b *domain.Booking, rooms *catalog.Catalog) Reply {
	roomName := fmt.Sprintf("room %d", b.RoomID)
	if room, err := rooms.ByID(b.RoomID); err == nil {
		roomName = room.Name
	}
	text := fmt.Sprintf("Booked!\nID: %s\nRoom: %s\nTitle: %s\nOrganizer: %s\nDate: %s\nTime: %s-%s",
		b.ID, roomName, b.Title, b.Organizer, b.Date, b.StartTime, b.EndTime)
	return Reply{
		Text:    text,
		Options: []Option{{Label: "Cancel this booking", Postback: fmt.Sprintf("cancel_%s", b.ID)}},
	}
}

func helpReply() Reply {
	return Reply{
		Text: "Meeting room bot commands:\n" +
			"- \"book\" start a booking\n" +
			"- \"status\" today's room status\n" +
			"- \"mybooking\" your bookings\n" +
			"- \"help\" this message",
		Options: []Option{
			{Label: "Book a room", Text: "book"},
			{Label: "Status", Text: "status"},
		},
	}
}

func slotOptions(slots []domain.TimeSlot) []Option {
	// The channel caps quick replies; the original bot showed at most 10.
	if len(slots) > 10 {
		slots = slots[:10]
	}
	opts := make([]Option, 0, len(slots))
	for _, s := range slots {
		opts = append(opts, Option{
			Label:    fmt.Sprintf("%s-%s", s.Start, s.End),
			Postback: fmt.Sprintf("time_%s_%s", s.Start, s.End),
		})
	}
	return opts
}
