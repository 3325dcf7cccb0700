package session

import (
	"context"
	"testing"
	"time"

	"github.com/nontawat/roombot/internal/catalog"
	"github.com/nontawat/roombot/internal/domain"
	"github.com/nontawat/roombot/internal/repository"
	"github.com/nontawat/roombot/internal/service/booking"
	"github.com/stretchr/testify/assert"
)

func newTestEngine(t *testing.T) (*Engine, *repository.MemoryBookingRepository) {
	t.Helper()
	repo := repository.NewMemoryBookingRepository()
	rooms := catalog.New(nil)
	svc := booking.NewBookingService(repo, rooms, time.Minute)
	eng := NewEngine(svc, rooms)
	eng.now = func() time.Time { return time.Date(2024, 9, 25, 9, 30, 0, 0, time.UTC) }
	return eng, repo
}

func TestFullBookingFlow(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	out := eng.OnRoomSelected(ctx, "U", 1)
	assert.Equal(t, OutcomeStarted, out.Kind)
	assert.Equal(t, StepDate, out.Step)
	assert.Equal(t, "Main Conference Room", out.Room.Name)

	out = eng.OnMessage(ctx, "U", "today")
	assert.Equal(t, OutcomeAdvanced, out.Kind)
	assert.Equal(t, StepTime, out.Step)
	assert.Len(t, out.Slots, 8)

	out = eng.OnSlotSelected(ctx, "U", domain.TimeSlot{Start: "09:00", End: "10:00"})
	assert.Equal(t, OutcomeAdvanced, out.Kind)
	assert.Equal(t, StepTitle, out.Step)

	out = eng.OnMessage(ctx, "U", "Standup")
	assert.Equal(t, OutcomeAdvanced, out.Kind)
	assert.Equal(t, StepOrganizer, out.Step)

	out = eng.OnMessage(ctx, "U", "Alice")
	assert.Equal(t, OutcomeConfirmed, out.Kind)
	b := out.Booking
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "U", b.UserID)
	assert.Equal(t, int64(1), b.RoomID)
	assert.Equal(t, "2024-09-25", b.Date)
	assert.Equal(t, "09:00", b.StartTime)
	assert.Equal(t, "10:00", b.EndTime)
	assert.Equal(t, "Standup", b.Title)
	assert.Equal(t, "Alice", b.Organizer)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)

	// Session is gone after the terminal step.
	assert.False(t, eng.HasSession("U"))

	// A second user is no longer offered 09:00-10:00.
	out = eng.OnRoomSelected(ctx, "V", 1)
	assert.Equal(t, OutcomeStarted, out.Kind)
	out = eng.OnMessage(ctx, "V", "today")
	assert.Equal(t, OutcomeAdvanced, out.Kind)
	assert.Len(t, out.Slots, 7)
	assert.NotContains(t, out.Slots, domain.TimeSlot{Start: "09:00", End: "10:00"})
}

func TestDateStep_BadInputStaysPut(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	eng.OnRoomSelected(ctx, "U", 1)

	out := eng.OnMessage(ctx, "U", "whenever works")
	assert.Equal(t, OutcomeReprompt, out.Kind)
	assert.Equal(t, StepDate, out.Step)

	out = eng.OnMessage(ctx, "U", "2024-13-40")
	assert.Equal(t, OutcomeReprompt, out.Kind)
	assert.Equal(t, StepDate, out.Step)

	// Still in the date step: a valid date now advances.
	out = eng.OnMessage(ctx, "U", "25/09/2567")
	assert.Equal(t, OutcomeAdvanced, out.Kind)
	assert.Equal(t, StepTime, out.Step)
}

func TestNoSession(t *testing.T) {
	eng, _ := newTestEngine(t)

	out := eng.OnMessage(context.Background(), "U", "today")
	assert.Equal(t, OutcomeNoSession, out.Kind)

	out = eng.OnSlotSelected(context.Background(), "U", domain.TimeSlot{Start: "09:00", End: "10:00"})
	assert.Equal(t, OutcomeNoSession, out.Kind)
}

func TestStaleSlotSelectionRevalidated(t *testing.T) {
	eng, repo := newTestEngine(t)
	ctx := context.Background()

	eng.OnRoomSelected(ctx, "U", 1)
	out := eng.OnMessage(ctx, "U", "today")
	assert.Equal(t, OutcomeAdvanced, out.Kind)

	// Someone books 10:00-11:00 between display and the user's pick.
	assert.NoError(t, repo.Create(ctx, &domain.Booking{
		ID: "rival", UserID: "V", RoomID: 1,
		Title: "t", Organizer: "o",
		Date: "2024-09-25", StartTime: "10:00", EndTime: "11:00",
	}))

	out = eng.OnSlotSelected(ctx, "U", domain.TimeSlot{Start: "10:00", End: "11:00"})
	assert.Equal(t, OutcomeReprompt, out.Kind)
	assert.Equal(t, StepTime, out.Step)
	assert.NotContains(t, out.Slots, domain.TimeSlot{Start: "10:00", End: "11:00"})

	// A tampered payload off the grid is rejected the same way.
	out = eng.OnSlotSelected(ctx, "U", domain.TimeSlot{Start: "10:30", End: "11:30"})
	assert.Equal(t, OutcomeReprompt, out.Kind)
	assert.Equal(t, StepTime, out.Step)
}

func TestConflictAtFinalize(t *testing.T) {
	eng, repo := newTestEngine(t)
	ctx := context.Background()

	eng.OnRoomSelected(ctx, "U", 1)
	eng.OnMessage(ctx, "U", "today")
	eng.OnSlotSelected(ctx, "U", domain.TimeSlot{Start: "09:00", End: "10:00"})
	eng.OnMessage(ctx, "U", "Standup")

	// The slot gets taken during the user's think-time on the organizer step.
	assert.NoError(t, repo.Create(ctx, &domain.Booking{
		ID: "rival", UserID: "V", RoomID: 1,
		Title: "t", Organizer: "o",
		Date: "2024-09-25", StartTime: "09:00", EndTime: "10:00",
	}))

	out := eng.OnMessage(ctx, "U", "Alice")
	assert.Equal(t, OutcomeConflict, out.Kind)
	assert.Equal(t, "09:00", out.Booking.StartTime)
	assert.False(t, eng.HasSession("U"))

	// Only the rival's booking exists.
	bookings, err := repo.ListConfirmedByRoomAndDate(ctx, 1, "2024-09-25")
	assert.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.Equal(t, "rival", bookings[0].ID)
}

func TestNoSlotsOnFullyBookedDate(t *testing.T) {
	eng, repo := newTestEngine(t)
	ctx := context.Background()

	starts := []string{"08:00", "09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}
	for _, start := range starts {
		assert.NoError(t, repo.Create(ctx, &domain.Booking{
			ID: start, UserID: "V", RoomID: 1,
			Title: "t", Organizer: "o",
			Date: "2024-09-25", StartTime: start, EndTime: addHour(start),
		}))
	}

	eng.OnRoomSelected(ctx, "U", 1)
	out := eng.OnMessage(ctx, "U", "today")
	assert.Equal(t, OutcomeNoSlots, out.Kind)
	assert.Equal(t, StepDate, out.Step)

	// Session survives in the date step; tomorrow is wide open.
	out = eng.OnMessage(ctx, "U", "tomorrow")
	assert.Equal(t, OutcomeAdvanced, out.Kind)
	assert.Len(t, out.Slots, 8)
}

func TestEmptyTitleAndOrganizerReprompt(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	eng.OnRoomSelected(ctx, "U", 1)
	eng.OnMessage(ctx, "U", "today")
	eng.OnSlotSelected(ctx, "U", domain.TimeSlot{Start: "09:00", End: "10:00"})

	out := eng.OnMessage(ctx, "U", "   ")
	assert.Equal(t, OutcomeReprompt, out.Kind)
	assert.Equal(t, StepTitle, out.Step)

	eng.OnMessage(ctx, "U", "Standup")
	out = eng.OnMessage(ctx, "U", "")
	assert.Equal(t, OutcomeReprompt, out.Kind)
	assert.Equal(t, StepOrganizer, out.Step)
}

func TestTextDuringTimeStepRepromptsSlots(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	eng.OnRoomSelected(ctx, "U", 1)
	eng.OnMessage(ctx, "U", "today")

	out := eng.OnMessage(ctx, "U", "nine o'clock please")
	assert.Equal(t, OutcomeReprompt, out.Kind)
	assert.Equal(t, StepTime, out.Step)
	assert.Len(t, out.Slots, 8)
}

func TestRoomReselectionRestartsFlow(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	eng.OnRoomSelected(ctx, "U", 1)
	eng.OnMessage(ctx, "U", "today")

	out := eng.OnRoomSelected(ctx, "U", 2)
	assert.Equal(t, OutcomeStarted, out.Kind)
	assert.Equal(t, "Small Meeting Room", out.Room.Name)

	// Back at the date step for the new room.
	out = eng.OnMessage(ctx, "U", "today")
	assert.Equal(t, OutcomeAdvanced, out.Kind)
	assert.Equal(t, StepTime, out.Step)
}

func TestUnknownRoomSelection(t *testing.T) {
	eng, _ := newTestEngine(t)

	out := eng.OnRoomSelected(context.Background(), "U", 42)
	assert.Equal(t, OutcomeNoSession, out.Kind)
	assert.False(t, eng.HasSession("U"))
}

func TestReset(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	eng.OnRoomSelected(ctx, "U", 1)
	assert.True(t, eng.HasSession("U"))

	eng.Reset(ctx, "U")
	assert.False(t, eng.HasSession("U"))

	// Resetting a user without a session is harmless.
	eng.Reset(ctx, "U")
}

func TestExpireIdle(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	eng.OnRoomSelected(ctx, "U", 1)

	// Nothing expires while the session is fresh.
	assert.Equal(t, 0, eng.ExpireIdle(ctx, 15*time.Minute))
	assert.True(t, eng.HasSession("U"))

	eng.now = func() time.Time { return time.Date(2024, 9, 25, 10, 0, 0, 0, time.UTC) }
	assert.Equal(t, 1, eng.ExpireIdle(ctx, 15*time.Minute))
	assert.False(t, eng.HasSession("U"))
}

func addHour(start string) string {
	ends := map[string]string{
		"08:00": "09:00", "09:00": "10:00", "10:00": "11:00", "11:00": "12:00",
		"13:00": "14:00", "14:00": "15:00", "15:00": "16:00", "16:00": "17:00",
	}
	return ends[start]
}
