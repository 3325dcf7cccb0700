package booking

import (
	"context"

	"github.com/nontawat/roombot/internal/domain"
	"github.com/nontawat/roombot/internal/schedule"
)

// AvailableSlots returns the grid slots that overlap no confirmed booking
// for the room on the date, in chronological order. An empty result means
// the day is fully booked; callers report that, it is not an error.
func (s *BookingService) AvailableSlots(ctx context.Context, roomID int64, date string) ([]domain.TimeSlot, error) {
	if _, err := s.rooms.ByID(roomID); err != nil {
		return nil, err
	}
	booked, err := s.bookings.ListConfirmedByRoomAndDate(ctx, roomID, date)
	if err != nil {
		return nil, err
	}

	free := make([]domain.TimeSlot, 0, len(schedule.SlotsForDay()))
	for _, slot := range schedule.SlotsForDay() {
		occupied := false
		for _, b := range booked {
			if slot.OverlapsRange(b.StartTime, b.EndTime) {
				occupied = true
				break
			}
		}
		if !occupied {
			free = append(free, slot)
		}
	}
	return free, nil
}

// HoldSlot takes an advisory hold on a slot while the user finishes the
// remaining form steps. Without a cache the hold is a no-op success; the
// repository still rejects overlaps at finalize.
func (s *BookingService) HoldSlot(ctx context.Context, roomID int64, date, start string) (bool, error) {
	if s.cache == nil {
		return true, nil
	}
	return s.cache.AcquireSlotHold(ctx, roomID, date, start, s.holdTTL)
}

func (s *BookingService) ReleaseSlot(ctx context.Context, roomID int64, date, start string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.ReleaseSlotHold(ctx, roomID, date, start)
}

// DaySchedule builds the per-room status view for one date. The result is
// cached briefly; create and cancel invalidate it.
func (s *BookingService) DaySchedule(ctx context.Context, date string) ([]RoomDaySummary, error) {
	if s.cache != nil {
		var cached []RoomDaySummary
		if ok, err := s.cache.GetDaySchedule(ctx, date, &cached); err == nil && ok {
			return cached, nil
		}
	}

	summaries := make([]RoomDaySummary, 0, len(s.rooms.List()))
	for _, room := range s.rooms.List() {
		bookings, err := s.bookings.ListConfirmedByRoomAndDate(ctx, room.ID, date)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, RoomDaySummary{Room: room, Bookings: bookings})
	}

	if s.cache != nil {
		_ = s.cache.SetDaySchedule(ctx, date, summaries)
	}
	return summaries, nil
}
