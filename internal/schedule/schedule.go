package schedule

import (
	"github.com/nontawat/roombot/internal/domain"
)

// The bookable grid is the same for every room on every day: eight one-hour
// slots with a lunch gap between 12:00 and 13:00.
var daySlots = []domain.TimeSlot{
	{Start: "08:00", End: "09:00"},
	{Start: "09:00", End: "10:00"},
	{Start: "10:00", End: "11:00"},
	{Start: "11:00", End: "12:00"},
	{Start: "13:00", End: "14:00"},
	{Start: "14:00", End: "15:00"},
	{Start: "15:00", End: "16:00"},
	{Start: "16:00", End: "17:00"},
}

// SlotsForDay returns the daily grid in chronological order. The returned
// slice is a copy, callers may filter it in place.
func SlotsForDay() []domain.TimeSlot {
	slots := make([]domain.TimeSlot, len(daySlots))
	copy(slots, daySlots)
	return slots
}

// IsGridSlot reports whether the given range is exactly one of the grid slots.
// Slot picks arrive from the transport as raw strings and must be checked
// against the grid before anything else trusts them.
func IsGridSlot(start, end string) bool {
	for _, s := range daySlots {
		if s.Start == start && s.End == end {
			return true
		}
	}
	return false
}
