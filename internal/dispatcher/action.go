package dispatcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nontawat/roombot/internal/domain"
)

type ActionKind int

const (
	ActionSelectRoom ActionKind = iota
	ActionSelectSlot
	ActionCancelBooking
)

// Action is a postback decoded into a structured variant at the boundary.
// Nothing past this point matches on payload strings.
type Action struct {
	Kind      ActionKind
	RoomID    int64
	Slot      domain.TimeSlot
	BookingID string
}

// ParsePostback decodes the channel's postback payloads: room_<id>,
// time_<start>_<end>, cancel_<bookingID>.
func ParsePostback(data string) (Action, error) {
	switch {
	case strings.HasPrefix(data, "room_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "room_"), 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("bad room postback %q", data)
		}
		return Action{Kind: ActionSelectRoom, RoomID: id}, nil

	case strings.HasPrefix(data, "time_"):
		parts := strings.Split(strings.TrimPrefix(data, "time_"), "_")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return Action{}, fmt.Errorf("bad time postback %q", data)
		}
		return Action{Kind: ActionSelectSlot, Slot: domain.TimeSlot{Start: parts[0], End: parts[1]}}, nil

	case strings.HasPrefix(data, "cancel_"):
		id := strings.TrimPrefix(data, "cancel_")
		if id == "" {
			return Action{}, fmt.Errorf("bad cancel postback %q", data)
		}
		return Action{Kind: ActionCancelBooking, BookingID: id}, nil
	}
	return Action{}, fmt.Errorf("unknown postback %q", data)
}
