package notify

import (
	"context"
	"fmt"

	"github.com/nontawat/roombot/internal/kafka"
)

// Notifier delivers booking event notices to users. The current sink is the
// worker's log; a push-message channel plugs in behind the same method.
type Notifier struct{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("notify %s: %s %s %s %s-%s (%s)\n", event.UserID, event.Type, event.RoomName, event.Date, event.StartTime, event.EndTime, event.Title)
	return nil
}
