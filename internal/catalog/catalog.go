package catalog

import (
	"github.com/nontawat/roombot/internal/domain"
)

// defaultRooms mirrors the office's three meeting rooms. Deployments with a
// different floor plan override the list in config.
var defaultRooms = []domain.Room{
	{ID: 1, Name: "Main Conference Room", Capacity: 20},
	{ID: 2, Name: "Small Meeting Room", Capacity: 8},
	{ID: 3, Name: "Medium Meeting Room", Capacity: 12},
}

// Catalog is the static set of bookable rooms. Seeded once at startup,
// never mutated afterwards, so it is safe for concurrent reads.
type Catalog struct {
	rooms []domain.Room
	byID  map[int64]domain.Room
}

func New(rooms []domain.Room) *Catalog {
	if len(rooms) == 0 {
		rooms = defaultRooms
	}
	byID := make(map[int64]domain.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	return &Catalog{rooms: rooms, byID: byID}
}

func (c *Catalog) List() []domain.Room {
	out := make([]domain.Room, len(c.rooms))
	copy(out, c.rooms)
	return out
}

func (c *Catalog) ByID(id int64) (*domain.Room, error) {
	r, ok := c.byID[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return &r, nil
}
