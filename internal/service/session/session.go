package session

import (
	"sync"
	"time"
)

type Step string

const (
	StepDate      Step = "awaiting_date"
	StepTime      Step = "awaiting_time"
	StepTitle     Step = "awaiting_title"
	StepOrganizer Step = "awaiting_organizer"
)

// Session is the partially filled booking form of one user. Ephemeral by
// design: it lives only in process memory and a restart drops it.
type Session struct {
	UserID    string
	Step      Step
	RoomID    int64
	RoomName  string
	Date      string
	StartTime string
	EndTime   string
	Title     string
	UpdatedAt time.Time
}

// Registry holds at most one session per user. Each user also gets a lock so
// their events are handled one at a time while different users never block
// each other.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	locks    map[string]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (r *Registry) userLock(userID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[userID] = l
	}
	return l
}

func (r *Registry) get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID]
}

func (r *Registry) put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.UserID] = s
}

func (r *Registry) remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// Has reports whether the user has a session in progress.
func (r *Registry) Has(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[userID]
	return ok
}

// takeIdle removes and returns sessions untouched since the cutoff.
func (r *Registry) takeIdle(cutoff time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var idle []*Session
	for userID, s := range r.sessions {
		if s.UpdatedAt.Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, userID)
		}
	}
	return idle
}
