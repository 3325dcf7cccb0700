package domain

type Room struct {
	ID       int64  `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Capacity int    `yaml:"capacity" json:"capacity"`
}

// TimeSlot is one bookable window on the daily grid, HH:MM bounds.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Overlaps uses half-open interval semantics: slots that only touch
// (09:00-10:00 and 10:00-11:00) do not overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Start < other.End && s.End > other.Start
}

// OverlapsRange reports whether the slot overlaps an arbitrary HH:MM range.
func (s TimeSlot) OverlapsRange(start, end string) bool {
	return s.Start < end && s.End > start
}
