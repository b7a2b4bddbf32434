package domain

import (
	"encoding/json"
	"time"
)

// LocationEvent records a confirmed placement of a container or group.
type LocationEvent struct {
	LocationID string    `json:"location_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

// LocationTrail is an append-only sequence of location events ordered by
// VerifiedAt ascending. The type exposes no way to rewrite or truncate
// recorded entries.
type LocationTrail struct {
	events []LocationEvent
}

// NewLocationTrail builds a trail from existing events, preserving order.
func NewLocationTrail(events ...LocationEvent) LocationTrail {
	return LocationTrail{events: append([]LocationEvent(nil), events...)}
}

// Append records a new event at the end of the trail.
func (t *LocationTrail) Append(ev LocationEvent) {
	t.events = append(t.events, ev)
}

// Len returns the number of recorded events.
func (t LocationTrail) Len() int { return len(t.events) }

// Last returns the most recent event, if any.
func (t LocationTrail) Last() (LocationEvent, bool) {
	if len(t.events) == 0 {
		return LocationEvent{}, false
	}
	return t.events[len(t.events)-1], true
}

// Events returns a copy of the recorded events.
func (t LocationTrail) Events() []LocationEvent {
	return append([]LocationEvent(nil), t.events...)
}

// Ordered reports whether VerifiedAt is non-decreasing across the trail.
func (t LocationTrail) Ordered() bool {
	for i := 1; i < len(t.events); i++ {
		if t.events[i].VerifiedAt.Before(t.events[i-1].VerifiedAt) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the trail.
func (t LocationTrail) Clone() LocationTrail {
	return LocationTrail{events: append([]LocationEvent(nil), t.events...)}
}

// MarshalJSON serialises the trail as a plain event array.
func (t LocationTrail) MarshalJSON() ([]byte, error) {
	if t.events == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.events)
}

// UnmarshalJSON hydrates the trail from an event array.
func (t *LocationTrail) UnmarshalJSON(data []byte) error {
	var events []LocationEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return err
	}
	t.events = events
	return nil
}
