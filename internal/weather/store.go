// Package weather owns the weather snapshot shown on the watchface and the
// collaborators that refresh it: a relay through the phone, or direct HTTP
// providers.
package weather

import (
	"sync"

	"github.com/sweeney/watchface/internal/logic"
)

// Store holds the current snapshot. Fetchers write it from their own
// goroutines; the run loop reads a copy on every event.
type Store struct {
	mu   sync.RWMutex
	snap logic.Snapshot
}

// NewStore creates a Store with the zero (nothing fetched) snapshot.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() logic.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Update records a successful fetch and clears any previous error.
func (s *Store) Update(r Report) {
	s.mu.Lock()
	s.snap = logic.Snapshot{
		Temperature: r.Temperature,
		Condition:   r.Condition,
		CurrentTime: r.CurrentTime,
		Sunrise:     r.Sunrise,
		Sunset:      r.Sunset,
		Updated:     true,
		Error:       logic.WeatherOK,
	}
	s.mu.Unlock()
}

// Fail records a failed fetch. Previously fetched values are kept but the
// error marks them unusable.
func (s *Store) Fail(kind logic.WeatherError) {
	if kind == logic.WeatherOK {
		return
	}
	s.mu.Lock()
	s.snap.Error = kind
	s.mu.Unlock()
}

// Apply records a report, honouring an error it carries.
func (s *Store) Apply(r Report) {
	if r.Error != logic.WeatherOK {
		s.Fail(r.Error)
		return
	}
	s.Update(r)
}

