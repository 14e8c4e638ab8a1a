// Package clock turns wall-clock samples into watchface ticks.
// The caller samples the clock (normally once a second) and the Source
// reports which calendar units changed, filtered by the current subscription.
package clock

import (
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

// Source tracks the last observed time and the active subscription.
// Not safe for concurrent use; it lives on the run loop goroutine.
type Source struct {
	loc        *time.Location
	subscribed logic.Units
	last       time.Time
}

// NewSource creates a Source reporting in loc (time.Local if nil) with the
// coarse cadence subscribed.
func NewSource(loc *time.Location) *Source {
	if loc == nil {
		loc = time.Local
	}
	return &Source{loc: loc, subscribed: logic.CadenceCoarse}
}

// Subscribe replaces the subscription. Re-subscribing with the same units is a no-op.
func (s *Source) Subscribe(units logic.Units) {
	s.subscribed = units
}

// Subscribed returns the active subscription.
func (s *Source) Subscribed() logic.Units {
	return s.subscribed
}

// Location returns the zone ticks are reported in.
func (s *Source) Location() *time.Location {
	return s.loc
}

// Observe records a clock sample. It returns a tick when any subscribed unit
// changed since the previous sample. The first sample only sets the baseline.
func (s *Source) Observe(now time.Time) (logic.Tick, bool) {
	now = now.In(s.loc)
	if s.last.IsZero() {
		s.last = now
		return logic.Tick{}, false
	}

	changed := Changed(s.last, now)
	s.last = now
	if changed&s.subscribed == 0 {
		return logic.Tick{}, false
	}
	return logic.Tick{Time: now, Changed: changed}, true
}

// Changed returns the units that differ between two times. A larger unit
// changing implies all smaller ones changed too.
func Changed(prev, now time.Time) logic.Units {
	var u logic.Units
	switch {
	case prev.Year() != now.Year():
		u |= logic.UnitYear | logic.UnitMonth | logic.UnitDay | logic.UnitHour | logic.UnitMinute | logic.UnitSecond
	case prev.Month() != now.Month():
		u |= logic.UnitMonth | logic.UnitDay | logic.UnitHour | logic.UnitMinute | logic.UnitSecond
	case prev.Day() != now.Day():
		u |= logic.UnitDay | logic.UnitHour | logic.UnitMinute | logic.UnitSecond
	case prev.Hour() != now.Hour():
		u |= logic.UnitHour | logic.UnitMinute | logic.UnitSecond
	case prev.Minute() != now.Minute():
		u |= logic.UnitMinute | logic.UnitSecond
	case prev.Second() != now.Second():
		u |= logic.UnitSecond
	}
	// Samples more than a unit apart (suspend, NTP step) still report the
	// unit even if its field happens to match.
	gap := now.Sub(prev)
	if gap >= time.Minute {
		u |= logic.UnitMinute | logic.UnitSecond
	}
	if gap >= time.Hour {
		u |= logic.UnitHour
	}
	if gap >= 24*time.Hour {
		u |= logic.UnitDay
	}
	return u
}

// Full returns a tick for now with every unit marked as changed.
func (s *Source) Full(now time.Time) logic.Tick {
	return logic.Tick{Time: now.In(s.loc), Changed: logic.CadenceFull}
}
