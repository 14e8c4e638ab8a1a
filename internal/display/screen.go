// Package display holds the watchface screen model. It is the rendering
// surface the run loop applies controller effects to, and is read by the
// HTTP status page and the MQTT screen mirror.
package display

import (
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

// Renderer accepts screen updates. All calls are idempotent, last write wins.
type Renderer interface {
	SetTemperature(value int, unavailable bool)
	SetIcon(icon logic.Icon)
	SetText(slot logic.TextSlot, text string)
}

// Config contains daemon configuration for display.
type Config struct {
	Broker        string
	HTTPAddr      string
	Locale        string
	Timezone      string
	WeatherSource string
	WSBroker      string // websocket broker URL for the live page (empty = disabled)
	ScreenTopic   string
}

// State is a point-in-time view of the screen and the inputs behind it.
// It is a value copy, safe to use after the lock is released.
type State struct {
	Time                   string
	Date                   string
	Icon                   logic.Icon
	Temperature            int
	TemperatureUnavailable bool

	LinkConnected bool
	Cadence       logic.Units
	AnimationStep int
	Weather       logic.Snapshot

	StartTime time.Time
	Now       time.Time
	Config    Config
}

// Uptime returns the duration since the daemon started.
func (s State) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// TemperatureText renders the temperature readout as drawn on the watch.
func (s State) TemperatureText() string {
	if s.TemperatureUnavailable {
		return "--"
	}
	return fmt.Sprintf("%d°", s.Temperature)
}

// Screen holds the mutable screen state behind an RWMutex.
type Screen struct {
	mu    sync.RWMutex
	state State
	now   func() time.Time
}

// NewScreen creates a blank screen with the temperature marked unavailable.
func NewScreen(startTime time.Time, cfg Config) *Screen {
	return &Screen{
		state: State{
			TemperatureUnavailable: true,
			Cadence:                logic.CadenceCoarse,
			StartTime:              startTime,
			Config:                 cfg,
		},
		now: time.Now,
	}
}

// SetText implements Renderer. Unknown slots are ignored.
func (s *Screen) SetText(slot logic.TextSlot, text string) {
	s.mu.Lock()
	switch slot {
	case logic.SlotTime:
		s.state.Time = text
	case logic.SlotDate:
		s.state.Date = text
	}
	s.mu.Unlock()
}

// SetIcon implements Renderer.
func (s *Screen) SetIcon(icon logic.Icon) {
	s.mu.Lock()
	s.state.Icon = icon
	s.mu.Unlock()
}

// SetTemperature implements Renderer.
func (s *Screen) SetTemperature(value int, unavailable bool) {
	s.mu.Lock()
	if unavailable {
		value = 0
	}
	s.state.Temperature = value
	s.state.TemperatureUnavailable = unavailable
	s.mu.Unlock()
}

// SetStatus records the controller and input state shown on the status page.
// Called from the run loop after every event.
func (s *Screen) SetStatus(connected bool, cadence logic.Units, animationStep int, weather logic.Snapshot) {
	s.mu.Lock()
	s.state.LinkConnected = connected
	s.state.Cadence = cadence
	s.state.AnimationStep = animationStep
	s.state.Weather = weather
	s.mu.Unlock()
}

// State returns a point-in-time copy of the screen.
// The Now field is set to the current time at the moment of the call.
func (s *Screen) State() State {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()
	st.Now = s.now()
	return st
}
