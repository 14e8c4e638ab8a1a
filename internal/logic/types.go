// Package logic contains the pure display-refresh state machine of the watchface.
// This package has NO external dependencies (no MQTT, GPIO, HTTP, OS, or time.Sleep).
// Time is always injected through the events it handles.
package logic

import (
	"strings"
	"time"
)

// Units is a bitmask of calendar units, as reported by the clock source.
type Units uint8

const (
	UnitSecond Units = 1 << iota
	UnitMinute
	UnitHour
	UnitDay
	UnitMonth
	UnitYear
)

// Tick subscription cadences.
const (
	// CadenceCoarse wakes once a minute.
	CadenceCoarse = UnitMinute | UnitHour | UnitDay | UnitMonth | UnitYear
	// CadenceFull adds seconds, used while the loading animation runs.
	CadenceFull = UnitSecond | CadenceCoarse
)

// Has reports whether every unit in u is set.
func (m Units) Has(u Units) bool {
	return m&u == u
}

func (m Units) String() string {
	if m == 0 {
		return "none"
	}
	names := []string{"second", "minute", "hour", "day", "month", "year"}
	var parts []string
	for i, name := range names {
		if m&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// WeatherError classifies why the last weather fetch is unusable.
// The controller treats every non-OK value the same way.
type WeatherError int

const (
	WeatherOK WeatherError = iota
	WeatherDisconnected
	WeatherPhoneError
	WeatherNetworkError
)

func (e WeatherError) String() string {
	switch e {
	case WeatherOK:
		return "OK"
	case WeatherDisconnected:
		return "DISCONNECTED"
	case WeatherPhoneError:
		return "PHONE"
	case WeatherNetworkError:
		return "NETWORK"
	default:
		return "UNKNOWN"
	}
}

// Condition is an OpenWeatherMap style condition id (800 = clear sky, 5xx = rain, ...).
type Condition int

// Snapshot is the last known weather data. The zero value is the startup
// state: nothing fetched yet and no error.
type Snapshot struct {
	Temperature int
	Condition   Condition
	CurrentTime time.Time
	Sunrise     time.Time
	Sunset      time.Time
	// Updated is true once a fetch has completed successfully.
	Updated bool
	Error   WeatherError
}

// Night reports whether the snapshot's observation time lies outside the
// sunrise..sunset window. Equality with either bound counts as day.
func (s Snapshot) Night() bool {
	return s.CurrentTime.Before(s.Sunrise) || s.CurrentTime.After(s.Sunset)
}

// Icon identifies a weather glyph on the screen.
type Icon string

const (
	IconClearDay          Icon = "clear-day"
	IconClearNight        Icon = "clear-night"
	IconPartlyCloudyDay   Icon = "partly-cloudy-day"
	IconPartlyCloudyNight Icon = "partly-cloudy-night"
	IconCloudy            Icon = "cloudy"
	IconRain              Icon = "rain"
	IconDrizzle           Icon = "drizzle"
	IconSnow              Icon = "snow"
	IconSleet             Icon = "sleet"
	IconRainSnow          Icon = "rain-snow"
	IconRainSleet         Icon = "rain-sleet"
	IconThunder           Icon = "thunder"
	IconFog               Icon = "fog"
	IconWind              Icon = "wind"
	IconCold              Icon = "cold"
	IconHot               Icon = "hot"

	IconLoading1     Icon = "loading-1"
	IconLoading2     Icon = "loading-2"
	IconLoading3     Icon = "loading-3"
	IconNotAvailable Icon = "not-available"
	IconPhoneError   Icon = "phone-error"
)

// TextSlot names a text field on the screen.
type TextSlot string

const (
	SlotTime TextSlot = "time"
	SlotDate TextSlot = "date"
)

// VibePattern is a sequence of alternating on/off durations, starting with on.
type VibePattern []time.Duration

// LinkLostPattern is played when the phone link drops:
// three short, three long, three short.
var LinkLostPattern = VibePattern{
	100 * time.Millisecond, 300 * time.Millisecond,
	100 * time.Millisecond, 300 * time.Millisecond,
	100 * time.Millisecond, 300 * time.Millisecond,
	300 * time.Millisecond, 300 * time.Millisecond,
	300 * time.Millisecond, 300 * time.Millisecond,
	300 * time.Millisecond, 300 * time.Millisecond,
	100 * time.Millisecond, 300 * time.Millisecond,
	100 * time.Millisecond, 300 * time.Millisecond,
	100 * time.Millisecond, 300 * time.Millisecond,
}

// Total returns the summed duration of all segments.
func (p VibePattern) Total() time.Duration {
	var d time.Duration
	for _, seg := range p {
		d += seg
	}
	return d
}

// Event is an input to the controller: Tick or ConnectivityChanged.
type Event interface {
	isEvent()
}

// Tick is delivered by the clock source when a subscribed unit changed.
type Tick struct {
	Time    time.Time // local wall-clock time
	Changed Units
}

// ConnectivityChanged is delivered by the link when the phone connection
// state is reported.
type ConnectivityChanged struct {
	Time      time.Time
	Connected bool
}

func (Tick) isEvent()                {}
func (ConnectivityChanged) isEvent() {}

// Effect is an output of the controller, applied by the caller.
type Effect interface {
	isEffect()
}

// SetText replaces the text of a screen slot.
type SetText struct {
	Slot TextSlot
	Text string
}

// SetIcon replaces the weather icon.
type SetIcon struct {
	Icon Icon
}

// SetTemperature replaces the temperature readout. Value is ignored when
// Unavailable is set.
type SetTemperature struct {
	Value       int
	Unavailable bool
}

// Subscribe replaces the clock subscription with the given units.
type Subscribe struct {
	Units Units
}

// RequestRefresh asks the weather collaborator for new data.
type RequestRefresh struct{}

// Vibrate enqueues a haptic pattern.
type Vibrate struct {
	Pattern VibePattern
}

func (SetText) isEffect()        {}
func (SetIcon) isEffect()        {}
func (SetTemperature) isEffect() {}
func (Subscribe) isEffect()      {}
func (RequestRefresh) isEffect() {}
func (Vibrate) isEffect()        {}
