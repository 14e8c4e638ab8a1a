package logic

import "time"

// refreshEveryMinutes is the weather polling period, aligned to the clock.
const refreshEveryMinutes = 30

// Controller decides what the screen shows. It is not safe for concurrent
// use: all events must come from one goroutine.
type Controller struct {
	weekdays      WeekdayTable
	connected     bool
	animationStep int
	cadence       Units
}

// Option configures a Controller.
type Option func(*Controller)

// WithWeekdays sets the weekday abbreviations used in the date text.
func WithWeekdays(days WeekdayTable) Option {
	return func(c *Controller) {
		c.weekdays = days
	}
}

// NewController creates a controller. connected is the link state observed
// at startup.
func NewController(connected bool, opts ...Option) *Controller {
	c := &Controller{
		weekdays:  WeekdaysCatalan,
		connected: connected,
		cadence:   CadenceCoarse,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start returns the effects that bring up an empty screen: coarse
// subscription, blank temperature, then a full redraw.
func (c *Controller) Start(now time.Time, snap Snapshot) []Effect {
	c.cadence = CadenceCoarse
	effects := []Effect{
		Subscribe{Units: CadenceCoarse},
		SetTemperature{Unavailable: true},
	}
	return append(effects, c.Handle(Tick{Time: now, Changed: CadenceFull}, snap)...)
}

// Handle processes one event against the current weather snapshot and
// returns the effects to apply, in order.
func (c *Controller) Handle(ev Event, snap Snapshot) []Effect {
	switch e := ev.(type) {
	case Tick:
		return c.tick(e, snap, true)
	case ConnectivityChanged:
		return c.connectivity(e, snap)
	default:
		return nil
	}
}

func (c *Controller) tick(t Tick, snap Snapshot, allowRefresh bool) []Effect {
	effects := []Effect{SetText{Slot: SlotTime, Text: FormatTime(t.Time)}}

	if t.Changed.Has(UnitDay) {
		effects = append(effects, SetText{Slot: SlotDate, Text: FormatDate(t.Time, c.weekdays)})
	}

	effects = append(effects, c.weather(snap)...)

	if allowRefresh && t.Changed.Has(UnitMinute) && t.Time.Minute()%refreshEveryMinutes == 0 {
		effects = append(effects, RequestRefresh{})
	}
	return effects
}

// weather chooses the cadence, icon and temperature. Rules are checked in
// priority order: link down, fetch outstanding, fetch finished.
func (c *Controller) weather(snap Snapshot) []Effect {
	if !c.connected {
		return []Effect{
			c.subscribe(CadenceCoarse),
			SetTemperature{Unavailable: true},
			SetIcon{Icon: IconPhoneError},
		}
	}

	if !snap.Updated && snap.Error == WeatherOK {
		icon := loadingFrame(c.animationStep)
		c.animationStep = (c.animationStep + 1) % 3
		return []Effect{
			c.subscribe(CadenceFull),
			SetIcon{Icon: icon},
		}
	}

	if snap.Error != WeatherOK {
		return []Effect{
			c.subscribe(CadenceCoarse),
			SetIcon{Icon: IconNotAvailable},
			SetTemperature{Unavailable: true},
		}
	}

	return []Effect{
		c.subscribe(CadenceCoarse),
		SetTemperature{Value: snap.Temperature},
		SetIcon{Icon: IconForCondition(snap.Condition, snap.Night())},
	}
}

// subscribe is emitted on every tick, even when the cadence is unchanged.
func (c *Controller) subscribe(units Units) Effect {
	c.cadence = units
	return Subscribe{Units: units}
}

func (c *Controller) connectivity(e ConnectivityChanged, snap Snapshot) []Effect {
	if e.Connected == c.connected {
		return nil
	}
	c.connected = e.Connected

	if !e.Connected {
		return []Effect{Vibrate{Pattern: LinkLostPattern}}
	}

	effects := []Effect{RequestRefresh{}}
	if snap.Error != WeatherOK {
		// Redraw now instead of waiting for the next minute. The refresh was
		// already requested above.
		effects = append(effects, c.tick(Tick{Time: e.Time, Changed: CadenceFull}, snap, false)...)
	}
	return effects
}

// Connected returns the last known link state.
func (c *Controller) Connected() bool {
	return c.connected
}

// AnimationStep returns the next loading frame index (0..2).
func (c *Controller) AnimationStep() int {
	return c.animationStep
}

// Cadence returns the most recently requested clock subscription.
func (c *Controller) Cadence() Units {
	return c.cadence
}
