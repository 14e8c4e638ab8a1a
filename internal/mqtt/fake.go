package mqtt

import "sync"

// FakeLink records published messages for test assertions. It is safe for
// concurrent use so tests can drive it while a run loop is reading.
type FakeLink struct {
	mu sync.Mutex

	// ScreenPayloads contains the screen mirrors that were published.
	ScreenPayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// WeatherRequests contains the request payloads sent to the phone.
	WeatherRequests [][]byte

	// PublishError, if set, will be returned by PublishScreen.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	connected bool
	conn      chan bool
	handler   func([]byte)
}

// NewFakeLink creates a FakeLink in the given connection state.
func NewFakeLink(connected bool) *FakeLink {
	return &FakeLink{
		connected: connected,
		conn:      make(chan bool, connectivityDepth),
	}
}

// SetConnected changes the state and delivers a connectivity signal.
func (f *FakeLink) SetConnected(connected bool) {
	f.mu.Lock()
	f.connected = connected
	f.mu.Unlock()
	f.conn <- connected
}

// Deliver simulates a weather response arriving from the phone.
func (f *FakeLink) Deliver(payload []byte) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(payload)
	}
}

// Connectivity implements Link.
func (f *FakeLink) Connectivity() <-chan bool {
	return f.conn
}

// IsConnected reports whether the fake link is "connected".
func (f *FakeLink) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// OnWeatherResponse implements Link.
func (f *FakeLink) OnWeatherResponse(handler func(payload []byte)) {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
}

// PublishScreen records the screen payload.
func (f *FakeLink) PublishScreen(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.ScreenPayloads = append(f.ScreenPayloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakeLink) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// RequestWeather records the request, failing like the real link when
// disconnected.
func (f *FakeLink) RequestWeather(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return ErrNotConnected
	}
	f.WeatherRequests = append(f.WeatherRequests, payload)
	return nil
}

// Close marks the link as closed.
func (f *FakeLink) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Screens returns a copy of the published screen payloads.
func (f *FakeLink) Screens() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.ScreenPayloads...)
}

// Systems returns a copy of the published system events.
func (f *FakeLink) Systems() []SystemEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SystemEvent(nil), f.SystemEvents...)
}

// Requests returns a copy of the weather requests.
func (f *FakeLink) Requests() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.WeatherRequests...)
}

// Reset clears recorded messages.
func (f *FakeLink) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ScreenPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.WeatherRequests = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
}
