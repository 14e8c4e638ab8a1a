package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var (
	_ Link = (*FakeLink)(nil)
	_ Link = (*RealLink)(nil)
)

func TestNewTopics(t *testing.T) {
	tp := NewTopics("home/watch")
	if tp.Screen != "home/watch/screen" {
		t.Errorf("Screen: got %s", tp.Screen)
	}
	if tp.System != "home/watch/system" {
		t.Errorf("System: got %s", tp.System)
	}
	if tp.WeatherRequest != "home/watch/weather/request" {
		t.Errorf("WeatherRequest: got %s", tp.WeatherRequest)
	}
	if tp.WeatherResponse != "home/watch/weather/response" {
		t.Errorf("WeatherResponse: got %s", tp.WeatherResponse)
	}
}

func TestNewTopicsDefaultPrefix(t *testing.T) {
	tp := NewTopics("")
	if tp.Screen != "watchface/screen" {
		t.Errorf("Screen: got %s, want watchface/screen", tp.Screen)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, exists := parsed["system"]["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"screen":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("got %s, want raw payload", payload)
	}
}

func TestFormatSystemPayloadTimezoneConversion(t *testing.T) {
	madrid := time.FixedZone("CET", 3600)
	payload, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 9, 30, 0, 0, madrid),
		Event:     "STARTUP",
	})

	var parsed SystemPayload
	json.Unmarshal(payload, &parsed)
	if parsed.System.Timestamp != "2026-02-10T08:30:00Z" {
		t.Errorf("timestamp: got %s, want UTC", parsed.System.Timestamp)
	}
}

func TestWillPayloadFormat(t *testing.T) {
	will := WillEvent(time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC))
	if !will.Retained {
		t.Error("will should be retained")
	}

	payload, err := FormatSystemPayload(will)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"OFFLINE","reason":"LINK_LOST"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFakeLinkConnectivity(t *testing.T) {
	f := NewFakeLink(false)
	if f.IsConnected() {
		t.Error("expected disconnected initially")
	}

	f.SetConnected(true)
	if !f.IsConnected() {
		t.Error("expected connected after SetConnected(true)")
	}

	select {
	case got := <-f.Connectivity():
		if !got {
			t.Error("signal: got false, want true")
		}
	default:
		t.Fatal("expected a connectivity signal")
	}
}

func TestFakeLinkRequestWeatherDisconnected(t *testing.T) {
	f := NewFakeLink(false)
	err := f.RequestWeather([]byte("{}"))
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("got %v, want ErrNotConnected", err)
	}
	if len(f.Requests()) != 0 {
		t.Error("request should not be recorded while disconnected")
	}
}

func TestFakeLinkRequestWeatherConnected(t *testing.T) {
	f := NewFakeLink(true)
	if err := f.RequestWeather([]byte(`{"request":{}}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.Requests(); len(got) != 1 || string(got[0]) != `{"request":{}}` {
		t.Errorf("requests: got %q", got)
	}
}

func TestFakeLinkDeliver(t *testing.T) {
	f := NewFakeLink(true)
	var got []byte
	f.OnWeatherResponse(func(p []byte) { got = p })

	f.Deliver([]byte("resp"))
	if string(got) != "resp" {
		t.Errorf("handler payload: got %q, want resp", got)
	}
}

func TestFakeLinkDeliverWithoutHandler(t *testing.T) {
	f := NewFakeLink(true)
	f.Deliver([]byte("ignored")) // must not panic
}

func TestFakeLinkPublishSystem(t *testing.T) {
	f := NewFakeLink(true)
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGINT",
	}
	if err := f.PublishSystem(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Systems()) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(f.Systems()))
	}
	if f.Systems()[0].Reason != "SIGINT" {
		t.Errorf("reason: got %s, want SIGINT", f.Systems()[0].Reason)
	}
	if len(f.SystemPayloads) != 1 {
		t.Errorf("expected 1 payload, got %d", len(f.SystemPayloads))
	}
}

func TestFakeLinkPublishErrors(t *testing.T) {
	f := NewFakeLink(true)
	f.PublishError = errors.New("boom")
	f.PublishSystemError = errors.New("boom")

	if err := f.PublishScreen([]byte("x")); err == nil {
		t.Error("expected PublishScreen error")
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected PublishSystem error")
	}
	if len(f.Screens()) != 0 || len(f.Systems()) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

func TestFakeLinkReset(t *testing.T) {
	f := NewFakeLink(true)
	f.PublishScreen([]byte("x"))
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.RequestWeather([]byte("r"))
	f.Close()

	f.Reset()

	if len(f.Screens()) != 0 || len(f.Systems()) != 0 || len(f.Requests()) != 0 {
		t.Error("expected recorded messages cleared")
	}
	if f.Closed {
		t.Error("expected Closed reset")
	}
	if !f.IsConnected() {
		t.Error("Reset should not change connection state")
	}
}

func TestFakeLinkClose(t *testing.T) {
	f := NewFakeLink(true)
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("expected Closed=true")
	}
}
