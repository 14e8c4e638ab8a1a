package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

// Report is the result of one weather fetch.
type Report struct {
	Temperature int
	Condition   logic.Condition
	CurrentTime time.Time
	Sunrise     time.Time
	Sunset      time.Time
	Error       logic.WeatherError
}

// ResponsePayload is the relay response published by the phone.
type ResponsePayload struct {
	Weather ResponseInner `json:"weather"`
}

// ResponseInner contains the weather values. Error is empty on success,
// otherwise "phone" or "network".
type ResponseInner struct {
	Temperature int    `json:"temperature"`
	Condition   int    `json:"condition"`
	CurrentTime string `json:"current_time"`
	Sunrise     string `json:"sunrise"`
	Sunset      string `json:"sunset"`
	Error       string `json:"error,omitempty"`
}

// RequestPayload is published by the watch to ask the phone for weather.
type RequestPayload struct {
	Request RequestInner `json:"request"`
}

// RequestInner contains the request details.
type RequestInner struct {
	Timestamp string `json:"timestamp"`
	Units     string `json:"units"`
}

var errMissingField = errors.New("missing field")

// FormatRequest creates the JSON payload for a weather request.
func FormatRequest(at time.Time, units string) ([]byte, error) {
	return json.Marshal(RequestPayload{
		Request: RequestInner{
			Timestamp: at.UTC().Format(time.RFC3339),
			Units:     units,
		},
	})
}

// FormatReport creates the relay JSON payload for a report.
func FormatReport(r Report) ([]byte, error) {
	inner := ResponseInner{
		Temperature: r.Temperature,
		Condition:   int(r.Condition),
		CurrentTime: r.CurrentTime.UTC().Format(time.RFC3339),
		Sunrise:     r.Sunrise.UTC().Format(time.RFC3339),
		Sunset:      r.Sunset.UTC().Format(time.RFC3339),
	}
	switch r.Error {
	case logic.WeatherOK:
	case logic.WeatherNetworkError:
		inner.Error = "network"
	default:
		inner.Error = "phone"
	}
	return json.Marshal(ResponsePayload{Weather: inner})
}

// ParseReport decodes a relay response. A response carrying an error is
// returned as a Report with only Error set.
func ParseReport(payload []byte) (Report, error) {
	var p ResponsePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return Report{}, fmt.Errorf("decode weather response: %w", err)
	}

	switch p.Weather.Error {
	case "":
	case "network":
		return Report{Error: logic.WeatherNetworkError}, nil
	default:
		return Report{Error: logic.WeatherPhoneError}, nil
	}

	r := Report{
		Temperature: p.Weather.Temperature,
		Condition:   logic.Condition(p.Weather.Condition),
	}
	var err error
	if r.CurrentTime, err = parseTime("current_time", p.Weather.CurrentTime); err != nil {
		return Report{}, err
	}
	if r.Sunrise, err = parseTime("sunrise", p.Weather.Sunrise); err != nil {
		return Report{}, err
	}
	if r.Sunset, err = parseTime("sunset", p.Weather.Sunset); err != nil {
		return Report{}, err
	}
	return r, nil
}

func parseTime(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("weather response %s: %w", field, errMissingField)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("weather response %s: %w", field, err)
	}
	return t, nil
}
