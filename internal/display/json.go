package display

import (
	"encoding/json"
	"time"
)

// ScreenJSON is the top-level JSON envelope for screen output.
type ScreenJSON struct {
	Screen ScreenInner `json:"screen"`
}

// ScreenInner contains the screen details.
type ScreenInner struct {
	Event                string      `json:"event,omitempty"`
	Reason               string      `json:"reason,omitempty"`
	Time                 string      `json:"time"`
	Date                 string      `json:"date"`
	Icon                 string      `json:"icon"`
	Temperature          int         `json:"temperature"`
	TemperatureAvailable bool        `json:"temperature_available"`
	TemperatureText      string      `json:"temperature_text"`
	Cadence              string      `json:"cadence"`
	AnimationStep        int         `json:"animation_step"`
	UptimeSeconds        int64       `json:"uptime_seconds"`
	StartTime            string      `json:"start_time"`
	Timestamp            string      `json:"timestamp"`
	Link                 LinkJSON    `json:"link"`
	Weather              WeatherJSON `json:"weather"`
	Config               ConfigJSON  `json:"config"`
}

// LinkJSON reports the phone link state.
type LinkJSON struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// WeatherJSON is the JSON representation of the weather snapshot.
type WeatherJSON struct {
	Updated     bool   `json:"updated"`
	Error       string `json:"error"`
	Temperature int    `json:"temperature"`
	Condition   int    `json:"condition"`
	Observed    string `json:"observed,omitempty"`
	Sunrise     string `json:"sunrise,omitempty"`
	Sunset      string `json:"sunset,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker        string `json:"broker"`
	HTTPAddr      string `json:"http_addr"`
	Locale        string `json:"locale"`
	Timezone      string `json:"timezone,omitempty"`
	WeatherSource string `json:"weather_source"`
	WSBroker      string `json:"ws_broker,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(st State) ScreenInner {
	icon := string(st.Icon)
	if icon == "" {
		icon = "none"
	}

	return ScreenInner{
		Time:                 st.Time,
		Date:                 st.Date,
		Icon:                 icon,
		Temperature:          st.Temperature,
		TemperatureAvailable: !st.TemperatureUnavailable,
		TemperatureText:      st.TemperatureText(),
		Cadence:              st.Cadence.String(),
		AnimationStep:        st.AnimationStep,
		UptimeSeconds:        int64(st.Uptime().Truncate(time.Second).Seconds()),
		StartTime:            st.StartTime.UTC().Format(time.RFC3339),
		Timestamp:            st.Now.UTC().Format(time.RFC3339),
		Link:                 LinkJSON{Connected: st.LinkConnected, Broker: st.Config.Broker},
		Weather: WeatherJSON{
			Updated:     st.Weather.Updated,
			Error:       st.Weather.Error.String(),
			Temperature: st.Weather.Temperature,
			Condition:   int(st.Weather.Condition),
			Observed:    formatTime(st.Weather.CurrentTime),
			Sunrise:     formatTime(st.Weather.Sunrise),
			Sunset:      formatTime(st.Weather.Sunset),
		},
		Config: ConfigJSON{
			Broker:        st.Config.Broker,
			HTTPAddr:      st.Config.HTTPAddr,
			Locale:        st.Config.Locale,
			Timezone:      st.Config.Timezone,
			WeatherSource: st.Config.WeatherSource,
			WSBroker:      st.Config.WSBroker,
		},
	}
}

// FormatJSON returns the JSON screen state for the web endpoint (no event/reason).
func FormatJSON(st State) []byte {
	data, _ := json.MarshalIndent(ScreenJSON{Screen: buildInner(st)}, "", "  ")
	return data
}

// FormatScreenEvent returns the compact JSON screen state for MQTT.
func FormatScreenEvent(st State, event, reason string) []byte {
	inner := buildInner(st)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(ScreenJSON{Screen: inner})
	return data
}
