package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

const (
	openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
	openMeteoGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
)

// OpenMeteoClient reads current conditions from Open-Meteo. No API key needed.
type OpenMeteoClient struct {
	city    string
	country string

	mu        sync.Mutex // guards latitude and longitude once geocoded
	latitude  float64
	longitude float64

	units       string
	forecastURL string
	geocodeURL  string
	client      *http.Client
}

// NewOpenMeteoClient creates a client. The location is either coordinates or
// a city resolved through the geocoding API on first use.
func NewOpenMeteoClient(cfg ProviderConfig) *OpenMeteoClient {
	units := cfg.Units
	if units == "" {
		units = "metric"
	}
	return &OpenMeteoClient{
		city:        cfg.City,
		country:     cfg.Country,
		latitude:    cfg.Latitude,
		longitude:   cfg.Longitude,
		units:       units,
		forecastURL: openMeteoForecastURL,
		geocodeURL:  openMeteoGeocodeURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name implements Provider.
func (c *OpenMeteoClient) Name() string {
	return "openmeteo"
}

type openMeteoResponse struct {
	Timezone string `json:"timezone"`
	Current  struct {
		Time        string  `json:"time"`
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Sunrise []string `json:"sunrise"`
		Sunset  []string `json:"sunset"`
	} `json:"daily"`
}

type openMeteoGeoResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Get implements Provider.
func (c *OpenMeteoClient) Get(ctx context.Context) (*Report, error) {
	lat, lon, err := c.resolveLocation(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.6f", lat))
	query.Set("longitude", fmt.Sprintf("%.6f", lon))
	query.Set("current", "temperature_2m,weather_code")
	query.Set("daily", "sunrise,sunset")
	query.Set("timezone", "auto")
	query.Set("forecast_days", "1")
	if c.units == "imperial" {
		query.Set("temperature_unit", "fahrenheit")
	}

	var payload openMeteoResponse
	if err := c.getJSON(ctx, c.forecastURL, query, &payload); err != nil {
		return nil, fmt.Errorf("open-meteo: %w", err)
	}

	if strings.TrimSpace(payload.Current.Time) == "" {
		return nil, fmt.Errorf("open-meteo current data missing")
	}

	loc := openMeteoLocation(payload.Timezone)
	observed := parseOpenMeteoTime(payload.Current.Time, loc)
	if observed.IsZero() {
		return nil, fmt.Errorf("open-meteo bad current time %q", payload.Current.Time)
	}
	sunrise, sunset := pickOpenMeteoSunTimes(observed, loc, payload.Daily.Sunrise, payload.Daily.Sunset)

	return &Report{
		Temperature: roundTemp(payload.Current.Temperature),
		Condition:   conditionForWMO(payload.Current.WeatherCode),
		CurrentTime: observed,
		Sunrise:     sunrise,
		Sunset:      sunset,
	}, nil
}

// resolveLocation returns the configured coordinates, geocoding the city on
// first use. Overlapping fetches may both geocode; the last result is kept.
func (c *OpenMeteoClient) resolveLocation(ctx context.Context) (float64, float64, error) {
	c.mu.Lock()
	lat, lon := c.latitude, c.longitude
	c.mu.Unlock()
	if lat != 0 || lon != 0 {
		return lat, lon, nil
	}

	if strings.TrimSpace(c.city) == "" {
		return 0, 0, fmt.Errorf("open-meteo location is empty")
	}

	query := url.Values{}
	query.Set("name", c.city)
	query.Set("count", "1")
	query.Set("format", "json")
	if strings.TrimSpace(c.country) != "" {
		query.Set("country", c.country)
	}

	var payload openMeteoGeoResponse
	if err := c.getJSON(ctx, c.geocodeURL, query, &payload); err != nil {
		return 0, 0, fmt.Errorf("open-meteo geocoding: %w", err)
	}

	if len(payload.Results) == 0 {
		return 0, 0, fmt.Errorf("open-meteo geocoding found no results for %q", c.city)
	}

	lat, lon = payload.Results[0].Latitude, payload.Results[0].Longitude
	c.mu.Lock()
	c.latitude, c.longitude = lat, lon
	c.mu.Unlock()

	return lat, lon, nil
}

func (c *OpenMeteoClient) getJSON(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func openMeteoLocation(timezone string) *time.Location {
	if strings.TrimSpace(timezone) != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

func parseOpenMeteoTime(value string, loc *time.Location) time.Time {
	if t, err := time.ParseInLocation("2006-01-02T15:04", value, loc); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(time.RFC3339, value, loc); err == nil {
		return t
	}
	return time.Time{}
}

// pickOpenMeteoSunTimes returns the sunrise/sunset pair for the observed
// day, or the first valid pair when no day matches.
func pickOpenMeteoSunTimes(observed time.Time, loc *time.Location, sunrises, sunsets []string) (time.Time, time.Time) {
	count := len(sunrises)
	if len(sunsets) < count {
		count = len(sunsets)
	}

	var firstSunrise, firstSunset time.Time
	for i := 0; i < count; i++ {
		sunrise := parseOpenMeteoTime(sunrises[i], loc)
		sunset := parseOpenMeteoTime(sunsets[i], loc)
		if sunrise.IsZero() || sunset.IsZero() {
			continue
		}
		if sameDate(observed, sunrise) {
			return sunrise, sunset
		}
		if firstSunrise.IsZero() {
			firstSunrise, firstSunset = sunrise, sunset
		}
	}
	return firstSunrise, firstSunset
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// conditionForWMO translates a WMO weather interpretation code into the
// OpenWeatherMap condition id space used by the watchface.
func conditionForWMO(code int) logic.Condition {
	switch code {
	case 0:
		return 800
	case 1:
		return 801
	case 2:
		return 802
	case 3:
		return 804
	case 45, 48:
		return 741
	case 51:
		return 300
	case 53:
		return 301
	case 55:
		return 302
	case 56, 57, 66, 67:
		return 511
	case 61:
		return 500
	case 63:
		return 501
	case 65:
		return 502
	case 71:
		return 600
	case 73:
		return 601
	case 75:
		return 602
	case 77:
		return 600
	case 80:
		return 520
	case 81:
		return 521
	case 82:
		return 522
	case 85:
		return 620
	case 86:
		return 622
	case 95:
		return 211
	case 96, 99:
		return 202
	default:
		return 0
	}
}
