package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

const openWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherClient reads current conditions from OpenWeatherMap. Its
// condition ids are used as-is.
type OpenWeatherClient struct {
	apiKey    string
	city      string
	country   string
	latitude  float64
	longitude float64
	units     string
	endpoint  string
	client    *http.Client
}

// NewOpenWeatherClient creates a client.
func NewOpenWeatherClient(cfg ProviderConfig) *OpenWeatherClient {
	units := cfg.Units
	if units == "" {
		units = "metric"
	}
	return &OpenWeatherClient{
		apiKey:    cfg.APIKey,
		city:      cfg.City,
		country:   cfg.Country,
		latitude:  cfg.Latitude,
		longitude: cfg.Longitude,
		units:     units,
		endpoint:  openWeatherURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name implements Provider.
func (c *OpenWeatherClient) Name() string {
	return "openweather"
}

type openWeatherResponse struct {
	Weather []struct {
		ID   int    `json:"id"`
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// Get implements Provider.
func (c *OpenWeatherClient) Get(ctx context.Context) (*Report, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is empty")
	}

	query := url.Values{}
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)

	if c.latitude != 0 || c.longitude != 0 {
		query.Set("lat", fmt.Sprintf("%.6f", c.latitude))
		query.Set("lon", fmt.Sprintf("%.6f", c.longitude))
	} else if c.city != "" {
		if c.country != "" {
			query.Set("q", fmt.Sprintf("%s,%s", c.city, c.country))
		} else {
			query.Set("q", c.city)
		}
	} else {
		return nil, fmt.Errorf("openweather location is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("openweather request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openweather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openweather bad status: %s", resp.Status)
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("openweather decode: %w", err)
	}

	if len(payload.Weather) == 0 {
		return nil, fmt.Errorf("openweather response has no conditions")
	}

	return &Report{
		Temperature: roundTemp(payload.Main.Temp),
		Condition:   logic.Condition(payload.Weather[0].ID),
		CurrentTime: time.Unix(payload.Dt, 0).UTC(),
		Sunrise:     time.Unix(payload.Sys.Sunrise, 0).UTC(),
		Sunset:      time.Unix(payload.Sys.Sunset, 0).UTC(),
	}, nil
}
