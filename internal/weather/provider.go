package weather

import (
	"context"
	"fmt"
	"math"
)

// Provider fetches current conditions from a weather API.
type Provider interface {
	Name() string
	Get(ctx context.Context) (*Report, error)
}

// ProviderConfig holds the location and units shared by all providers.
type ProviderConfig struct {
	APIKey    string
	City      string
	Country   string
	Latitude  float64
	Longitude float64
	Units     string // "metric" or "imperial"
}

// NewProvider returns the provider for a source name.
func NewProvider(source string, cfg ProviderConfig) (Provider, error) {
	switch source {
	case "openmeteo":
		return NewOpenMeteoClient(cfg), nil
	case "openweather":
		return NewOpenWeatherClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", source)
	}
}

func roundTemp(v float64) int {
	return int(math.Round(v))
}
