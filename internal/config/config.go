// Package config loads daemon configuration from a YAML file, a .env file
// and WATCHFACE_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override,
// e.g. WATCHFACE_MQTT_BROKER for mqtt.broker.
const EnvPrefix = "WATCHFACE"

type Config struct {
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Weather WeatherConfig `mapstructure:"weather"`
	Display DisplayConfig `mapstructure:"display"`
	Haptic  HapticConfig  `mapstructure:"haptic"`
}

type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	WSBroker    string `mapstructure:"ws_broker"`
}

type WeatherConfig struct {
	Source    string        `mapstructure:"source"` // phone, openmeteo or openweather
	APIKey    string        `mapstructure:"api_key"`
	City      string        `mapstructure:"city"`
	Country   string        `mapstructure:"country"`
	Latitude  float64       `mapstructure:"latitude"`
	Longitude float64       `mapstructure:"longitude"`
	Units     string        `mapstructure:"units"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type DisplayConfig struct {
	Locale     string `mapstructure:"locale"`
	Timezone   string `mapstructure:"timezone"` // empty = system local time
	HTTPAddr   string `mapstructure:"http_addr"`
	MQTTScript string `mapstructure:"mqtt_script"` // local mqtt.min.js for the live page
}

type HapticConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Chip    string `mapstructure:"chip"`
	Line    int    `mapstructure:"line"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "watchface")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", "watchface")
	v.SetDefault("mqtt.ws_broker", "")
	v.SetDefault("weather.source", "phone")
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.city", "")
	v.SetDefault("weather.country", "")
	v.SetDefault("weather.latitude", 0)
	v.SetDefault("weather.longitude", 0)
	v.SetDefault("weather.units", "metric")
	v.SetDefault("weather.timeout", "30s")
	v.SetDefault("display.locale", "ca")
	v.SetDefault("display.timezone", "")
	v.SetDefault("display.http_addr", ":80")
	v.SetDefault("display.mqtt_script", "/usr/share/watchface/mqtt.min.js")
	v.SetDefault("haptic.enabled", false)
	v.SetDefault("haptic.chip", "gpiochip0")
	v.SetDefault("haptic.line", 18)
}

// Load reads configuration. configPath may be empty, in which case
// config.yaml is looked up in . and /etc/watchface; a missing file is not an
// error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env: %v", err)
	}

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/watchface")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the daemon cannot run with.
func (c *Config) Validate() error {
	switch c.Weather.Source {
	case "phone", "openmeteo", "openweather":
	default:
		return fmt.Errorf("config: unknown weather.source %q", c.Weather.Source)
	}
	if c.Weather.Source == "openweather" && c.Weather.APIKey == "" {
		return errors.New("config: weather.api_key is required for openweather")
	}
	switch c.Weather.Units {
	case "metric", "imperial":
	default:
		return fmt.Errorf("config: unknown weather.units %q", c.Weather.Units)
	}
	switch c.Display.Locale {
	case "ca", "en":
	default:
		return fmt.Errorf("config: unknown display.locale %q", c.Display.Locale)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Haptic.Enabled && c.Haptic.Line < 0 {
		return fmt.Errorf("config: invalid haptic.line %d", c.Haptic.Line)
	}
	return nil
}

// Location returns the display time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Display.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: display.timezone: %w", err)
	}
	return loc, nil
}
