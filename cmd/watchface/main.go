// Command watchface drives a watch screen: clock, date and weather, with a
// phone link over MQTT and a vibration motor on GPIO.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/watchface/internal/clock"
	"github.com/sweeney/watchface/internal/config"
	"github.com/sweeney/watchface/internal/display"
	"github.com/sweeney/watchface/internal/gpio"
	"github.com/sweeney/watchface/internal/logic"
	"github.com/sweeney/watchface/internal/mqtt"
	"github.com/sweeney/watchface/internal/weather"
	"github.com/sweeney/watchface/internal/web"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "watchface",
		Short: "Weather watchface daemon",
		Long:  "Draws time, date and weather on the watch screen and keeps them fresh",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every applied effect")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(previewCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the watchface daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return run(cfg)
		},
	}
}

func previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Render one frame and print it as JSON",
		Long:  "Fetches weather once (HTTP sources only), draws the screen for the current time and exits",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return preview(cmd.Context(), cfg, os.Stdout)
		},
	}
}

func run(cfg *config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	vibrator, err := newVibrator(cfg.Haptic)
	if err != nil {
		return fmt.Errorf("init haptics: %w", err)
	}
	defer vibrator.Close()

	topics := mqtt.NewTopics(cfg.MQTT.TopicPrefix)
	link, err := mqtt.NewRealLink(mqtt.Options{
		Broker:   cfg.MQTT.Broker,
		ClientID: cfg.MQTT.ClientID,
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
		Topics:   topics,
	})
	if err != nil {
		return fmt.Errorf("init link: %w", err)
	}
	defer link.Close()

	store := weather.NewStore()
	fetcher, err := newFetcher(cfg.Weather, store, link)
	if err != nil {
		return fmt.Errorf("init weather: %w", err)
	}

	ws := resolveWSBroker(cfg.MQTT.WSBroker, cfg.MQTT.Broker)
	screen := display.NewScreen(time.Now(), display.Config{
		Broker:        cfg.MQTT.Broker,
		HTTPAddr:      cfg.Display.HTTPAddr,
		Locale:        cfg.Display.Locale,
		Timezone:      cfg.Display.Timezone,
		WeatherSource: cfg.Weather.Source,
		WSBroker:      ws,
		ScreenTopic:   topics.Screen,
	})

	st := screen.State()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  st.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: display.FormatScreenEvent(st, "STARTUP", ""),
	}
	if err := link.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if cfg.Display.HTTPAddr != "" {
		srv := web.New(cfg.Display.HTTPAddr, screen, web.WithMQTTScript(cfg.Display.MQTTScript))
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.Display.HTTPAddr)
	}

	log.Printf("started: broker=%s weather=%s locale=%s tz=%s haptics=%v",
		cfg.MQTT.Broker, cfg.Weather.Source, cfg.Display.Locale, loc, cfg.Haptic.Enabled)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ctrl := logic.NewController(link.IsConnected(), logic.WithWeekdays(logic.WeekdaysFor(cfg.Display.Locale)))
	d := loopDeps{
		ctrl:     ctrl,
		source:   clock.NewSource(loc),
		store:    store,
		fetcher:  fetcher,
		screen:   screen,
		link:     link,
		vibrator: vibrator,
		verbose:  verbose,
	}
	return runLoop(d, time.Now, ticker.C, link.Connectivity(), sigCh)
}

func newVibrator(cfg config.HapticConfig) (gpio.Vibrator, error) {
	if !cfg.Enabled {
		return gpio.NopVibrator{}, nil
	}
	v, err := gpio.NewRealVibrator(cfg.Chip, cfg.Line)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// newFetcher wires the weather source. The phone relay needs the link for
// both directions.
func newFetcher(cfg config.WeatherConfig, store *weather.Store, link mqtt.Link) (weather.Fetcher, error) {
	if cfg.Source == "phone" {
		f := weather.NewPhoneFetcher(link, store, cfg.Units, time.Now)
		link.OnWeatherResponse(f.HandleResponse)
		return f, nil
	}

	provider, err := weather.NewProvider(cfg.Source, providerConfig(cfg))
	if err != nil {
		return nil, err
	}
	return weather.NewHTTPFetcher(provider, store, cfg.Timeout), nil
}

func providerConfig(cfg config.WeatherConfig) weather.ProviderConfig {
	return weather.ProviderConfig{
		APIKey:    cfg.APIKey,
		City:      cfg.City,
		Country:   cfg.Country,
		Latitude:  cfg.Latitude,
		Longitude: cfg.Longitude,
		Units:     cfg.Units,
	}
}

// loopDeps is everything runLoop touches. It is only used from the loop goroutine,
// apart from store and screen which carry their own locks.
type loopDeps struct {
	ctrl     *logic.Controller
	source   *clock.Source
	store    *weather.Store
	fetcher  weather.Fetcher
	screen   *display.Screen
	link     mqtt.Link
	vibrator gpio.Vibrator
	verbose  bool
}

// visible is the part of the screen a viewer can see. The mirror is only
// republished when it changes.
type visible struct {
	time, date, icon, temp string
	connected              bool
}

func visibleOf(st display.State) visible {
	return visible{
		time:      st.Time,
		date:      st.Date,
		icon:      string(st.Icon),
		temp:      st.TemperatureText(),
		connected: st.LinkConnected,
	}
}

func runLoop(d loopDeps, now func() time.Time, tick <-chan time.Time, conn <-chan bool, sig <-chan os.Signal) error {
	boot := d.source.Full(now())
	d.source.Observe(boot.Time)

	effects := d.ctrl.Start(boot.Time, d.store.Snapshot())
	applyEffects(d, effects)
	if !hasRefresh(effects) {
		// The boot redraw only refreshes on the half hour; fetch once now so
		// the loading animation does not run until then.
		d.fetcher.RequestRefresh()
	}

	last := publishScreen(d, visible{})

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			name := signalName(s)
			updateStatus(d)
			st := d.screen.State()
			event := mqtt.SystemEvent{
				Timestamp:  st.Now,
				Event:      "SHUTDOWN",
				Reason:     name,
				Retained:   true,
				RawPayload: display.FormatScreenEvent(st, "SHUTDOWN", name),
			}
			if err := d.link.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t, ok := d.source.Observe(now())
			if !ok {
				continue
			}
			applyEffects(d, d.ctrl.Handle(t, d.store.Snapshot()))
			last = publishScreen(d, last)

		case connected := <-conn:
			was := d.ctrl.Connected()
			ev := logic.ConnectivityChanged{Time: now().In(d.source.Location()), Connected: connected}
			applyEffects(d, d.ctrl.Handle(ev, d.store.Snapshot()))
			if was != connected {
				log.Printf("link: %s", linkState(connected))
				if connected {
					reconnected := mqtt.SystemEvent{Timestamp: ev.Time, Event: "RECONNECTED"}
					if err := d.link.PublishSystem(reconnected); err != nil {
						log.Printf("failed to publish reconnected event: %v", err)
					}
				}
			}
			last = publishScreen(d, last)
		}
	}
}

func applyEffects(d loopDeps, effects []logic.Effect) {
	for _, e := range effects {
		if d.verbose {
			log.Printf("effect: %T %+v", e, e)
		}
		switch e := e.(type) {
		case logic.SetText:
			d.screen.SetText(e.Slot, e.Text)
		case logic.SetIcon:
			d.screen.SetIcon(e.Icon)
		case logic.SetTemperature:
			d.screen.SetTemperature(e.Value, e.Unavailable)
		case logic.Subscribe:
			if e.Units != d.source.Subscribed() {
				log.Printf("clock: cadence %s", e.Units)
			}
			d.source.Subscribe(e.Units)
		case logic.RequestRefresh:
			log.Printf("weather: refresh requested")
			d.fetcher.RequestRefresh()
		case logic.Vibrate:
			log.Printf("haptic: link lost, vibrating for %v", e.Pattern.Total())
			if err := d.vibrator.Enqueue(e.Pattern); err != nil {
				log.Printf("haptic: %v", err)
			}
		}
	}
}

func hasRefresh(effects []logic.Effect) bool {
	for _, e := range effects {
		if _, ok := e.(logic.RequestRefresh); ok {
			return true
		}
	}
	return false
}

func updateStatus(d loopDeps) {
	d.screen.SetStatus(d.ctrl.Connected(), d.ctrl.Cadence(), d.ctrl.AnimationStep(), d.store.Snapshot())
}

// publishScreen records controller state for the status page and mirrors
// the screen to MQTT if anything visible changed.
func publishScreen(d loopDeps, last visible) visible {
	updateStatus(d)
	st := d.screen.State()
	v := visibleOf(st)
	if v == last {
		return last
	}
	if err := d.link.PublishScreen(display.FormatScreenEvent(st, "", "")); err != nil {
		log.Printf("publish screen: %v", err)
		return last
	}
	return v
}

// preview draws a single frame without the link or the motor.
func preview(ctx context.Context, cfg *config.Config, out io.Writer) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store := weather.NewStore()
	if cfg.Weather.Source != "phone" {
		provider, err := weather.NewProvider(cfg.Weather.Source, providerConfig(cfg.Weather))
		if err != nil {
			return err
		}
		timeout := cfg.Weather.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		r, err := provider.Get(ctx)
		if err != nil {
			log.Printf("weather: %v", err)
			store.Fail(logic.WeatherNetworkError)
		} else {
			store.Update(*r)
		}
	}

	screen := display.NewScreen(time.Now(), display.Config{
		Broker:        cfg.MQTT.Broker,
		Locale:        cfg.Display.Locale,
		Timezone:      cfg.Display.Timezone,
		WeatherSource: cfg.Weather.Source,
	})
	ctrl := logic.NewController(true, logic.WithWeekdays(logic.WeekdaysFor(cfg.Display.Locale)))
	boot := clock.NewSource(loc).Full(time.Now())
	for _, e := range ctrl.Start(boot.Time, store.Snapshot()) {
		switch e := e.(type) {
		case logic.SetText:
			screen.SetText(e.Slot, e.Text)
		case logic.SetIcon:
			screen.SetIcon(e.Icon)
		case logic.SetTemperature:
			screen.SetTemperature(e.Value, e.Unavailable)
		}
	}
	screen.SetStatus(ctrl.Connected(), ctrl.Cadence(), ctrl.AnimationStep(), store.Snapshot())

	_, err = fmt.Fprintln(out, string(display.FormatJSON(screen.State())))
	return err
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func linkState(connected bool) string {
	if connected {
		return "connected"
	}
	return "disconnected"
}

// resolveWSBroker converts the mqtt.ws_broker setting into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty or
// "off" disables the live page.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" || ws == "" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
