package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sweeney/watchface/internal/logic"
)

// Fetcher refreshes the weather store. RequestRefresh must not block; the
// result lands in the store whenever the fetch completes.
type Fetcher interface {
	RequestRefresh()
}

// Requester sends a weather request to the phone.
type Requester interface {
	RequestWeather(payload []byte) error
}

// PhoneFetcher relays weather requests through the phone link and applies
// the phone's responses to the store.
type PhoneFetcher struct {
	link  Requester
	store *Store
	units string
	now   func() time.Time
	wg    sync.WaitGroup
}

// NewPhoneFetcher creates a relay fetcher.
func NewPhoneFetcher(link Requester, store *Store, units string, now func() time.Time) *PhoneFetcher {
	if now == nil {
		now = time.Now
	}
	return &PhoneFetcher{link: link, store: store, units: units, now: now}
}

// RequestRefresh publishes a request from its own goroutine and returns
// immediately. If the request cannot be sent the store is marked
// disconnected.
func (f *PhoneFetcher) RequestRefresh() {
	payload, err := FormatRequest(f.now(), f.units)
	if err != nil {
		log.Printf("weather: format request: %v", err)
		return
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		if err := f.link.RequestWeather(payload); err != nil {
			log.Printf("weather: request failed: %v", err)
			f.store.Fail(logic.WeatherDisconnected)
		}
	}()
}

// Wait blocks until all started requests have been sent or have failed.
func (f *PhoneFetcher) Wait() {
	f.wg.Wait()
}

// HandleResponse applies a relay response. Malformed payloads count as a
// phone-side failure.
func (f *PhoneFetcher) HandleResponse(payload []byte) {
	r, err := ParseReport(payload)
	if err != nil {
		log.Printf("weather: %v", err)
		f.store.Fail(logic.WeatherPhoneError)
		return
	}
	f.store.Apply(r)
	if r.Error != logic.WeatherOK {
		log.Printf("weather: phone reported error %s", r.Error)
		return
	}
	log.Printf("weather: updated temp=%d condition=%d", r.Temperature, r.Condition)
}

// HTTPFetcher fetches weather directly from a provider. Each request runs
// in its own goroutine behind a circuit breaker.
type HTTPFetcher struct {
	provider Provider
	store    *Store
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker
	wg       sync.WaitGroup
}

// NewHTTPFetcher creates a fetcher for the given provider. A timeout <= 0
// defaults to 30s.
func NewHTTPFetcher(provider Provider, store *Store, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider.Name(),
		MaxRequests: 1,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("weather: breaker %s %s -> %s", name, from, to)
		},
	})
	return &HTTPFetcher{
		provider: provider,
		store:    store,
		timeout:  timeout,
		breaker:  breaker,
	}
}

// RequestRefresh starts a fetch and returns immediately. Overlapping fetches
// are allowed; the last one to finish wins.
func (f *HTTPFetcher) RequestRefresh() {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.fetch()
	}()
}

// Wait blocks until all started fetches have finished.
func (f *HTTPFetcher) Wait() {
	f.wg.Wait()
}

func (f *HTTPFetcher) fetch() {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	result, err := f.breaker.Execute(func() (interface{}, error) {
		return f.provider.Get(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%s: circuit open: %w", f.provider.Name(), err)
		}
		log.Printf("weather: fetch failed: %v", err)
		f.store.Fail(logic.WeatherNetworkError)
		return
	}

	r := result.(*Report)
	f.store.Update(*r)
	log.Printf("weather: %s updated temp=%d condition=%d", f.provider.Name(), r.Temperature, r.Condition)
}
