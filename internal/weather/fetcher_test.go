package weather

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

type fakeRequester struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
	delay    time.Duration
}

func (r *fakeRequester) RequestWeather(payload []byte) error {
	time.Sleep(r.delay)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *fakeRequester) sent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func fixedNow() time.Time {
	return time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
}

func TestPhoneFetcherRequest(t *testing.T) {
	req := &fakeRequester{}
	store := NewStore()
	f := NewPhoneFetcher(req, store, "metric", fixedNow)

	f.RequestRefresh()
	f.Wait()

	if req.sent() != 1 {
		t.Fatalf("expected 1 request, got %d", len(req.payloads))
	}
	if !strings.Contains(string(req.payloads[0]), `"timestamp":"2026-01-05T10:00:00Z"`) {
		t.Errorf("unexpected payload: %s", req.payloads[0])
	}
	if store.Snapshot().Error != logic.WeatherOK {
		t.Errorf("expected OK, got %s", store.Snapshot().Error)
	}
}

func TestPhoneFetcherRequestFailureMarksDisconnected(t *testing.T) {
	req := &fakeRequester{err: errors.New("not connected")}
	store := NewStore()
	f := NewPhoneFetcher(req, store, "metric", fixedNow)

	f.RequestRefresh()
	f.Wait()

	if store.Snapshot().Error != logic.WeatherDisconnected {
		t.Errorf("expected DISCONNECTED, got %s", store.Snapshot().Error)
	}
}

func TestPhoneFetcherRequestDoesNotBlock(t *testing.T) {
	req := &fakeRequester{delay: 500 * time.Millisecond}
	store := NewStore()
	f := NewPhoneFetcher(req, store, "metric", fixedNow)

	start := time.Now()
	f.RequestRefresh()
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("RequestRefresh blocked for %v", elapsed)
	}
	if req.sent() != 0 {
		t.Error("request should still be in flight")
	}

	f.Wait()
	if req.sent() != 1 {
		t.Errorf("expected 1 request after Wait, got %d", req.sent())
	}
}

func TestPhoneFetcherOverlappingRequests(t *testing.T) {
	req := &fakeRequester{delay: 10 * time.Millisecond}
	f := NewPhoneFetcher(req, NewStore(), "metric", fixedNow)

	for i := 0; i < 8; i++ {
		f.RequestRefresh()
	}
	f.Wait()

	if req.sent() != 8 {
		t.Errorf("expected 8 requests, got %d", req.sent())
	}
}

func TestPhoneFetcherHandleResponse(t *testing.T) {
	store := NewStore()
	f := NewPhoneFetcher(&fakeRequester{}, store, "metric", fixedNow)
	store.Fail(logic.WeatherDisconnected)

	data, _ := FormatReport(sampleReport())
	f.HandleResponse(data)

	snap := store.Snapshot()
	if !snap.Updated || snap.Error != logic.WeatherOK {
		t.Errorf("expected updated OK snapshot, got %+v", snap)
	}
	if snap.Temperature != 21 {
		t.Errorf("temperature: got %d, want 21", snap.Temperature)
	}
}

func TestPhoneFetcherHandleErrorResponse(t *testing.T) {
	store := NewStore()
	f := NewPhoneFetcher(&fakeRequester{}, store, "metric", fixedNow)

	f.HandleResponse([]byte(`{"weather":{"error":"network"}}`))
	if store.Snapshot().Error != logic.WeatherNetworkError {
		t.Errorf("expected NETWORK, got %s", store.Snapshot().Error)
	}
}

func TestPhoneFetcherHandleMalformedResponse(t *testing.T) {
	store := NewStore()
	f := NewPhoneFetcher(&fakeRequester{}, store, "metric", fixedNow)

	f.HandleResponse([]byte(`{{{`))
	if store.Snapshot().Error != logic.WeatherPhoneError {
		t.Errorf("expected PHONE, got %s", store.Snapshot().Error)
	}
}

func TestHTTPFetcherSuccess(t *testing.T) {
	r := sampleReport()
	p := &FakeProvider{Report: &r}
	store := NewStore()
	f := NewHTTPFetcher(p, store, time.Second)

	f.RequestRefresh()
	f.Wait()

	snap := store.Snapshot()
	if !snap.Updated || snap.Temperature != 21 {
		t.Errorf("expected updated snapshot, got %+v", snap)
	}
	if p.Calls != 1 {
		t.Errorf("expected 1 provider call, got %d", p.Calls)
	}
}

func TestHTTPFetcherFailure(t *testing.T) {
	p := &FakeProvider{Err: errors.New("boom")}
	store := NewStore()
	f := NewHTTPFetcher(p, store, time.Second)

	f.RequestRefresh()
	f.Wait()

	if store.Snapshot().Error != logic.WeatherNetworkError {
		t.Errorf("expected NETWORK, got %s", store.Snapshot().Error)
	}
}

func TestHTTPFetcherBreakerOpens(t *testing.T) {
	p := &FakeProvider{Err: errors.New("boom")}
	store := NewStore()
	f := NewHTTPFetcher(p, store, time.Second)

	for i := 0; i < 5; i++ {
		f.RequestRefresh()
		f.Wait()
	}

	if p.Calls != 3 {
		t.Errorf("expected provider to be called 3 times before the breaker opens, got %d", p.Calls)
	}
	if store.Snapshot().Error != logic.WeatherNetworkError {
		t.Errorf("expected NETWORK, got %s", store.Snapshot().Error)
	}
}

func TestHTTPFetcherDefaultTimeout(t *testing.T) {
	r := sampleReport()
	f := NewHTTPFetcher(&FakeProvider{Report: &r}, NewStore(), 0)
	if f.timeout != 30*time.Second {
		t.Errorf("timeout: got %v, want 30s", f.timeout)
	}
}

func TestFakeFetcher(t *testing.T) {
	f := NewFakeFetcher()
	called := 0
	f.OnRefresh = func() { called++ }
	f.RequestRefresh()
	f.RequestRefresh()
	if f.Requests() != 2 {
		t.Errorf("requests: got %d, want 2", f.Requests())
	}
	if called != 2 {
		t.Errorf("OnRefresh: got %d calls, want 2", called)
	}
}

func TestNewProvider(t *testing.T) {
	for _, name := range []string{"openmeteo", "openweather"} {
		p, err := NewProvider(name, ProviderConfig{})
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if p.Name() != name {
			t.Errorf("name: got %q, want %q", p.Name(), name)
		}
	}
	if _, err := NewProvider("phone", ProviderConfig{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
