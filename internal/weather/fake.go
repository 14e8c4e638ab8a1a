package weather

import (
	"context"
	"sync"
)

// FakeFetcher counts refresh requests for test assertions.
type FakeFetcher struct {
	mu       sync.Mutex
	requests int

	// OnRefresh, if set, runs synchronously inside RequestRefresh.
	OnRefresh func()
}

// NewFakeFetcher creates a FakeFetcher.
func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{}
}

// RequestRefresh records the request.
func (f *FakeFetcher) RequestRefresh() {
	f.mu.Lock()
	f.requests++
	f.mu.Unlock()
	if f.OnRefresh != nil {
		f.OnRefresh()
	}
}

// Requests returns the number of refresh requests so far.
func (f *FakeFetcher) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// FakeProvider returns a scripted report or error.
type FakeProvider struct {
	mu     sync.Mutex
	Report *Report
	Err    error
	Calls  int
}

// Name implements Provider.
func (p *FakeProvider) Name() string {
	return "fake"
}

// Get implements Provider.
func (p *FakeProvider) Get(ctx context.Context) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls++
	if p.Err != nil {
		return nil, p.Err
	}
	r := *p.Report
	return &r, nil
}
