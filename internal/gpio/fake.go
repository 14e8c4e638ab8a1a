package gpio

import (
	"sync"

	"github.com/sweeney/watchface/internal/logic"
)

// FakeVibrator is a test double that records enqueued patterns.
type FakeVibrator struct {
	mu       sync.Mutex
	patterns []logic.VibePattern

	// EnqueueError, if set, will be returned by Enqueue.
	EnqueueError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeVibrator creates a FakeVibrator.
func NewFakeVibrator() *FakeVibrator {
	return &FakeVibrator{}
}

// Enqueue records the pattern.
func (f *FakeVibrator) Enqueue(p logic.VibePattern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EnqueueError != nil {
		return f.EnqueueError
	}
	f.patterns = append(f.patterns, p)
	return nil
}

// Patterns returns a copy of the recorded patterns.
func (f *FakeVibrator) Patterns() []logic.VibePattern {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]logic.VibePattern(nil), f.patterns...)
}

// Close marks the vibrator as closed.
func (f *FakeVibrator) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// FakeLine records every value written to it.
type FakeLine struct {
	mu     sync.Mutex
	values []int

	// SetError, if set, will be returned by SetValue.
	SetError error
}

// SetValue records the value.
func (f *FakeLine) SetValue(v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.values = append(f.values, v)
	return nil
}

// Values returns a copy of the written values.
func (f *FakeLine) Values() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.values...)
}
