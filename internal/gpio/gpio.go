// Package gpio drives the vibration motor with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

// Vibrator plays haptic patterns.
type Vibrator interface {
	// Enqueue schedules a pattern and returns immediately.
	Enqueue(p logic.VibePattern) error

	// Close stops playback and releases GPIO resources.
	Close() error
}

// Defaults for the motor line (BCM numbering).
const (
	DefaultChip = "gpiochip0"
	DefaultLine = 18
)

var (
	ErrQueueFull = errors.New("gpio: vibration queue full")
	ErrClosed    = errors.New("gpio: vibrator closed")
)

// Line is a single output line: 1 drives the motor, 0 stops it.
type Line interface {
	SetValue(value int) error
}

// Player plays queued patterns on a line from its own goroutine.
// Segments alternate on and off, starting with on. The line is left off
// after every pattern.
type Player struct {
	line  Line
	sleep func(time.Duration)
	queue chan logic.VibePattern
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewPlayer starts a player with room for depth pending patterns.
// sleep is time.Sleep outside tests.
func NewPlayer(line Line, depth int, sleep func(time.Duration)) *Player {
	if sleep == nil {
		sleep = time.Sleep
	}
	p := &Player{
		line:  line,
		sleep: sleep,
		queue: make(chan logic.VibePattern, depth),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

// Enqueue implements Vibrator. It never blocks.
func (p *Player) Enqueue(pat logic.VibePattern) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- pat:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close finishes queued patterns, then stops the goroutine.
func (p *Player) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
	return nil
}

func (p *Player) run() {
	defer close(p.done)
	for pat := range p.queue {
		p.play(pat)
	}
}

func (p *Player) play(pat logic.VibePattern) {
	for i, seg := range pat {
		v := 0
		if i%2 == 0 {
			v = 1
		}
		if err := p.line.SetValue(v); err != nil {
			log.Printf("gpio: set motor line: %v", err)
			break
		}
		p.sleep(seg)
	}
	if err := p.line.SetValue(0); err != nil {
		log.Printf("gpio: stop motor: %v", err)
	}
}

// NopVibrator is used when haptics are disabled. It only logs.
type NopVibrator struct{}

// Enqueue logs the pattern and drops it.
func (NopVibrator) Enqueue(p logic.VibePattern) error {
	log.Printf("gpio: haptics disabled, skipping %d segment pattern (%v)", len(p), p.Total())
	return nil
}

// Close does nothing.
func (NopVibrator) Close() error {
	return nil
}
