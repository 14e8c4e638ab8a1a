//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/watchface/internal/logic"
)

// RealVibrator is not available on non-Linux platforms.
type RealVibrator struct{}

// NewRealVibrator returns an error on non-Linux platforms.
func NewRealVibrator(chipName string, offset int) (*RealVibrator, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Enqueue is not implemented on non-Linux platforms.
func (r *RealVibrator) Enqueue(p logic.VibePattern) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealVibrator) Close() error {
	return nil
}
