//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// queueDepth bounds pending patterns; the link-lost pattern takes seconds.
const queueDepth = 4

// RealVibrator drives a motor on a GPIO output line using the Linux GPIO
// character device.
type RealVibrator struct {
	*Player
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealVibrator requests offset on chip as an output, initially off.
func NewRealVibrator(chipName string, offset int) (*RealVibrator, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request motor line %d: %w", offset, err)
	}

	return &RealVibrator{
		Player: NewPlayer(line, queueDepth, nil),
		chip:   chip,
		line:   line,
	}, nil
}

// Close waits for queued patterns, then releases GPIO resources.
// The line is reconfigured to input with pull-down (matching Pi boot
// defaults) so the motor stays off across reboots.
func (r *RealVibrator) Close() error {
	var errs []error

	r.Player.Close()

	if r.line != nil {
		if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure motor line: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close motor line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
