//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

// RealReader reads buttons from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip     *gpiocdev.Chip
	lines    []*gpiocdev.Line
	bindings []binding
}

// NewRealReader requests one input line per button on the named chip.
func NewRealReader(chipName string, pins map[gesture.Button]int) (*RealReader, error) {
	if chipName == "" {
		chipName = DefaultChip
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{chip: chip, bindings: sortedBindings(pins)}

	// Pull-up so an idle button reads 1 and a pressed one reads 0.
	for _, b := range r.bindings {
		line, err := chip.RequestLine(b.offset, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", b.button, b.offset, err)
		}
		r.lines = append(r.lines, line)
	}

	return r, nil
}

// Read returns a single-controller batch.
func (r *RealReader) Read() ([]gesture.Snapshot, error) {
	raw := make([]int, len(r.lines))
	for i, line := range r.lines {
		v, err := line.Value()
		if err != nil {
			return nil, fmt.Errorf("read %s pin: %w", r.bindings[i].button, err)
		}
		raw[i] = v
	}
	return []gesture.Snapshot{snapshotFromValues(r.bindings, raw)}, nil
}

// Close releases GPIO resources.
// Reconfigures lines to input with pull-down (matching Pi boot defaults)
// before closing to leave a clean state for shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error

	for i, line := range r.lines {
		name := r.bindings[i].button
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", name, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}
	r.lines = nil
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}
