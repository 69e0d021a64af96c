package feed

import (
	"errors"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

// FakeSource is a test double that returns scripted batches.
type FakeSource struct {
	// Batches contains scripted per-controller button masks.
	// Each call to Read() consumes the next entry.
	Batches [][]uint64

	// index tracks current position in Batches
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeSource creates a FakeSource with the given batches.
func NewFakeSource(batches [][]uint64) *FakeSource {
	return &FakeSource{Batches: batches}
}

// Read returns the next scripted batch.
// If batches are exhausted, returns the last batch repeatedly.
func (f *FakeSource) Read() ([]gesture.Snapshot, error) {
	if f.ReadError != nil {
		return nil, f.ReadError
	}

	if len(f.Batches) == 0 {
		return nil, errors.New("no batches configured")
	}

	masks := f.Batches[f.index]
	if f.index < len(f.Batches)-1 {
		f.index++
	}

	snaps := make([]gesture.Snapshot, len(masks))
	for i, m := range masks {
		snaps[i] = gesture.Snapshot{Buttons: m}
	}
	return snaps, nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the source to the beginning of batches.
func (f *FakeSource) Reset() {
	f.index = 0
	f.Closed = false
}
