package mqtt

import "sync"

// FakePublisher records published messages for test assertions.
// Safe for concurrent use so it can sit behind the recorder worker.
type FakePublisher struct {
	mu sync.Mutex

	// Clips contains all clip requests that were published.
	Clips []ClipRequest

	// ClipPayloads contains the JSON payloads for clip requests.
	ClipPayloads [][]byte

	// Lockouts contains all lockout commands that were published.
	Lockouts []LockoutCommand

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishClip and PublishLockout.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishClip records the clip request.
func (f *FakePublisher) PublishClip(req ClipRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatClipPayload(req)
	if err != nil {
		return err
	}
	f.Clips = append(f.Clips, req)
	f.ClipPayloads = append(f.ClipPayloads, payload)

	return nil
}

// PublishLockout records the lockout command.
func (f *FakePublisher) PublishLockout(cmd LockoutCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Lockouts = append(f.Lockouts, cmd)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// ClipCount returns the number of recorded clip requests.
func (f *FakePublisher) ClipCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Clips)
}

// Reset clears recorded messages.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Clips = nil
	f.ClipPayloads = nil
	f.Lockouts = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
