// Package recorder turns recognized gestures into backend requests without
// ever blocking the caller. Requests are queued and published by a single
// worker goroutine.
package recorder

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/gesture-sensor/internal/gesture"
	"github.com/sweeney/gesture-sensor/internal/mqtt"
)

// DefaultQueueSize is the number of pending messages held for the worker.
const DefaultQueueSize = 16

// message is one queued publish; exactly one field is set.
type message struct {
	clip    *mqtt.ClipRequest
	lockout *mqtt.LockoutCommand
}

// Recorder implements gesture.Action and gesture.Lockout.
type Recorder struct {
	pub   mqtt.Publisher
	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	queue   chan message
	closed  bool
	dropped int
	sent    int

	done chan struct{}
}

// New creates a recorder publishing through pub.
func New(pub mqtt.Publisher, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Recorder{
		pub:   pub,
		now:   time.Now,
		newID: uuid.NewString,
		queue: make(chan message, queueSize),
		done:  make(chan struct{}),
	}
}

// TriggerClip queues a clip request for t.
func (r *Recorder) TriggerClip(t gesture.Trigger) {
	req := mqtt.ClipRequest{ID: r.newID(), Trigger: t}
	r.enqueue(message{clip: &req})
}

// DisableReserved queues a lockout DISABLE command.
func (r *Recorder) DisableReserved() {
	r.enqueue(message{lockout: &mqtt.LockoutCommand{Timestamp: r.now(), Action: mqtt.LockoutDisable}})
}

// EnableReserved queues a lockout ENABLE command. Called from a timer
// goroutine, possibly after Close.
func (r *Recorder) EnableReserved() {
	r.enqueue(message{lockout: &mqtt.LockoutCommand{Timestamp: r.now(), Action: mqtt.LockoutEnable}})
}

func (r *Recorder) enqueue(m message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.dropped++
		return
	}
	select {
	case r.queue <- m:
	default:
		r.dropped++
		log.Printf("recorder: queue full, dropping %s", m.describe())
	}
}

// Run publishes queued messages until the queue is closed by Close or ctx
// is cancelled. Publish errors are logged and not retried.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-r.queue:
			if !ok {
				return
			}
			r.publish(m)
		}
	}
}

func (r *Recorder) publish(m message) {
	var err error
	switch {
	case m.clip != nil:
		err = r.pub.PublishClip(*m.clip)
	case m.lockout != nil:
		err = r.pub.PublishLockout(*m.lockout)
	}
	if err != nil {
		log.Printf("recorder: publish %s: %v", m.describe(), err)
		return
	}

	r.mu.Lock()
	r.sent++
	r.mu.Unlock()
	if m.clip != nil {
		log.Printf("recorder: requested clip %s (%s)", m.clip.ID, m.describe())
	}
}

// Close stops accepting messages and waits for the worker to publish what
// is already queued. Run must have been started.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

// Dropped returns the number of messages discarded because the queue was
// full or the recorder was closed.
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Sent returns the number of messages published successfully.
func (r *Recorder) Sent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

func (m message) describe() string {
	switch {
	case m.clip != nil:
		t := m.clip.Trigger
		if t.Duration == 0 {
			return string(t.Gesture) + " replay save"
		}
		return string(t.Gesture) + " " + t.Duration.String() + " clip"
	case m.lockout != nil:
		return "lockout " + string(m.lockout.Action)
	}
	return "empty message"
}
