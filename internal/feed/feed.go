// Package feed samples controller button state and delivers one
// gesture.Batch per tick to its subscribers.
package feed

import (
	"sync"
	"time"

	"github.com/sweeney/gesture-sensor/internal/gesture"
)

// Source reads the current button state of every connected controller.
type Source interface {
	// Read returns one snapshot per controller in index order. A non-nil
	// error with snapshots means some controllers could not be read and
	// report no buttons pressed.
	Read() ([]gesture.Snapshot, error)

	// Close releases device resources.
	Close() error
}

// Feed polls a Source and fans each batch out to subscribers in the order
// they subscribed. Delivery is synchronous: Poll returns after every
// callback has returned.
type Feed struct {
	src Source

	mu          sync.Mutex
	subs        []*Subscription
	controllers int
}

// New creates a Feed over src.
func New(src Source) *Feed {
	return &Feed{src: src}
}

// Subscription is a registered callback.
type Subscription struct {
	mu     sync.Mutex
	cb     func(gesture.Batch)
	feed   *Feed
	closed bool
}

// Subscribe registers cb for every future batch.
func (f *Feed) Subscribe(cb func(gesture.Batch)) gesture.Subscription {
	s := &Subscription{cb: cb, feed: f}
	f.mu.Lock()
	f.subs = append(f.subs, s)
	f.mu.Unlock()
	return s
}

// Unsubscribe stops delivery. When it returns, no callback for s is running
// and none will start. It must not be called from inside the callback.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.feed.remove(s)
}

func (s *Subscription) deliver(b gesture.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cb(b)
}

func (f *Feed) remove(s *Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, sub := range f.subs {
		if sub == s {
			f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
			return
		}
	}
}

// Poll reads the source once and delivers the batch stamped with now.
// On a read error without snapshots nothing is delivered.
func (f *Feed) Poll(now time.Time) error {
	snaps, err := f.src.Read()
	if snaps == nil {
		return err
	}

	f.mu.Lock()
	f.controllers = len(snaps)
	subs := make([]*Subscription, len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()

	b := gesture.Batch{Time: now, Snapshots: snaps}
	for _, s := range subs {
		s.deliver(b)
	}
	return err
}

// Controllers returns the number of controllers in the last delivered batch.
func (f *Feed) Controllers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.controllers
}

// Subscribers returns the number of active subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close closes the underlying source.
func (f *Feed) Close() error {
	return f.src.Close()
}
