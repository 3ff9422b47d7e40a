// Package broadcast distributes samples to any number of subscribers without
// ever blocking the publisher.
//
// Each subscription owns a bounded ring buffer. When a subscriber falls
// behind, the oldest unread samples are overwritten and counted as missed, so
// a subscriber observes an ordered subsequence of the published samples,
// possibly with gaps, never duplicates.
package broadcast

import (
	"context"
	"errors"
	"sync"

	"github.com/puRe1337/water-level/pkg/sample"
)

// DefaultBacklog is the ring buffer size used when New is given a
// non-positive backlog.
const DefaultBacklog = 16

// ErrClosed is returned by Recv once the subscription or the broadcaster has
// been closed and the backlog is drained.
var ErrClosed = errors.New("broadcast: closed")

// Broadcaster fans samples out to subscriptions.
type Broadcaster struct {
	backlog int

	mu        sync.Mutex
	subs      map[*Subscription]struct{}
	published uint64
	closed    bool
}

// New creates a Broadcaster whose subscriptions buffer up to backlog samples.
func New(backlog int) *Broadcaster {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}

	return &Broadcaster{
		backlog: backlog,
		subs:    make(map[*Subscription]struct{}),
	}
}

// Publish delivers s to every current subscription. It never blocks on a
// slow subscriber.
func (b *Broadcaster) Publish(s sample.Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.published++
	seq := b.published
	for sub := range b.subs {
		sub.push(seq, s)
	}
}

// Subscribe returns a subscription receiving every sample published from now
// on. Subscribing to a closed Broadcaster returns a closed subscription.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := &Subscription{
		b:      b,
		ring:   make([]entry, b.backlog),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub.shutdown()
		return sub
	}
	b.subs[sub] = struct{}{}

	return sub
}

// Len returns the number of active subscriptions.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Published returns the number of samples published so far.
func (b *Broadcaster) Published() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published
}

// Close shuts down the broadcaster and all subscriptions.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for sub := range b.subs {
		sub.shutdown()
	}
	b.subs = nil
}

func (b *Broadcaster) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, sub)
}

type entry struct {
	seq    uint64
	sample sample.Sample
}

// Subscription is one subscriber's view of a Broadcaster.
type Subscription struct {
	b *Broadcaster

	mu     sync.Mutex
	ring   []entry
	head   int // index of the oldest unread entry
	n      int // number of unread entries
	last   uint64
	missed uint64
	closed bool

	notify chan struct{}
	done   chan struct{}
}

// push appends an entry, overwriting the oldest one when the ring is full.
func (s *Subscription) push(seq uint64, smp sample.Sample) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if s.n == len(s.ring) {
		s.ring[s.head] = entry{}
		s.head = (s.head + 1) % len(s.ring)
		s.n--
		s.missed++
	}
	s.ring[(s.head+s.n)%len(s.ring)] = entry{seq: seq, sample: smp}
	s.n++
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// tryRecv returns the oldest unread sample without blocking.
func (s *Subscription) tryRecv() (sample.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pop()
}

func (s *Subscription) pop() (sample.Sample, bool) {
	if s.n == 0 {
		return sample.Sample{}, false
	}

	e := s.ring[s.head]
	s.ring[s.head] = entry{}
	s.head = (s.head + 1) % len(s.ring)
	s.n--
	s.last = e.seq

	return e.sample, true
}

// Recv blocks until the next sample is available, ctx is done or the
// subscription is closed.
func (s *Subscription) Recv(ctx context.Context) (sample.Sample, error) {
	for {
		s.mu.Lock()
		smp, ok := s.pop()
		closed := s.closed
		s.mu.Unlock()

		switch {
		case ok:
			return smp, nil
		case closed:
			return sample.Sample{}, ErrClosed
		}

		select {
		case <-s.notify:
		case <-s.done:
		case <-ctx.Done():
			return sample.Sample{}, ctx.Err()
		}
	}
}

// Missed returns how many samples were dropped because the backlog was full.
func (s *Subscription) Missed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.missed
}

// Seq returns the sequence number of the last received sample (0 if none).
func (s *Subscription) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Close detaches the subscription from its broadcaster.
// Samples still buffered can be drained with Recv before it returns ErrClosed.
func (s *Subscription) Close() {
	s.b.unsubscribe(s)
	s.shutdown()
}

func (s *Subscription) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}
