package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

const actionQueueSize = 256

// Effect runs after an action has been reduced. Effects execute on the
// store's writer goroutine, in registration order.
type Effect func(prev, next State, a Action)

// Option configures a Store
type Option func(*Store)

// WithEffect registers an effect
func WithEffect(e Effect) Option {
	return func(s *Store) {
		s.effects = append(s.effects, e)
	}
}

// WithLogger sets the logger used for action tracing
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// Store owns the state tree. All writes go through a single goroutine that
// consumes the action queue, so concurrent dispatches are applied in
// queue order and the last write wins.
type Store struct {
	mu    sync.RWMutex
	state State

	queue   chan Action
	effects []Effect
	log     zerolog.Logger

	subsMu  sync.Mutex
	subs    map[int]chan State
	nextSub int

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
	stopped   chan struct{}
}

// barrier is queued by Sync and acknowledged once everything before it
// has been reduced
type barrier struct {
	ack chan struct{}
}

func (barrier) ActionType() string { return "@@BARRIER" }

// New creates a store holding initial. Call Start before dispatching.
func New(initial State, opts ...Option) *Store {
	s := &Store{
		state:   initial,
		queue:   make(chan Action, actionQueueSize),
		log:     zerolog.Nop(),
		subs:    make(map[int]chan State),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the writer goroutine. It stops when ctx is cancelled or
// Close is called.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.run(ctx)
	})
}

func (s *Store) run(ctx context.Context) {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case <-s.done:
			return
		case a := <-s.queue:
			s.apply(a)
		}
	}
}

func (s *Store) apply(a Action) {
	if b, ok := a.(barrier); ok {
		close(b.ack)
		return
	}

	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	s.mu.Unlock()

	s.log.Debug().Str("action", a.ActionType()).Msg("reduced")

	for _, e := range s.effects {
		e(prev, next, a)
	}
	s.publish(next)
}

// Dispatch enqueues a. It is safe to call from any goroutine; after Close
// the action is dropped.
func (s *Store) Dispatch(a Action) {
	select {
	case s.queue <- a:
	case <-s.done:
	}
}

// Sync blocks until every action dispatched before the call has been
// reduced, or ctx ends.
func (s *Store) Sync(ctx context.Context) error {
	b := barrier{ack: make(chan struct{})}
	select {
	case s.queue <- b:
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-b.ack:
		return nil
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current snapshot
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe returns a channel receiving the latest state after each
// reduction. Slow readers only ever see the most recent state. The returned
// function unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
			s.subsMu.Unlock()
		})
	}
}

func (s *Store) publish(next State) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- next:
			continue
		default:
		}
		// drop the stale snapshot and retry once
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- next:
		default:
		}
	}
}

// Close stops the writer goroutine and closes all subscriptions.
// Actions still queued are discarded; call Sync first to apply them.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.startOnce.Do(func() {
		close(s.stopped)
	})
	<-s.stopped
	s.closeSubscribers()
}

func (s *Store) shutdown() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Store) closeSubscribers() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}
