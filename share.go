package oneshot

import "sync"

// EvictPolicy determines what happens to a shared cache entry when its
// reference count returns to zero.
type EvictPolicy int

const (
	// EvictOnZero drops the entry when the last consumer detaches. A
	// still-pending upstream subscription is detached as well, and the next
	// attach re-invokes the wrapped function.
	EvictOnZero EvictPolicy = iota

	// Retain keeps the entry indefinitely. A pending invocation runs to
	// resolution even with no consumers left, and the cached outcome is
	// served to every later consumer without re-invoking.
	Retain
)

type shareConfig struct {
	policy EvictPolicy
}

// ShareOption configures a [Shared].
type ShareOption func(*shareConfig)

// WithRetain keeps the cached outcome after the last consumer detaches,
// so late consumers replay it without a new invocation. The default is
// [EvictOnZero].
func WithRetain() ShareOption {
	return func(c *shareConfig) {
		c.policy = Retain
	}
}

// Shared lets many consumers share one underlying attach of an expensive
// source, with at most one outstanding invocation at a time. Create one
// via [Share].
//
// The first attach creates a cache entry and attaches upstream once. The
// outcome is cached and fanned out to every consumer attached so far and,
// depending on the eviction policy, to every consumer that attaches
// afterward. Consumers attaching while the invocation is in flight are
// queued and receive the outcome when it resolves.
type Shared[T any] struct {
	source Attachable[T]
	policy EvictPolicy

	mu    sync.Mutex
	entry *shareEntry[T]
}

type shareEntry[T any] struct {
	resolved bool
	hasValue bool
	val      T
	err      error

	// refs counts consumers whose subscriptions are not yet terminal.
	// Delivery of a terminal signal and a winning detach each decrement it
	// exactly once; the phase compare-and-set guarantees exactly one of
	// the two happens per consumer.
	refs     int
	waiters  []*shareWaiter[T]
	upstream *Subscription
}

type shareWaiter[T any] struct {
	obs Observer[T]
	sub *Subscription
}

// Share wraps src so that all consumers share a single underlying attach.
// Sharing is always explicit and scoped to the returned value; there is no
// package-level cache.
//
// Share panics if src is nil.
func Share[T any](src Attachable[T], opts ...ShareOption) *Shared[T] {
	if src == nil {
		panic("oneshot: Share requires a non-nil source")
	}

	cfg := shareConfig{policy: EvictOnZero}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Shared[T]{source: src, policy: cfg.policy}
}

// Attach begins a consumer's relationship with the shared source. The
// consumer receives the cached outcome immediately if one exists, is
// queued if an invocation is in flight, and otherwise triggers the single
// upstream attach.
func (s *Shared[T]) Attach(obs Observer[T]) *Subscription {
	s.mu.Lock()

	if e := s.entry; e != nil && e.resolved {
		hasValue, val, err := e.hasValue, e.val, e.err
		s.mu.Unlock()
		return replay(obs, hasValue, val, err)
	}

	first := s.entry == nil
	if first {
		s.entry = &shareEntry[T]{}
	}
	e := s.entry

	sub := &Subscription{}
	w := &shareWaiter[T]{obs: obs, sub: sub}
	sub.onDetach = func() { s.drop(e, w) }
	sub.transition(PhaseIdle, PhaseActive)

	e.refs++
	e.waiters = append(e.waiters, w)
	s.mu.Unlock()

	if first {
		// Attach upstream outside the lock: the wrapped function may
		// resolve synchronously, which re-enters resolve below.
		up := s.source.Attach(Observer[T]{
			OnValue: func(v T) {
				s.resolve(e, true, v, nil)
			},
			OnError: func(err error) {
				var zero T
				s.resolve(e, false, zero, err)
			},
			OnComplete: func() {
				// No-op after a value; covers sources that complete
				// without emitting.
				var zero T
				s.resolve(e, false, zero, nil)
			},
		})

		s.mu.Lock()
		e.upstream = up
		// Every consumer may have detached while the upstream attach was
		// in flight, evicting the entry before upstream was recorded.
		stale := s.entry != e && !e.resolved
		s.mu.Unlock()
		if stale {
			up.Detach()
		}
	}

	return sub
}

// resolve caches the single outcome and fans it out to the queued
// consumers. Only the first call per entry has effect.
func (s *Shared[T]) resolve(e *shareEntry[T], hasValue bool, val T, err error) {
	s.mu.Lock()
	if e.resolved {
		s.mu.Unlock()
		return
	}
	e.resolved = true
	e.hasValue = hasValue
	e.val = val
	e.err = err
	waiters := e.waiters
	e.waiters = nil
	s.mu.Unlock()

	for _, w := range waiters {
		if err != nil {
			if w.sub.transition(PhaseActive, PhaseErrored) {
				if w.obs.OnError != nil {
					w.obs.OnError(err)
				}
				s.release(e)
			}
			continue
		}
		if w.sub.transition(PhaseActive, PhaseCompleted) {
			if hasValue && w.obs.OnValue != nil {
				w.obs.OnValue(val)
			}
			if w.obs.OnComplete != nil {
				w.obs.OnComplete()
			}
			s.release(e)
		}
	}
}

// drop removes a consumer that detached before receiving the outcome.
func (s *Shared[T]) drop(e *shareEntry[T], w *shareWaiter[T]) {
	s.mu.Lock()
	for i, cur := range e.waiters {
		if cur == w {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			break
		}
	}
	e.refs--
	up := s.onZeroLocked(e)
	s.mu.Unlock()

	if up != nil {
		up.Detach()
	}
}

// release accounts for a consumer that reached a terminal phase through
// delivery rather than detach.
func (s *Shared[T]) release(e *shareEntry[T]) {
	s.mu.Lock()
	e.refs--
	up := s.onZeroLocked(e)
	s.mu.Unlock()

	if up != nil {
		up.Detach()
	}
}

// onZeroLocked applies the eviction policy once the reference count hits
// zero. It returns the upstream subscription to detach, if any; the caller
// detaches it after dropping the lock since detach may run an abort hook.
func (s *Shared[T]) onZeroLocked(e *shareEntry[T]) *Subscription {
	if e.refs > 0 || s.policy == Retain {
		return nil
	}
	if s.entry == e {
		s.entry = nil
	}
	if e.resolved {
		return nil
	}
	return e.upstream
}

// replay delivers a cached outcome to a late consumer.
func replay[T any](obs Observer[T], hasValue bool, val T, err error) *Subscription {
	sub := &Subscription{}
	sub.transition(PhaseIdle, PhaseActive)

	if err != nil {
		sub.transition(PhaseActive, PhaseErrored)
		if obs.OnError != nil {
			obs.OnError(err)
		}
		return sub
	}

	sub.transition(PhaseActive, PhaseCompleted)
	if hasValue && obs.OnValue != nil {
		obs.OnValue(val)
	}
	if obs.OnComplete != nil {
		obs.OnComplete()
	}
	return sub
}
