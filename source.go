package oneshot

// Observer receives the three signals a one-shot source can produce.
// Nil fields are skipped, so consumers wire only the signals they care
// about.
//
// A source delivers at most one of the following per attach: a value
// immediately followed by completion, or a single error. The callbacks are
// never invoked concurrently with each other.
type Observer[T any] struct {
	OnValue    func(T)
	OnError    func(error)
	OnComplete func()
}

// Attachable is the consumer-facing surface shared by [Source] and
// [Shared]. Adapters like [Await], [Chan], [Timeout], and [Share] accept
// it so they compose over both.
type Attachable[T any] interface {
	Attach(Observer[T]) *Subscription
}

// Source is a cold one-shot source: it performs no work until a consumer
// attaches, emits at most one value, and then completes. Create sources
// via [Factory.Source], [Resolved], [Failed], or [Timeout].
type Source[T any] struct {
	attach        func(Observer[T]) *Subscription
	supportsAbort bool
}

// Attach begins a consumer's relationship with the source. Attaching
// invokes the underlying work and returns a detach handle. Each attach is
// independent: it creates a fresh subscription and, for bridge sources,
// a fresh invocation of the wrapped function.
func (s *Source[T]) Attach(obs Observer[T]) *Subscription {
	return s.attach(obs)
}

// SupportsAbort reports whether detaching this source propagates a real
// cancellation to the underlying work. Without it, [Subscription.Detach]
// only suppresses delivery; the work itself runs on unobserved.
func (s *Source[T]) SupportsAbort() bool {
	return s.supportsAbort
}

// Resolved returns a source that synchronously emits v and completes on
// every attach.
func Resolved[T any](v T) *Source[T] {
	return &Source[T]{attach: func(obs Observer[T]) *Subscription {
		sub := &Subscription{}
		sub.transition(PhaseIdle, PhaseActive)
		sub.transition(PhaseActive, PhaseCompleted)
		if obs.OnValue != nil {
			obs.OnValue(v)
		}
		if obs.OnComplete != nil {
			obs.OnComplete()
		}
		return sub
	}}
}

// Failed returns a source that synchronously delivers err on every attach.
func Failed[T any](err error) *Source[T] {
	return &Source[T]{attach: func(obs Observer[T]) *Subscription {
		sub := &Subscription{}
		sub.transition(PhaseIdle, PhaseActive)
		sub.transition(PhaseActive, PhaseErrored)
		if obs.OnError != nil {
			obs.OnError(err)
		}
		return sub
	}}
}
