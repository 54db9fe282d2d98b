package oneshot

// EventKind classifies subscription lifecycle events reported to hooks
// registered via [WithOnEvent].
type EventKind int

const (
	// EventAttached is emitted when a consumer attaches, just before the
	// wrapped function is invoked.
	EventAttached EventKind = iota

	// EventEmitted is emitted when a value is delivered to the consumer.
	EventEmitted

	// EventCompleted is emitted when completion is delivered, immediately
	// after the value in the same turn.
	EventCompleted

	// EventCancelled is emitted when a consumer detaches an active
	// subscription.
	EventCancelled

	// EventErrored is emitted when an error is delivered to the consumer.
	EventErrored

	// EventIgnored is emitted when a late or duplicate callback invocation
	// is dropped after the subscription is already terminal. This is the
	// one-shot guarantee at work, not a fault.
	EventIgnored
)

func (k EventKind) String() string {
	switch k {
	case EventAttached:
		return "attached"
	case EventEmitted:
		return "emitted"
	case EventCompleted:
		return "completed"
	case EventCancelled:
		return "cancelled"
	case EventErrored:
		return "errored"
	case EventIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Event is passed to hooks registered via [WithOnEvent].
type Event struct {
	Kind EventKind

	// Err is set for EventErrored and nil otherwise.
	Err error
}

type config[A any] struct {
	abort   func(A)
	onEvent func(Event)
}

// Option configures a [Factory].
type Option[A any] func(*config[A])

func defaultConfig[A any]() config[A] {
	return config[A]{}
}

// WithAbort wires a real cancellation hook into sources built by the
// factory. When a consumer detaches an active subscription, the hook is
// invoked with the leading arguments of that attach, giving the caller a
// place to halt the wrapped function's underlying work.
//
// Sources built with an abort hook report it via [Source.SupportsAbort].
// Without one, detaching only suppresses delivery; the underlying work
// runs to completion unobserved.
//
// WithAbort panics if abort is nil.
func WithAbort[A any](abort func(args A)) Option[A] {
	return func(c *config[A]) {
		if abort == nil {
			panic("oneshot: abort hook must not be nil")
		}
		c.abort = abort
	}
}

// WithOnEvent registers a hook invoked for every subscription lifecycle
// event produced by sources of the factory. The hook runs synchronously in
// whichever turn produced the event, so it must be fast and must not block.
//
// WithOnEvent panics if fn is nil.
func WithOnEvent[A any](fn func(Event)) Option[A] {
	return func(c *config[A]) {
		if fn == nil {
			panic("oneshot: event hook must not be nil")
		}
		c.onEvent = fn
	}
}
