// Package oneshot bridges legacy trailing-callback APIs into cold,
// cancellable, single-emission sources.
//
// Many older APIs follow the shape "call a function, get notified once via
// a callback". oneshot wraps that shape into a lazily-started source that
// emits at most one value, completes immediately after it, and can be
// detached before resolution.
//
// # Binding
//
// [Bind] wraps a trailing-callback function into a [Factory] of cold
// sources. Construction performs no work; the wrapped function runs only
// when a consumer attaches:
//
//	lookup := oneshot.Bind(func(host string, done oneshot.Callback) {
//	    go func() {
//	        addrs, err := resolver.Lookup(host)
//	        done(addrs, err)
//	    }()
//	})
//	sub := lookup.Source("example.com").Attach(oneshot.Observer[any]{
//	    OnValue: func(v any) { fmt.Println("resolved:", v) },
//	})
//
// A callback invoked with exactly one argument emits that argument; zero
// or several arguments emit the ordered []any sequence. [BindWith] takes a
// [Shaper] to produce a typed emission instead:
//
//	sum := oneshot.BindWith(fn, func(results ...any) (int, error) {
//	    return results[0].(int) + results[1].(int), nil
//	})
//
// # Attaching and Detaching
//
// Each attach owns an independent [Subscription] that moves through
// [Phase] states: idle, active, then exactly one of completed, cancelled,
// or errored. Only the first completion-callback invocation is observable;
// duplicates and late invocations from misbehaving APIs are silently
// dropped. A value is always followed by completion in the same turn.
//
// [Subscription.Detach] suppresses delivery permanently. It does not halt
// the underlying work unless the factory wires a real cancellation hook
// via [WithAbort]; [Source.SupportsAbort] reports the capability. The race
// between a detach and the completion callback is resolved by an atomic
// compare-and-set on the phase, so exactly one of the two wins.
//
// A wrapped function that panics during attach surfaces a [*InvokeError]
// to that consumer only; a later attach re-invokes the function fresh.
//
// # Sharing
//
// [Share] lets many consumers share one underlying invocation. The first
// attach triggers the upstream attach; consumers arriving while it is in
// flight are queued, and the single outcome is cached and fanned out. The
// eviction policy is chosen at construction: [EvictOnZero] (default) drops
// the cache when the last consumer detaches, [WithRetain] keeps the
// outcome indefinitely for late consumers.
//
// # Adapters
//
// [Await] blocks until a source resolves, honoring context cancellation.
// [Chan] bridges a source to a value/error channel pair. [Timeout] layers
// a deadline over any source, erroring with [ErrTimeout]. [Resolved] and
// [Failed] build pre-settled sources for composition and tests.
//
// # Observability
//
// [WithOnEvent] registers a hook receiving an [Event] for every
// subscription state change (attached, emitted, completed, cancelled,
// errored, ignored). [Factory.Invocations] counts invocations of the
// wrapped function.
//
// # Concurrency
//
// All delivery happens synchronously in whichever turn the completion
// callback runs. Subscription state is a single atomic word, so the
// one-emission guarantee holds even when the legacy API invokes its
// callback from several goroutines at once.
package oneshot
