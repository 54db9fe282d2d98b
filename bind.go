package oneshot

import "sync/atomic"

// Callback is the completion callback the bridge hands to a wrapped legacy
// function. The wrapped function may invoke it any number of times, but
// only the first invocation per attach has any effect.
type Callback func(results ...any)

// Func is the trailing-callback shape the bridge wraps: a typed bundle of
// leading arguments, then a completion callback. Legacy APIs with several
// leading arguments bundle them in a struct; APIs with none use struct{}.
type Func[A any] func(args A, done Callback)

// Shaper transforms the raw callback arguments into a typed emission.
// Returning an error fails the subscription instead of emitting.
type Shaper[T any] func(results ...any) (T, error)

// Factory builds cold one-shot sources around a single wrapped function.
// Create one via [Bind] or [BindWith]. Construction performs no side
// effects; factories are reusable and safe for concurrent use.
type Factory[A, T any] struct {
	fn    Func[A]
	shape Shaper[T]
	cfg   config[A]

	invocations atomic.Int64
}

// Bind wraps a trailing-callback function into a factory of cold one-shot
// sources. The emission uses the default shaping: a callback invoked with
// exactly one argument emits that argument; zero or several arguments emit
// the ordered []any sequence.
//
// Bind never invokes fn; only [Source.Attach] does.
// Bind panics if fn is nil.
func Bind[A any](fn Func[A], opts ...Option[A]) *Factory[A, any] {
	return BindWith(fn, sequenceShape, opts...)
}

// BindWith is [Bind] with an explicit result-shaping function applied to
// the callback's arguments to produce a typed emission.
//
// BindWith panics if fn or shape is nil.
func BindWith[A, T any](fn Func[A], shape Shaper[T], opts ...Option[A]) *Factory[A, T] {
	if fn == nil {
		panic("oneshot: Bind requires a non-nil function")
	}
	if shape == nil {
		panic("oneshot: BindWith requires a non-nil shaper")
	}

	cfg := defaultConfig[A]()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Factory[A, T]{fn: fn, shape: shape, cfg: cfg}
}

// sequenceShape is the default emission shaping used by [Bind].
func sequenceShape(results ...any) (any, error) {
	if len(results) == 1 {
		return results[0], nil
	}
	out := make([]any, len(results))
	copy(out, results)
	return out, nil
}

// Source returns a cold source for the given leading arguments. No work
// happens until a consumer attaches; the source can be attached any number
// of times, each attach invoking the wrapped function independently.
func (f *Factory[A, T]) Source(args A) *Source[T] {
	return &Source[T]{
		supportsAbort: f.cfg.abort != nil,
		attach: func(obs Observer[T]) *Subscription {
			return f.attach(args, obs)
		},
	}
}

// Invocations returns the total number of times the wrapped function has
// been invoked across all sources built by this factory.
func (f *Factory[A, T]) Invocations() int64 {
	return f.invocations.Load()
}

func (f *Factory[A, T]) attach(args A, obs Observer[T]) *Subscription {
	sub := &Subscription{}
	sub.onDetach = func() {
		f.emit(Event{Kind: EventCancelled})
		if f.cfg.abort != nil {
			f.cfg.abort(args)
		}
	}

	sub.transition(PhaseIdle, PhaseActive)
	f.emit(Event{Kind: EventAttached})

	done := func(results ...any) {
		f.deliver(sub, obs, results)
	}

	f.invocations.Add(1)
	if err := f.invoke(args, done); err != nil {
		// The wrapped function panicked before returning control. If the
		// callback already resolved the subscription, the one-shot rule
		// applies and the panic is dropped like any late signal.
		if sub.transition(PhaseActive, PhaseErrored) {
			f.emit(Event{Kind: EventErrored, Err: err})
			if obs.OnError != nil {
				obs.OnError(err)
			}
		} else {
			f.emit(Event{Kind: EventIgnored})
		}
	}
	return sub
}

// invoke runs the wrapped function with panic recovery.
func (f *Factory[A, T]) invoke(args A, done Callback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newInvokeError(r)
		}
	}()
	f.fn(args, done)
	return nil
}

// deliver handles one completion-callback invocation. Only the first
// invocation to win the transition out of PhaseActive is observable;
// duplicates, late invocations, and invocations racing a detach are
// silently dropped.
func (f *Factory[A, T]) deliver(sub *Subscription, obs Observer[T], results []any) {
	if sub.Phase() != PhaseActive {
		f.emit(Event{Kind: EventIgnored})
		return
	}

	v, err := f.shape(results...)
	if err != nil {
		if !sub.transition(PhaseActive, PhaseErrored) {
			f.emit(Event{Kind: EventIgnored})
			return
		}
		f.emit(Event{Kind: EventErrored, Err: err})
		if obs.OnError != nil {
			obs.OnError(err)
		}
		return
	}

	// Transition before delivering so a detach from inside OnValue cannot
	// split the value from its completion. The emission and the completion
	// are one unit, delivered in the same turn.
	if !sub.transition(PhaseActive, PhaseCompleted) {
		f.emit(Event{Kind: EventIgnored})
		return
	}

	f.emit(Event{Kind: EventEmitted})
	if obs.OnValue != nil {
		obs.OnValue(v)
	}
	f.emit(Event{Kind: EventCompleted})
	if obs.OnComplete != nil {
		obs.OnComplete()
	}
}

func (f *Factory[A, T]) emit(e Event) {
	if f.cfg.onEvent != nil {
		f.cfg.onEvent(e)
	}
}
