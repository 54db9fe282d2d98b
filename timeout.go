package oneshot

import (
	"errors"
	"time"
)

// ErrTimeout is delivered by [Timeout] sources when the deadline passes
// before the inner source resolves.
var ErrTimeout = errors.New("oneshot: source timed out")

// Timeout wraps src with a deadline. If the inner source resolves within d
// its outcome passes through unchanged; otherwise the subscription errors
// with [ErrTimeout] and the inner subscription is detached. As with any
// detach, the inner work is truly halted only when the inner source wires
// an abort hook.
//
// Timeout panics if d is not positive.
func Timeout[T any](src Attachable[T], d time.Duration) *Source[T] {
	if src == nil {
		panic("oneshot: Timeout requires a non-nil source")
	}
	if d <= 0 {
		panic("oneshot: Timeout requires d > 0")
	}

	out := &Source[T]{attach: func(obs Observer[T]) *Subscription {
		sub := &Subscription{}
		sub.transition(PhaseIdle, PhaseActive)

		inner := src.Attach(Observer[T]{
			OnValue: func(v T) {
				if sub.transition(PhaseActive, PhaseCompleted) {
					if obs.OnValue != nil {
						obs.OnValue(v)
					}
					if obs.OnComplete != nil {
						obs.OnComplete()
					}
				}
			},
			OnError: func(err error) {
				if sub.transition(PhaseActive, PhaseErrored) {
					if obs.OnError != nil {
						obs.OnError(err)
					}
				}
			},
			OnComplete: func() {
				// Reached only for sources that complete without a value;
				// the usual value-and-complete unit is handled above.
				if sub.transition(PhaseActive, PhaseCompleted) {
					if obs.OnComplete != nil {
						obs.OnComplete()
					}
				}
			},
		})

		if sub.Phase().Terminal() {
			// Resolved synchronously during attach; no timer needed.
			return sub
		}

		timer := time.AfterFunc(d, func() {
			if sub.transition(PhaseActive, PhaseErrored) {
				inner.Detach()
				if obs.OnError != nil {
					obs.OnError(ErrTimeout)
				}
			}
		})
		sub.onDetach = func() {
			timer.Stop()
			inner.Detach()
		}
		return sub
	}}

	if inner, ok := src.(*Source[T]); ok {
		out.supportsAbort = inner.supportsAbort
	}
	return out
}
