package oneshot

import "sync/atomic"

// Phase describes the lifecycle state of a single attach.
//
// Every subscription moves PhaseIdle → PhaseActive exactly once, then
// PhaseActive → one of {PhaseCompleted, PhaseCancelled, PhaseErrored}
// exactly once. Terminal phases never transition again.
type Phase int32

const (
	// PhaseIdle is the initial state of a freshly created subscription.
	PhaseIdle Phase = iota

	// PhaseActive means the wrapped function has been invoked and the
	// subscription is waiting for its completion callback.
	PhaseActive

	// PhaseCompleted means the single emission and completion were delivered.
	PhaseCompleted

	// PhaseCancelled means the consumer detached before resolution.
	PhaseCancelled

	// PhaseErrored means an error was delivered instead of an emission.
	PhaseErrored
)

// Terminal reports whether p is a final state.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseCancelled || p == PhaseErrored
}

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseCompleted:
		return "completed"
	case PhaseCancelled:
		return "cancelled"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Subscription is the detach handle returned by [Source.Attach] and
// [Shared.Attach]. It owns the per-attach state machine.
//
// Detach and the completion callback race by design; the race is resolved
// with a compare-and-set on the phase word, so only the first of the two
// to observe PhaseActive wins. The loser is a no-op.
type Subscription struct {
	phase atomic.Int32

	// onDetach runs exactly once, from whichever Detach call wins the
	// transition to PhaseCancelled. Set before the handle is returned to
	// the consumer and never mutated afterwards.
	onDetach func()
}

// Phase returns the subscription's current phase.
func (s *Subscription) Phase() Phase {
	return Phase(s.phase.Load())
}

// transition atomically moves the subscription from one phase to another.
// It reports whether this call performed the transition.
func (s *Subscription) transition(from, to Phase) bool {
	return s.phase.CompareAndSwap(int32(from), int32(to))
}

// Detach ends the consumer's relationship with the source. If the
// subscription is still active it moves to [PhaseCancelled] and no emission
// is delivered afterwards, even if the wrapped function later invokes its
// callback.
//
// Detaching does not halt the wrapped function's underlying work unless an
// abort hook was wired via [WithAbort]. Detach is idempotent and a no-op on
// subscriptions that are already terminal.
func (s *Subscription) Detach() {
	s.detach()
}

// detach reports whether this call performed the cancellation.
func (s *Subscription) detach() bool {
	if !s.transition(PhaseActive, PhaseCancelled) {
		return false
	}
	if s.onDetach != nil {
		s.onDetach()
	}
	return true
}
