package oneshot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestOnEventCompletedSequence(t *testing.T) {
	var events []Event
	f := Bind(
		func(_ struct{}, done Callback) { done(1) },
		WithOnEvent[struct{}](func(e Event) { events = append(events, e) }),
	)

	f.Source(struct{}{}).Attach(Observer[any]{})

	assert.Equal(t,
		[]EventKind{EventAttached, EventEmitted, EventCompleted},
		kinds(events))
}

func TestOnEventCancelledSequence(t *testing.T) {
	var events []Event
	f := Bind(
		func(_ struct{}, done Callback) {},
		WithOnEvent[struct{}](func(e Event) { events = append(events, e) }),
	)

	sub := f.Source(struct{}{}).Attach(Observer[any]{})
	sub.Detach()

	assert.Equal(t, []EventKind{EventAttached, EventCancelled}, kinds(events))
}

func TestOnEventErroredCarriesError(t *testing.T) {
	var events []Event
	f := Bind(
		func(_ struct{}, done Callback) { panic("nope") },
		WithOnEvent[struct{}](func(e Event) { events = append(events, e) }),
	)

	f.Source(struct{}{}).Attach(Observer[any]{})

	require.Equal(t, []EventKind{EventAttached, EventErrored}, kinds(events))
	assert.True(t, IsInvokeError(events[1].Err))
}

func TestOnEventIgnoredForLateCallback(t *testing.T) {
	var done Callback
	var events []Event
	f := Bind(
		func(_ struct{}, cb Callback) { done = cb },
		WithOnEvent[struct{}](func(e Event) { events = append(events, e) }),
	)

	f.Source(struct{}{}).Attach(Observer[any]{})
	done(1)
	done(2)

	assert.Equal(t,
		[]EventKind{EventAttached, EventEmitted, EventCompleted, EventIgnored},
		kinds(events))
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "attached", EventAttached.String())
	assert.Equal(t, "emitted", EventEmitted.String())
	assert.Equal(t, "completed", EventCompleted.String())
	assert.Equal(t, "cancelled", EventCancelled.String())
	assert.Equal(t, "errored", EventErrored.String())
	assert.Equal(t, "ignored", EventIgnored.String())
	assert.Equal(t, "unknown", EventKind(99).String())
}

func TestWithAbortInvokedOnDetach(t *testing.T) {
	var aborted []string
	f := Bind(
		func(host string, done Callback) {},
		WithAbort(func(host string) { aborted = append(aborted, host) }),
	)

	src := f.Source("example.com")
	require.True(t, src.SupportsAbort())

	sub := src.Attach(Observer[any]{})
	sub.Detach()
	sub.Detach()

	assert.Equal(t, []string{"example.com"}, aborted)
}

func TestWithAbortNotInvokedAfterResolution(t *testing.T) {
	var aborted int
	f := Bind(
		func(_ struct{}, done Callback) { done("ok") },
		WithAbort(func(struct{}) { aborted++ }),
	)

	sub := f.Source(struct{}{}).Attach(Observer[any]{})
	sub.Detach()

	assert.Equal(t, PhaseCompleted, sub.Phase())
	assert.Zero(t, aborted, "abort must not fire for a settled attach")
}

func TestSupportsAbortDefaultsFalse(t *testing.T) {
	f := Bind(func(_ struct{}, done Callback) {})
	assert.False(t, f.Source(struct{}{}).SupportsAbort())
}

func TestNilOptionValuesPanic(t *testing.T) {
	assert.Panics(t, func() {
		Bind(func(_ struct{}, done Callback) {}, WithAbort[struct{}](nil))
	})
	assert.Panics(t, func() {
		Bind(func(_ struct{}, done Callback) {}, WithOnEvent[struct{}](nil))
	})
	assert.Panics(t, func() {
		BindWith[struct{}, int](func(_ struct{}, done Callback) {}, nil)
	})
}

func TestErroredEventForShaperFailure(t *testing.T) {
	shapeErr := errors.New("shape")
	var events []Event
	f := BindWith(
		func(_ struct{}, done Callback) { done(1) },
		func(results ...any) (int, error) { return 0, shapeErr },
		WithOnEvent[struct{}](func(e Event) { events = append(events, e) }),
	)

	f.Source(struct{}{}).Attach(Observer[int]{})

	require.Equal(t, []EventKind{EventAttached, EventErrored}, kinds(events))
	assert.Equal(t, shapeErr, events[1].Err)
}
