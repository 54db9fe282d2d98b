package oneshot

import "context"

// Await attaches to src and blocks until the source resolves or ctx is
// done. On cancellation it detaches, suppressing any later delivery, and
// returns ctx.Err(). If the source resolves in the same instant the
// cancellation loses the race and the outcome is returned instead.
func Await[T any](ctx context.Context, src Attachable[T]) (T, error) {
	type outcome struct {
		val T
		err error
	}

	// Buffered so delivery never blocks after cancellation wins.
	ch := make(chan outcome, 1)

	var val T
	sub := src.Attach(Observer[T]{
		OnValue: func(v T) { val = v },
		OnError: func(err error) { ch <- outcome{err: err} },
		OnComplete: func() { ch <- outcome{val: val} },
	})

	select {
	case out := <-ch:
		return out.val, out.err
	case <-ctx.Done():
		if !sub.detach() {
			// Already terminal: the outcome is in flight, take it.
			out := <-ch
			return out.val, out.err
		}
		var zero T
		return zero, ctx.Err()
	}
}

// Chan adapts src to a value channel and an error channel. Both channels
// are closed once the source settles or ctx is cancelled; on cancellation
// the subscription is detached and ctx.Err() is sent on the error channel.
func Chan[T any](ctx context.Context, src Attachable[T]) (<-chan T, <-chan error) {
	ch := make(chan T, 1)
	errCh := make(chan error, 1)
	settled := make(chan struct{})

	sub := src.Attach(Observer[T]{
		OnValue: func(v T) { ch <- v },
		OnError: func(err error) {
			errCh <- err
			close(settled)
		},
		OnComplete: func() { close(settled) },
	})

	go func() {
		select {
		case <-settled:
		case <-ctx.Done():
			if sub.detach() {
				errCh <- ctx.Err()
			} else {
				<-settled
			}
		}
		close(ch)
		close(errCh)
	}()

	return ch, errCh
}
