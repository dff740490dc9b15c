package analysis

import "context"

// Future is the result of a task running in the background.
type Future[T any] struct {
	done chan struct{}
	val  T
}

// Go runs fn on its own goroutine. Callers that must stay responsive, such
// as a UI loop or a request handler, wait on Done and read the value later.
func Go[T any](ctx context.Context, fn func(context.Context) T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val = fn(ctx)
	}()
	return f
}

// Done is closed once the value is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the value is available.
func (f *Future[T]) Wait() T {
	<-f.done
	return f.val
}
