// Package fetch provides a latest-request-wins guard for data loads.
package fetch

import (
	"context"
	"errors"
	"sync"
)

// Latest serializes the results of repeated loads: each call to Do
// supersedes the previous one, which is canceled and whose result is
// discarded. The zero value is ready to use.
type Latest[T any] struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Do runs fn and reports whether its result is the newest one. When
// committed is false the call was superseded or canceled and both the value
// and the error must be ignored.
func (l *Latest[T]) Do(ctx context.Context, fn func(ctx context.Context) (T, error)) (val T, committed bool, err error) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.mu.Unlock()

	val, err = fn(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		var zero T
		return zero, false, nil
	}
	l.cancel = nil
	cancel()
	if errors.Is(err, context.Canceled) {
		var zero T
		return zero, false, nil
	}
	return val, true, err
}

// Cancel abandons the in-flight call, if any. Its result will not commit.
func (l *Latest[T]) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}
