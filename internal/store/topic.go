package store

import (
	"context"
	"sync"
)

// topic is a broadcast channel with buffer-latest semantics: every
// subscriber owns a channel with capacity 1, and a publish to a subscriber
// that has not consumed the previous value drops the stale value instead of
// blocking. Slow consumers therefore always see the most recent state, never
// an unbounded backlog.
type topic[T any] struct {
	mu   sync.Mutex
	subs map[uint64]chan T
	next uint64
}

func newTopic[T any]() *topic[T] {
	return &topic[T]{
		subs: make(map[uint64]chan T),
	}
}

// subscribe registers a new subscriber and places the initial value in its
// buffer. The returned channel is closed and unregistered when ctx ends.
func (t *topic[T]) subscribe(ctx context.Context, initial T) <-chan T {
	ch := make(chan T, 1)
	ch <- initial

	t.mu.Lock()
	id := t.next
	t.next++
	t.subs[id] = ch
	t.mu.Unlock()

	go func() {
		<-ctx.Done()

		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()

		close(ch)
	}()

	return ch
}

// publish sends the value to every subscriber, replacing a pending value
// that has not been consumed yet.
func (t *topic[T]) publish(value T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ch := range t.subs {
		select {
		case ch <- value:
		default:
			// The subscriber still has the previous value in its buffer.
			// Drop it, then try again. If the subscriber consumed it in the
			// meantime, the non-blocking send below still succeeds.
			select {
			case <-ch:
			default:
			}

			select {
			case ch <- value:
			default:
			}
		}
	}
}
