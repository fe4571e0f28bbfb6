package queue

import (
	"context"
	"errors"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/retry"
)

// ErrMemoryQueueFull is returned, marked transient, when a bounded
// in-memory queue cannot accept another event.
var ErrMemoryQueueFull = errors.New("memory queue full")

// Memory is a channel-backed queue for tests and single-process tools.
// It honors the Producer contract; consumption is explicit via Next or
// Drain rather than a background group.
type Memory struct {
	ch chan event.RawEvent
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Memory{ch: make(chan event.RawEvent, capacity)}
}

func (m *Memory) Enqueue(ctx context.Context, ev event.RawEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case m.ch <- ev:
		return nil
	default:
		return retry.Transient(ErrMemoryQueueFull)
	}
}

// Next blocks until an event is available or ctx ends.
func (m *Memory) Next(ctx context.Context) (event.RawEvent, error) {
	select {
	case ev := <-m.ch:
		return ev, nil
	case <-ctx.Done():
		return event.RawEvent{}, ctx.Err()
	}
}

// Drain hands every queued event to the handler in order, stopping at
// the first handler error or when the queue is empty.
func (m *Memory) Drain(ctx context.Context, handler Handler) error {
	for {
		select {
		case ev := <-m.ch:
			if err := handler(ctx, ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// Len reports the number of undelivered events.
func (m *Memory) Len() int {
	return len(m.ch)
}
