package multiplayer

import "sync"

// Outbox buffers runtime events for the presentation layer. Send never
// blocks the frame loop.
type Outbox struct {
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewOutbox creates an outbox holding up to size events.
func NewOutbox(size int) *Outbox {
	if size < 1 {
		size = 64
	}
	return &Outbox{
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
}

// Send queues an event. When the buffer is full the oldest event is dropped,
// except a MatchEndedEvent, which is requeued in place of evt.
func (o *Outbox) Send(evt Event) {
	select {
	case <-o.done:
		return
	default:
	}

	select {
	case o.events <- evt:
		return
	default:
	}

	select {
	case old := <-o.events:
		if _, ok := old.(MatchEndedEvent); ok {
			evt = old
		}
	default:
	}
	select {
	case o.events <- evt:
	default:
	}
}

// Events returns the channel the presentation layer reads from.
func (o *Outbox) Events() <-chan Event {
	return o.events
}

// Done is closed when the runtime has stopped.
func (o *Outbox) Done() <-chan struct{} {
	return o.done
}

// Close marks the outbox done. Safe to call multiple times.
func (o *Outbox) Close() {
	o.doneOnce.Do(func() {
		close(o.done)
	})
}
