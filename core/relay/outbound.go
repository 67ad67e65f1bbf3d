package relay

import "sync"

// Outbound is the delivery conduit from the hub to one connection's writer.
//
// The transport task owns it: it reads from C and calls Close when the connection
// goes away. The hub only holds a send capability and never blocks on it. The data
// channel is never closed, so a late send after Close cannot panic.
type Outbound[P any] struct {
	ch   chan P
	done chan struct{}
	once sync.Once
}

// NewOutbound creates an outbound conduit buffering up to size payloads.
func NewOutbound[P any](size int) *Outbound[P] {
	if size <= 0 {
		size = DefaultOutboundBuffer
	}
	return &Outbound[P]{
		ch:   make(chan P, size),
		done: make(chan struct{}),
	}
}

// C returns the channel the transport task forwards to the client.
func (o *Outbound[P]) C() <-chan P {
	return o.ch
}

// Done is closed once the receiving side has dropped the conduit.
func (o *Outbound[P]) Done() <-chan struct{} {
	return o.done
}

// Close marks the receiving side as gone. Safe to call multiple times.
func (o *Outbound[P]) Close() {
	o.once.Do(func() { close(o.done) })
}

// trySend attempts a non-blocking send. It fails when the receiver is gone
// or the buffer is full.
func (o *Outbound[P]) trySend(p P) bool {
	select {
	case <-o.done:
		return false
	default:
	}

	select {
	case o.ch <- p:
		return true
	default:
		return false
	}
}
