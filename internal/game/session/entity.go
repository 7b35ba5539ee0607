// Package session tracks connected players, their position in a zone and the
// per-player loot list state.
package session

import (
	"fmt"
	"sync"
)

// Outbox queues text messages for a player until the connection handler
// drains them.
type Outbox struct {
	uid      string
	messages chan string
	mu       sync.Mutex
	closed   bool
}

// NewOutbox creates an Outbox for the given player UID.
//
// Precondition: uid must be non-empty.
// Postcondition: Returns an Outbox with an open channel of at least one slot.
func NewOutbox(uid string, bufferSize int) *Outbox {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Outbox{
		uid:      uid,
		messages: make(chan string, bufferSize),
	}
}

// UID returns the player's unique identifier.
func (o *Outbox) UID() string {
	return o.uid
}

// Push enqueues text.
//
// Postcondition: text is queued, or an error is returned if the outbox is
// closed or full.
func (o *Outbox) Push(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("outbox %s is closed", o.uid)
	}
	select {
	case o.messages <- text:
		return nil
	default:
		return fmt.Errorf("outbox %s buffer full", o.uid)
	}
}

// Drain returns every queued message without blocking.
func (o *Outbox) Drain() []string {
	var out []string
	for {
		select {
		case msg, ok := <-o.messages:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

// Close marks the outbox as closed and closes its channel.
//
// Postcondition: Further Push calls return an error. Close is idempotent.
func (o *Outbox) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.closed {
		o.closed = true
		close(o.messages)
	}
	return nil
}

// IsClosed reports whether the outbox has been closed.
func (o *Outbox) IsClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
