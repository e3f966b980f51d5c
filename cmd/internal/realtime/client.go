package realtime

import (
	"errors"
	"sync"
)

var (
	// ErrClientClosed is returned by Deliver once the client is shutting down.
	ErrClientClosed = errors.New("client closed")

	// ErrQueueFull is returned by Deliver when the send queue is saturated.
	ErrQueueFull = errors.New("client send queue full")
)

// Client represents one connected stream session.
//
// The send queue is intentionally never closed by the server so concurrent
// broadcasters cannot panic on a closing client; done signals shutdown and
// Close is idempotent.
type Client struct {
	ConnID string
	UserID string

	send      chan Notification
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a Client with a bounded send queue.
func NewClient(userID, connID string, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 64
	}
	return &Client{
		ConnID: connID,
		UserID: userID,
		send:   make(chan Notification, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Deliver queues one notification for the peer without blocking.
func (c *Client) Deliver(n Notification) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

// Outbox exposes the queued notifications to the connection's writer task.
func (c *Client) Outbox() <-chan Notification { return c.send }

// Done returns a channel closed when the client is shutting down.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close signals the client goroutines to stop (idempotent). It does not close
// the send queue; see the type comment.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
