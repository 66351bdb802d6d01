package testutil

import (
	"context"
	"sync"

	"recdocs/internal/docs"
)

// RecordingNotifier collects notifications. Safe for concurrent use.
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []docs.Notification
}

func (n *RecordingNotifier) Notify(note docs.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, note)
}

// Notifications returns a copy of everything notified so far.
func (n *RecordingNotifier) Notifications() []docs.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]docs.Notification(nil), n.notifications...)
}

// Messages returns the message of every notification, in order.
func (n *RecordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.notifications))
	for i, note := range n.notifications {
		out[i] = note.Message
	}
	return out
}

// RecordingComposer collects compose requests and returns Err.
type RecordingComposer struct {
	mu       sync.Mutex
	requests []docs.ComposeRequest
	Err      error
}

func (c *RecordingComposer) Compose(_ context.Context, req docs.ComposeRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	return c.Err
}

// Requests returns a copy of the recorded requests.
func (c *RecordingComposer) Requests() []docs.ComposeRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]docs.ComposeRequest(nil), c.requests...)
}
