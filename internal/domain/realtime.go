package domain

import "context"

// Topic helpers for the change propagation channel. A publish carries no
// payload: it tells subscribers "state changed, re-fetch".
func EventAttendanceTopic(eventID string) string { return "event:" + eventID + ":attendance" }
func EventChecklistTopic(eventID string) string  { return "event:" + eventID + ":checklist" }
func InboxTopic(userID string) string            { return "inbox:" + userID }

// Subscription is a live interest in one topic. C yields at least one
// signal per publish; signals may coalesce. Close releases the
// subscription and must be called when the consumer goes away.
type Subscription interface {
	C() <-chan struct{}
	Close() error
}

// Broker is the advisory invalidation channel between mutations and
// connected clients. A missed publish resolves on the next manual
// refresh, so Publish failures are logged and swallowed by callers.
type Broker interface {
	Publish(ctx context.Context, topic string) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}
