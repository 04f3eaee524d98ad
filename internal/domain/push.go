package domain

import (
	"context"
	"time"
)

// PushToken is one registered device token. Token registration is owned
// by an external surface; the delivery batcher only reads them.
type PushToken struct {
	UserID     string    `json:"user_id"`
	Token      string    `json:"token"`
	Platform   string    `json:"platform"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// PushMessage is one gateway message addressed to a single device. A
// user with several devices gets one message per token.
type PushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Sound string            `json:"sound,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushTokenRepository defines read access to registered device tokens.
type PushTokenRepository interface {
	ListByUserIDs(ctx context.Context, userIDs []string) ([]*PushToken, error)
}

// PushDeliverer accepts messages for best-effort, non-blocking delivery.
// Deliver enqueues and returns immediately; a full queue is an error the
// caller logs and drops, never a reason to block the mutation path.
type PushDeliverer interface {
	Deliver(messages []PushMessage) error
}
