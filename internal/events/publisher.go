package events

import (
	"context"
	"time"
)

const (
	TypeMatchCreated = "match.created"
	TypeMessageSent  = "message.sent"
)

// Event is the JSON payload published for match and message activity.
type Event struct {
	Type      string    `json:"type"`
	UserID    uint64    `json:"user_id"`
	PeerID    uint64    `json:"peer_id"`
	EntityID  uint64    `json:"entity_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers domain events to whoever listens.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event; used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
