package host

import (
	"context"
	"time"
)

// MessageEntry is one line emitted to the message area.
type MessageEntry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	Time      time.Time `json:"time"`
}

// MessageLog persists message area output
type MessageLog interface {
	// Append records an emitted message
	Append(ctx context.Context, entry *MessageEntry) error

	// History retrieves the messages of a session
	History(ctx context.Context, sessionID string) ([]*MessageEntry, error)
}
