package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.jetify.com/typeid"
)

// NewSessionID returns a new TypeID for a message area session
func NewSessionID() string {
	id, err := typeid.WithPrefix("session")
	if err != nil {
		panic(err)
	}
	return id.String()
}

// ValidateSessionID checks that id can name a session in a message log.
// IDs from NewSessionID always pass.
func ValidateSessionID(id string) error {
	switch {
	case id == "":
		return errors.New("session id is empty")
	case id == "." || id == "..", strings.ContainsAny(id, `/\`), strings.IndexByte(id, 0) >= 0:
		return fmt.Errorf("invalid session id %q", id)
	}
	return nil
}

// MessageAreaOptions configures a new MessageArea
type MessageAreaOptions struct {
	Output    io.Writer
	Log       MessageLog
	SessionID string
	Logger    *slog.Logger
}

// MessageArea is where the host's print global sends its output.
type MessageArea struct {
	mu        sync.Mutex
	output    io.Writer
	log       MessageLog
	sessionID string
	logger    *slog.Logger
	messages  []string
	counter   int
}

// NewMessageArea creates a message area. Output defaults to io.Discard and
// the log to a NullMessageLog.
func NewMessageArea(opts MessageAreaOptions) *MessageArea {
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Log == nil {
		opts.Log = NewNullMessageLog()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.SessionID == "" {
		opts.SessionID = NewSessionID()
	} else if err := ValidateSessionID(opts.SessionID); err != nil {
		id := NewSessionID()
		opts.Logger.Warn("replacing session id", "error", err, "session_id", id)
		opts.SessionID = id
	}
	return &MessageArea{
		output:    opts.Output,
		log:       opts.Log,
		sessionID: opts.SessionID,
		logger:    opts.Logger.With("session_id", opts.SessionID),
	}
}

// SessionID identifies this message area in the message log.
func (m *MessageArea) SessionID() string {
	return m.sessionID
}

// Emit shows one message.
func (m *MessageArea) Emit(ctx context.Context, text string) error {
	m.mu.Lock()
	m.counter++
	entry := &MessageEntry{
		ID:        fmt.Sprintf("%d", m.counter),
		SessionID: m.sessionID,
		Text:      text,
		Time:      time.Now(),
	}
	m.messages = append(m.messages, text)
	_, writeErr := fmt.Fprintln(m.output, text)
	m.mu.Unlock()

	if writeErr != nil {
		return writeErr
	}
	if err := m.log.Append(ctx, entry); err != nil {
		m.logger.Warn("failed to append message log", "error", err)
		return err
	}
	return nil
}

// Messages returns a copy of everything emitted so far.
func (m *MessageArea) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}
