package host

import "context"

// NullMessageLog is a no-op implementation of MessageLog.
type NullMessageLog struct{}

func NewNullMessageLog() *NullMessageLog {
	return &NullMessageLog{}
}

func (l *NullMessageLog) Append(ctx context.Context, entry *MessageEntry) error {
	return nil
}

func (l *NullMessageLog) History(ctx context.Context, sessionID string) ([]*MessageEntry, error) {
	return nil, nil
}
