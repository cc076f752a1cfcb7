package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileMessageLog keeps one JSON-lines file per session under a directory.
// Session files stay open for appending until Close.
type FileMessageLog struct {
	directory string

	mu    sync.Mutex
	files map[string]*sessionFile
}

type sessionFile struct {
	f   *os.File
	enc *json.Encoder
}

func NewFileMessageLog(directory string) *FileMessageLog {
	return &FileMessageLog{
		directory: directory,
		files:     make(map[string]*sessionFile),
	}
}

// Path returns the file holding the given session's messages.
func (l *FileMessageLog) Path(sessionID string) (string, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return "", err
	}
	return filepath.Join(l.directory, sessionID+".jsonl"), nil
}

func (l *FileMessageLog) Append(ctx context.Context, entry *MessageEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sf, err := l.open(entry.SessionID)
	if err != nil {
		return err
	}
	if err := sf.enc.Encode(entry); err != nil {
		return fmt.Errorf("failed to append message %s: %w", entry.ID, err)
	}
	return nil
}

func (l *FileMessageLog) open(sessionID string) (*sessionFile, error) {
	if sf, ok := l.files[sessionID]; ok {
		return sf, nil
	}
	path, err := l.Path(sessionID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(l.directory, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	sf := &sessionFile{f: f, enc: json.NewEncoder(f)}
	l.files[sessionID] = sf
	return sf, nil
}

// History returns the session's messages in the order they were appended.
// A session that never emitted anything has no history.
func (l *FileMessageLog) History(ctx context.Context, sessionID string) ([]*MessageEntry, error) {
	path, err := l.Path(sessionID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []*MessageEntry
	dec := json.NewDecoder(f)
	for {
		var entry MessageEntry
		if err := dec.Decode(&entry); err == io.EOF {
			return entries, nil
		} else if err != nil {
			return entries, fmt.Errorf("corrupt message log %s: %w", path, err)
		}
		entries = append(entries, &entry)
	}
}

// Close syncs and closes every open session file.
func (l *FileMessageLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for id, sf := range l.files {
		errs = append(errs, sf.f.Sync(), sf.f.Close())
		delete(l.files, id)
	}
	return errors.Join(errs...)
}
