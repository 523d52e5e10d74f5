// Package convstore persists conversations as a single JSON array
// file, rewritten whole on every mutation. All mutation is serialized
// through one in-process store so near-simultaneous commits cannot
// lose each other's writes.
package convstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"

	"chatbox/src/chat"
)

// Notify receives the refreshed conversation list after every
// successful mutation. Push-based cache invalidation: subscribers
// never need to poll the file.
type Notify func(conversations []chat.Conversation)

// DefaultPath returns the conversations file location under the
// user's XDG data directory.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "chatbox", "conversations.json")
}

// Store reads and writes the conversations file.
//
// The mutex makes the read-modify-write cycle of Upsert and Delete
// atomic within the process. External concurrent processes are not
// defended against; single-process, single-user operation is assumed.
type Store struct {
	fs     afero.Fs
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	notify Notify
}

// NewStore creates a conversation store backed by the given filesystem.
func NewStore(fs afero.Fs, path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		fs:     fs,
		path:   path,
		logger: logger.With("component", "convstore"),
	}
}

// SetNotify installs the list-changed subscriber. A nil subscriber
// disables notifications.
func (s *Store) SetNotify(fn Notify) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// List returns all conversations in file order (creation order).
func (s *Store) List() ([]chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Find returns the conversation with the given id, or ErrNotFound.
func (s *Store) Find(id string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations, err := s.load()
	if err != nil {
		return chat.Conversation{}, err
	}
	for _, c := range conversations {
		if c.ID == id {
			return c, nil
		}
	}
	return chat.Conversation{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// Upsert replaces the record with a matching id, or appends when no
// record matches. Applying the same record twice leaves one stored
// copy. Write failures propagate: a failed flush means possible data
// loss and must not be swallowed.
func (s *Store) Upsert(conv chat.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i, c := range conversations {
		if c.ID == conv.ID {
			conversations[i] = conv
			replaced = true
			break
		}
	}
	if !replaced {
		conversations = append(conversations, conv)
	}

	if err := s.save(conversations); err != nil {
		return err
	}
	s.logger.Debug("conversation upserted", "id", conv.ID, "replaced", replaced, "messages", len(conv.Messages))
	s.pushLocked(conversations)
	return nil
}

// Delete removes the record with the given id. Deleting an id that is
// not stored is a no-op, not an error, and does not rewrite the file.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations, err := s.load()
	if err != nil {
		return err
	}

	for i, c := range conversations {
		if c.ID == id {
			conversations = append(conversations[:i], conversations[i+1:]...)
			if err := s.save(conversations); err != nil {
				return err
			}
			s.logger.Debug("conversation deleted", "id", id)
			s.pushLocked(conversations)
			return nil
		}
	}
	return nil
}

// load reads the whole file. Callers hold s.mu. An absent file is an
// empty store.
func (s *Store) load() ([]chat.Conversation, error) {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat conversations file: %w", err)
	}
	if !exists {
		return []chat.Conversation{}, nil
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversations file: %w", err)
	}

	var conversations []chat.Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		return nil, fmt.Errorf("failed to parse conversations file: %w", err)
	}
	return conversations, nil
}

// save rewrites the whole file. Callers hold s.mu.
func (s *Store) save(conversations []chat.Conversation) error {
	data, err := json.MarshalIndent(conversations, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversations: %w", err)
	}
	if err := atomicWriteFile(s.fs, s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write conversations file: %w", err)
	}
	return nil
}

func (s *Store) pushLocked(conversations []chat.Conversation) {
	if s.notify != nil {
		s.notify(conversations)
	}
}
