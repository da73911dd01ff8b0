package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/telecomplus/contratos/internal/models"
)

// FileStore persists the session as a mode-0600 JSON file, the analogue of
// the browser cookie jar for a local front-end.
type FileStore struct {
	mu   sync.Mutex
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewFileStore creates a FileStore at path with the given rolling TTL.
// An empty path defaults to .telecomplus/session.json in the user home.
func NewFileStore(path string, ttl time.Duration) (*FileStore, error) {
	const op = "session.NewFileStore"
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		path = filepath.Join(home, ".telecomplus", "session.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &FileStore{path: path, ttl: ttl, now: time.Now}, nil
}

// Save implements Store.
func (s *FileStore) Save(_ context.Context, token string, user models.Usuario) error {
	const op = "session.FileStore.Save"
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{
		Token:     token,
		Usuario:   user,
		ExpiresAt: s.now().Add(s.ttl),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load implements Store. A record past its rolling expiry is purged and
// reported as absent.
func (s *FileStore) Load(_ context.Context) (Record, bool, error) {
	const op = "session.FileStore.Load"
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("%s: %w", op, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Unreadable session files are purged, not surfaced.
		_ = os.Remove(s.path)
		return Record{}, false, nil
	}
	if rec.Expired(s.now()) {
		_ = os.Remove(s.path)
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) error {
	const op = "session.FileStore.Clear"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
