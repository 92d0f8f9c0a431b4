package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/and161185/policydesk/internal/model"
)

// Keys of the persisted session document.
const (
	keyToken     = "token"
	keyUserID    = "userId"
	keyUser      = "user"
	keyExpiresAt = "expiresAt"
)

const fileName = "session.json"

// DefaultDir returns $XDG_CONFIG_HOME/policydesk, falling back to ~/.config/policydesk.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "policydesk")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "policydesk")
}

// FileStore persists the session as a small JSON key-value document and serves reads
// from an in-memory copy loaded on first use.
type FileStore struct {
	dir string

	mu     sync.RWMutex
	loaded bool
	cache  model.Session
}

var _ Store = (*FileStore)(nil)

// NewFile returns a store rooted at dir; an empty dir selects DefaultDir.
func NewFile(dir string) *FileStore {
	if dir == "" {
		dir = DefaultDir()
	}
	return &FileStore{dir: dir}
}

// Path is the location of the session document.
func (f *FileStore) Path() string { return filepath.Join(f.dir, fileName) }

func (f *FileStore) Token() (string, bool) {
	s, _ := f.Current()
	return s.Token, s.Token != ""
}

func (f *FileStore) UserID() (int64, bool) {
	s, _ := f.Current()
	return s.UserID, s.Token != "" && s.UserID != 0
}

// Current returns the cached session; a missing or unreadable file reads as "no session".
func (f *FileStore) Current() (model.Session, bool) {
	f.mu.RLock()
	if f.loaded {
		s := f.cache
		f.mu.RUnlock()
		return s, s.Valid()
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loaded {
		s, _ := f.read()
		f.cache, f.loaded = s, true
	}
	return f.cache, f.cache.Valid()
}

// Load reads the document from disk, replacing the cache, and reports decode problems.
func (f *FileStore) Load() error {
	s, err := f.read()
	f.mu.Lock()
	f.cache, f.loaded = s, true
	f.mu.Unlock()
	return err
}

func (f *FileStore) Set(s model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(s); err != nil {
		return err
	}
	f.cache, f.loaded = s, true
	return nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	f.cache, f.loaded = model.Session{}, true
	return nil
}

func (f *FileStore) read() (model.Session, error) {
	b, err := os.ReadFile(f.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Session{}, nil
		}
		return model.Session{}, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		return model.Session{}, fmt.Errorf("decode session: %w", err)
	}

	var s model.Session
	if raw, ok := doc[keyToken]; ok {
		_ = json.Unmarshal(raw, &s.Token)
	}
	if raw, ok := doc[keyUserID]; ok {
		_ = json.Unmarshal(raw, &s.UserID)
	}
	if raw, ok := doc[keyUser]; ok && string(raw) != "null" {
		var u model.User
		if json.Unmarshal(raw, &u) == nil {
			s.User = &u
			s.Role = u.Role
		}
	}
	if raw, ok := doc[keyExpiresAt]; ok {
		_ = json.Unmarshal(raw, &s.ExpiresAt)
	}
	return s, nil
}

// write replaces the document atomically via a temp file in the same directory.
func (f *FileStore) write(s model.Session) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}
	doc := map[string]any{
		keyToken:  s.Token,
		keyUserID: s.UserID,
	}
	u := s.User
	if u == nil && s.Role != "" {
		u = &model.User{ID: s.UserID, Role: s.Role}
	}
	if u != nil {
		doc[keyUser] = u
	}
	if !s.ExpiresAt.IsZero() {
		doc[keyExpiresAt] = s.ExpiresAt.UTC().Format(time.RFC3339)
	}

	tmp, err := os.CreateTemp(f.dir, fileName+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path())
}
