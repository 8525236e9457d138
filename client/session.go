package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"phone-order-api/models"
)

// Session holds the bearer credential for the dashboard. It is set on login,
// injected into every request and cleared on logout or when the API answers 401.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.User
	store SessionStore
}

// SessionStore persists a session between CLI invocations.
type SessionStore interface {
	Load() (string, *models.User, error)
	Save(token string, user *models.User) error
	Clear() error
}

// NewSession returns a session restored from store when one is given.
func NewSession(store SessionStore) (*Session, error) {
	s := &Session{store: store}
	if store == nil {
		return s, nil
	}
	token, user, err := store.Load()
	if err != nil {
		return nil, err
	}
	s.token, s.user = token, user
	return s, nil
}

func (s *Session) Set(token string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user = token, user
	if s.store != nil {
		return s.store.Save(token, user)
	}
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Authenticated() bool { return s.Token() != "" }

func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user = "", nil
	if s.store != nil {
		return s.store.Clear()
	}
	return nil
}

// FileStore keeps the session as a JSON file readable only by its owner.
type FileStore struct {
	Path string
}

type sessionFile struct {
	Token string       `json:"access_token"`
	User  *models.User `json:"user,omitempty"`
}

func (f FileStore) Load() (string, *models.User, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, errors.Wrap(err, "read session file")
	}
	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return "", nil, errors.Wrap(err, "parse session file")
	}
	return sf.Token, sf.User, nil
}

func (f FileStore) Save(token string, user *models.User) error {
	data, err := json.MarshalIndent(sessionFile{Token: token, User: user}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrap(err, "create session directory")
		}
	}
	return errors.Wrap(os.WriteFile(f.Path, data, 0o600), "write session file")
}

func (f FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove session file")
	}
	return nil
}
