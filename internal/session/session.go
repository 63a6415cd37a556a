package session

import "errors"

// ErrNoSession indicates that no bearer token is currently stored.
var ErrNoSession = errors.New("no active session")

// Store is the durable holder of the bearer token for the current
// client context. At most one token is held at a time; SetToken
// overwrites any existing one and Clear is idempotent.
type Store interface {
	// Token returns the stored bearer token, or ErrNoSession when
	// absent.
	Token() (string, error)

	// SetToken stores the token, replacing any existing one.
	SetToken(token string) error

	// Clear removes the stored token. Clearing an absent token is
	// not an error.
	Clear() error
}

// MemoryStore is an in-process Store used in tests and when keyring
// access is disabled. It is not safe for concurrent use; the UI event
// loop is the only writer.
type MemoryStore struct {
	token string
	set   bool
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() (string, error) {
	if !s.set {
		return "", ErrNoSession
	}
	return s.token, nil
}

func (s *MemoryStore) SetToken(token string) error {
	s.token = token
	s.set = true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.token = ""
	s.set = false
	return nil
}
