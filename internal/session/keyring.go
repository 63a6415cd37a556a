package session

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "taskdeck"
	tokenKey    = "api-token"
)

// KeyringStore persists the session token in the system keyring, with a
// file-backed fallback for headless environments. The token survives
// restarts until an explicit logout replaces or removes it.
type KeyringStore struct {
	open func() (keyring.Keyring, error)
}

// NewKeyringStore returns a Store backed by the system keyring.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{open: openKeyring}
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/taskdeck/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("taskdeck-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Token retrieves the stored bearer token from the keyring.
func (s *KeyringStore) Token() (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("reading session token: %w", err)
	}

	return string(item.Data), nil
}

// SetToken stores the bearer token in the keyring, overwriting any
// previous value.
func (s *KeyringStore) SetToken(token string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  tokenKey,
		Data: []byte(token),
	})
	if err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}

	return nil
}

// Clear removes the bearer token from the keyring. A missing token is
// treated as already cleared.
func (s *KeyringStore) Clear() error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Remove(tokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("clearing session token: %w", err)
	}

	return nil
}
