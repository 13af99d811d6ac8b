package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "snackadmin"
)

// KeyringStore keeps the session in the OS keychain/credential manager, one entry per key and profile
type KeyringStore struct {
	profile string
}

// NewKeyringStore creates a keyring store for a profile
func NewKeyringStore(profile string) *KeyringStore {
	return &KeyringStore{profile: profile}
}

// getKeyringKey returns a unique key per profile
func (k *KeyringStore) getKeyringKey(key string) string {
	return fmt.Sprintf("%s:%s", k.profile, key)
}

// Get retrieves a value from the keychain
func (k *KeyringStore) Get(key string) (string, error) {
	v, err := keyring.Get(service, k.getKeyringKey(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load %s: %w", key, err)
	}
	return v, nil
}

// Set persists a value in the keychain
func (k *KeyringStore) Set(key, value string) error {
	if err := keyring.Set(service, k.getKeyringKey(key), value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Delete removes a value from the keychain
func (k *KeyringStore) Delete(key string) error {
	if err := keyring.Delete(service, k.getKeyringKey(key)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
