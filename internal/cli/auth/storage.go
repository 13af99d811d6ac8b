package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/snackshop-dev/snackadmin/internal/cli/config"
)

// Persisted keys. Both are always written and cleared together.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNotFound is returned by a Store when a key has no value
var ErrNotFound = errors.New("key not found")

// Store persists the session between runs. This allows us to mock the keyring in tests.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// NewStore returns the store configured for the active profile
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.Storage {
	case config.StorageKeyring:
		return NewKeyringStore(cfg.Profile), nil
	case config.StorageFile:
		return NewFileStore(FileStorePath(cfg.ConfigDir, cfg.Profile)), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

// MemoryStore keeps values in memory
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	// FailSet makes Set fail for the named key
	FailSet string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSet == key {
		return fmt.Errorf("failed to save %s", key)
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Has reports whether the key holds a value
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.values[key]
	return ok
}
