// Package kv provides the key-value slots that focusboard persists into.
package kv

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ErrInvalidKey is returned for keys that cannot be mapped to a slot.
var ErrInvalidKey = errors.New("invalid key")

var keyRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Storage is a flat string key-value store.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Close releases backend resources.
	Close() error
}

// Open returns the backend named by backend rooted at path.
func Open(backend, path string) (Storage, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, "":
		return NewFile(path)
	case BackendSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// ValidateKey checks that key is usable by every backend.
func ValidateKey(key string) error {
	if !keyRe.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Memory is an in-process Storage, used for tests and ephemeral sessions.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get implements Storage.
func (m *Memory) Get(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Storage.
func (m *Memory) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Close implements Storage.
func (m *Memory) Close() error { return nil }
