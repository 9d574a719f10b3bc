// Package storage is the durable client storage holding credentials and the
// theme between runs.
package storage

import (
	"errors"
	"sync"
)

// Keys used in durable storage
const (
	KeyAPIKey        = "apiKey"
	KeyServerAddress = "serverAddress"
	KeyTheme         = "theme"
)

// ErrNotFound is returned by Get when the key is absent
var ErrNotFound = errors.New("storage: key not found")

// Storage is a string key/value store that survives restarts
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(keys ...string) error
}

// Credentials returns the stored API key and server address. ok is true
// only when both are present.
func Credentials(st Storage) (apiKey, serverAddress string, ok bool) {
	apiKey, err := st.Get(KeyAPIKey)
	if err != nil {
		return "", "", false
	}
	serverAddress, err = st.Get(KeyServerAddress)
	if err != nil {
		return "", "", false
	}
	return apiKey, serverAddress, true
}

// Memory is an in-process Storage used by tests and mocked runs
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

// NewMemory creates an empty in-memory storage
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value for key or ErrNotFound
func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes++
	return nil
}

// Remove deletes the given keys; missing keys are ignored
func (m *Memory) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	m.writes++
	return nil
}

// Writes returns how many Set/Remove calls were made
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
