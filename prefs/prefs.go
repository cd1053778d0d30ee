// Package prefs provides persistent storage for user preferences,
// such as the active display locale.
package prefs

import (
	"sync"

	errgo "gopkg.in/errgo.v1"
)

// ErrNotFound is the cause of the error returned by Store.Get
// when there's no value for a key.
var ErrNotFound = errgo.New("preference not found")

// Store represents a simple persistent key-value store.
type Store interface {
	// Get returns the value stored under the given key.
	Get(key string) (string, error)
	// Put stores the given value under the given key.
	Put(key, value string) error
}

// GetDefault returns the value stored under the given key,
// or def if there's no such value.
func GetDefault(s Store, key, def string) (string, error) {
	v, err := s.Get(key)
	if errgo.Cause(err) == ErrNotFound {
		return def, nil
	}
	if err != nil {
		return def, errgo.Mask(err)
	}
	return v, nil
}

// MemStore is a Store that keeps its values in memory.
// The zero value is ready to use.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

// Get implements Store.Get.
func (s *MemStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", errgo.WithCausef(nil, ErrNotFound, "no value for %q", key)
	}
	return v, nil
}

// Put implements Store.Put.
func (s *MemStore) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	return nil
}
