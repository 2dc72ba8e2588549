// Package storage persists the agent's local state in a JSON file:
//
//	~/.cryptotracker/state.json
//
// The file is a flat object of independent string entries (currency,
// language, theme, favorites, authToken). A malformed entry only affects its
// own key; a malformed file is treated as empty.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys of the state file.
const (
	KeyCurrency  = "currency"
	KeyLanguage  = "language"
	KeyTheme     = "theme"
	KeyFavorites = "favorites"
	KeyAuthToken = "authToken"
)

// DefaultPath returns <home>/.cryptotracker/state.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cryptotracker", "state.json"), nil
}

// Store is a key-value view over the state file. Changes are kept in memory
// until Save.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
}

// Open loads the state file at path. A missing or unreadable-as-JSON file
// yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, entries: make(map[string]string)}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return s, nil
	}
	for k, v := range raw {
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			continue
		}
		s.entries[k] = str
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok
}

func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Favorites decodes the favorites entry. Absent or corrupt data yields an
// empty list.
func (s *Store) Favorites() []string {
	raw, ok := s.Get(KeyFavorites)
	if !ok {
		return []string{}
	}
	var favorites []string
	if err := json.Unmarshal([]byte(raw), &favorites); err != nil || favorites == nil {
		return []string{}
	}
	return favorites
}

func (s *Store) SetFavorites(favorites []string) {
	if favorites == nil {
		favorites = []string{}
	}
	b, _ := json.Marshal(favorites)
	s.Set(KeyFavorites, string(b))
}

// Save writes the state file, creating its directory with 0700 and the file
// with 0600 since it holds the session token.
func (s *Store) Save() error {
	s.mu.Lock()
	b, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
