package adminapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// tokenState is the persisted admin session.
type tokenState struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	SavedAt  time.Time `json:"saved_at"`
}

// TokenStore abstracts persistence for the admin session token.
type TokenStore interface {
	Load() (tokenState, error)
	Save(tokenState) error
	Clear() error
}

// FileTokenStore writes token state to a JSON file on disk.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore builds a FileTokenStore rooted at the provided path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath returns the token location inside the state directory.
func DefaultTokenPath(stateDir string) string {
	return filepath.Join(stateDir, "admin_session.json")
}

// Load reads token state from disk. A missing file resolves to an empty state.
func (s *FileTokenStore) Load() (tokenState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tokenState{}, nil
		}
		return tokenState{}, fmt.Errorf("read admin session: %w", err)
	}

	var state tokenState
	if err := json.Unmarshal(data, &state); err != nil {
		return tokenState{}, fmt.Errorf("decode admin session: %w", err)
	}
	return state, nil
}

// Save persists token state to disk with restricted permissions.
func (s *FileTokenStore) Save(state tokenState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure session directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode admin session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write admin session: %w", err)
	}
	return nil
}

// Clear removes the persisted session.
func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove admin session: %w", err)
	}
	return nil
}

// SaveToken stores a freshly issued token.
func SaveToken(store TokenStore, token, username string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty admin token")
	}
	return store.Save(tokenState{Token: token, Username: username, SavedAt: time.Now().UTC()})
}

// LoadToken returns the stored token, empty when not logged in.
func LoadToken(store TokenStore) (string, string, error) {
	state, err := store.Load()
	if err != nil {
		return "", "", err
	}
	return state.Token, state.Username, nil
}
