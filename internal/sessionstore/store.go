// Package sessionstore persists session state across console runs.
//
// The store keeps three independent keys under one directory: the active
// token, the active identity snapshot, and the suspended-session stack.
// A corrupt or missing key always reads as absent, never as an error; the
// caller treats that as "no session". Only the session manager writes here.
package sessionstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"pkt.systems/proxyman/internal/perm"
)

const (
	tokenFileName    = "token.json"
	identityFileName = "identity.json"
	stackFileName    = "stack.json"
)

// Snapshot is one persisted session: the token plus the identity it was
// issued for. The decoded expiry is recomputed from the token on restore.
type Snapshot struct {
	Token    string        `json:"token"`
	Identity perm.Identity `json:"identity"`
}

// Store reads and writes session state under a directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Token returns the persisted active token, or "" when absent or unreadable.
func (s *Store) Token() string {
	var wrapped struct {
		Token string `json:"token"`
	}
	if !s.read(tokenFileName, &wrapped) {
		return ""
	}
	return wrapped.Token
}

// SaveToken persists the active token. An empty token clears the key.
func (s *Store) SaveToken(token string) error {
	if token == "" {
		return s.remove(tokenFileName)
	}
	return s.write(tokenFileName, struct {
		Token string `json:"token"`
	}{Token: token})
}

// Identity returns the persisted identity snapshot, if one exists.
func (s *Store) Identity() (perm.Identity, bool) {
	var id perm.Identity
	if !s.read(identityFileName, &id) {
		return perm.Identity{}, false
	}
	return id, true
}

// SaveIdentity persists the active identity snapshot.
func (s *Store) SaveIdentity(id perm.Identity) error {
	return s.write(identityFileName, id)
}

// ClearIdentity removes the identity snapshot.
func (s *Store) ClearIdentity() error {
	return s.remove(identityFileName)
}

// Stack returns the persisted suspended-session stack, oldest first.
// Absence or corruption reads as an empty stack.
func (s *Store) Stack() []Snapshot {
	var stack []Snapshot
	if !s.read(stackFileName, &stack) {
		return nil
	}
	return stack
}

// SaveStack persists the suspended-session stack. An empty stack clears
// the key.
func (s *Store) SaveStack(stack []Snapshot) error {
	if len(stack) == 0 {
		return s.remove(stackFileName)
	}
	return s.write(stackFileName, stack)
}

// Clear removes all persisted session state.
func (s *Store) Clear() error {
	for _, name := range []string{tokenFileName, identityFileName, stackFileName} {
		if err := s.remove(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) read(name string, out any) bool {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *Store) write(name string, value any) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o600)
}

func (s *Store) remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
