// ABOUTME: Authenticated session state with durable persistence across restarts
// ABOUTME: The Store is the single writer; readers take Snapshots

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/markalston/storefront/internal/client"
	"github.com/spf13/afero"
)

// Fixed keys of the persisted entries inside the store directory
const (
	IdentityFile = "user.json"
	TokenFile    = "token"
)

// Identity is the logged-in actor
type Identity struct {
	ID    string      `json:"_id,omitempty"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  client.Role `json:"role"`
}

// FromUser converts a backend user into an Identity
func FromUser(u client.User) Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Validate checks the identity is well formed enough to hold a session
func (i Identity) Validate() error {
	if strings.TrimSpace(i.Email) == "" && strings.TrimSpace(i.Name) == "" {
		return errors.New("identity has neither name nor email")
	}
	if !i.Role.Valid() {
		return fmt.Errorf("identity has unknown role %q", i.Role)
	}
	return nil
}

// Snapshot is a read-only view of the session at one moment
type Snapshot struct {
	Identity *Identity
	Token    string
	Loading  bool
}

// IsAuthenticated holds exactly when both identity and token are present
func (s Snapshot) IsAuthenticated() bool {
	return s.Identity != nil && s.Token != ""
}

// Role returns the session's role, or "" when logged out
func (s Snapshot) Role() client.Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// Store owns the session. It is safe for concurrent use.
type Store struct {
	fs  afero.Fs
	dir string

	mu       sync.RWMutex
	identity *Identity
	token    string
	loading  bool
}

// NewStore creates an empty store persisting under dir. The session stays
// in the loading state until Restore is called.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir, loading: true}
}

// Restore loads a persisted session. It never fails: missing, partial or
// corrupt entries leave the store logged out, and partial or corrupt
// entries are removed.
func (s *Store) Restore() {
	identity, token, ok := s.read()

	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.identity = identity
		s.token = token
		slog.Info("Session restored", "email", identity.Email, "role", identity.Role)
	} else {
		s.identity = nil
		s.token = ""
	}
	s.loading = false
}

func (s *Store) read() (*Identity, string, bool) {
	rawIdentity, errIdentity := afero.ReadFile(s.fs, s.path(IdentityFile))
	rawToken, errToken := afero.ReadFile(s.fs, s.path(TokenFile))

	identityMissing := errors.Is(errIdentity, os.ErrNotExist)
	tokenMissing := errors.Is(errToken, os.ErrNotExist)
	if identityMissing && tokenMissing {
		return nil, "", false
	}

	var identity Identity
	token := strings.TrimSpace(string(rawToken))
	err := errors.Join(errIdentity, errToken)
	if err == nil {
		err = json.Unmarshal(rawIdentity, &identity)
	}
	if err == nil {
		err = identity.Validate()
	}
	if err == nil && token == "" {
		err = errors.New("empty token")
	}
	if err != nil {
		slog.Warn("Discarding persisted session", "dir", s.dir, "error", err)
		s.remove()
		return nil, "", false
	}
	return &identity, token, true
}

// Login authenticates the session and persists it. The in-memory session
// is updated even when persisting fails.
func (s *Store) Login(identity Identity, token string) error {
	if err := identity.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("empty token")
	}

	s.mu.Lock()
	id := identity
	s.identity = &id
	s.token = token
	s.loading = false
	s.mu.Unlock()

	slog.Info("Session started", "email", identity.Email, "role", identity.Role)
	if err := s.write(identity, token); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return nil
}

func (s *Store) write(identity Identity, token string) error {
	if err := s.fs.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(s.fs, s.path(IdentityFile), data, 0600); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.path(TokenFile), []byte(token), 0600)
}

// Logout clears the session in memory and on disk. It is purely local.
func (s *Store) Logout() error {
	s.mu.Lock()
	wasAuthenticated := s.identity != nil && s.token != ""
	s.identity = nil
	s.token = ""
	s.loading = false
	s.mu.Unlock()

	if wasAuthenticated {
		slog.Info("Session ended")
	}
	return s.remove()
}

func (s *Store) remove() error {
	var errs []error
	for _, name := range []string{IdentityFile, TokenFile} {
		if err := s.fs.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Token: s.token, Loading: s.loading}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

// IsAuthenticated reports whether both identity and token are present
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// Token returns the bearer token, or "" when logged out. Store satisfies
// client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns a copy of the logged-in identity, or nil
func (s *Store) Identity() *Identity {
	return s.Snapshot().Identity
}

// Loading reports whether the initial restore has not finished yet
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}
