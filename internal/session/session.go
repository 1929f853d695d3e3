package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrAlreadyActive is returned when activating while another environment is active
var ErrAlreadyActive = errors.New("another environment is already active")

// Activation is the persisted record of an active environment
type Activation struct {
	Workspace   string
	EnvPath     string // Normalized with a leading "./"
	SessionID   string
	ActivatedAt time.Time
}

// Store persists activations so that separate ruyienv processes agree on
// which environment of a workspace is active.
type Store interface {
	ActiveEnvironment(workspace string) (Activation, bool, error)
	SetActiveEnvironment(a Activation) error
	ClearActiveEnvironment(workspace string) error
}

// Session tracks the active environment of one workspace. It is set on
// activation and cleared on deactivation.
type Session struct {
	mu        sync.Mutex
	workspace string
	store     Store
	active    Activation
	hasActive bool
}

// New creates a session for workspace, loading any persisted activation
func New(workspace string, store Store) (*Session, error) {
	s := &Session{workspace: workspace, store: store}
	if store == nil {
		return s, nil
	}

	a, ok, err := store.ActiveEnvironment(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s.active, s.hasActive = a, ok
	return s, nil
}

// Workspace returns the workspace root the session belongs to
func (s *Session) Workspace() string {
	return s.workspace
}

// Activate marks relPath as the active environment
func (s *Session) Activate(relPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	envPath := Normalize(relPath)
	if s.hasActive && s.active.EnvPath != envPath {
		return fmt.Errorf("%w: %s", ErrAlreadyActive, s.active.EnvPath)
	}

	a := Activation{
		Workspace:   s.workspace,
		EnvPath:     envPath,
		SessionID:   uuid.NewString(),
		ActivatedAt: time.Now(),
	}
	if s.store != nil {
		if err := s.store.SetActiveEnvironment(a); err != nil {
			return err
		}
	}
	s.active, s.hasActive = a, true
	return nil
}

// Deactivate clears the active environment; it is a no-op when none is active
func (s *Session) Deactivate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasActive {
		return nil
	}
	if s.store != nil {
		if err := s.store.ClearActiveEnvironment(s.workspace); err != nil {
			return err
		}
	}
	s.active, s.hasActive = Activation{}, false
	return nil
}

// Active returns the active environment path ("./rel") or "" when none is active
func (s *Session) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.EnvPath
}

// Current returns the full activation record
func (s *Session) Current() (Activation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.hasActive
}

// IsActive reports whether relPath names the active environment
func (s *Session) IsActive(relPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasActive && s.active.EnvPath == Normalize(relPath)
}

// Normalize prefixes relPath with "./"
func Normalize(relPath string) string {
	return "./" + Strip(relPath)
}

// Strip removes a leading "./" from relPath
func Strip(relPath string) string {
	return strings.TrimPrefix(relPath, "./")
}
