// Package remove implements the guarded deletion of discovered environments.
package remove

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/gabssanto/ruyienv/internal/db"
	"github.com/gabssanto/ruyienv/internal/session"
	"github.com/gabssanto/ruyienv/internal/venv"
)

var (
	// ErrActiveEnvironment is returned when asked to remove the active environment
	ErrActiveEnvironment = errors.New("cannot delete the currently active environment")
	// ErrUnsafePath is returned when a relative path could escape the workspace
	ErrUnsafePath = errors.New("unsafe environment path")
	// ErrCancelled is returned when the user declines the removal
	ErrCancelled = errors.New("removal cancelled")
	// ErrNoEnvironments is returned when there is nothing to choose from
	ErrNoEnvironments = errors.New("no virtual environments found")
)

// History records completed removals
type History interface {
	RecordRemoval(r db.Removal) error
}

// Remover deletes environments below a session's workspace
type Remover struct {
	fs      afero.Fs
	session *session.Session
	history History
	log     zerolog.Logger
	now     func() time.Time
}

// New creates a Remover. history may be nil.
func New(fsys afero.Fs, sess *session.Session, history History, log zerolog.Logger) *Remover {
	return &Remover{
		fs:      fsys,
		session: sess,
		history: history,
		log:     log,
		now:     time.Now,
	}
}

// ResolvePath turns an environment path relative to root into an absolute
// path, stripping a leading "./" first.
func ResolvePath(root, relPath string) (string, error) {
	stripped := session.Strip(relPath)
	if !venv.IsSafeRelPath(stripped) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, relPath)
	}
	return filepath.Join(root, filepath.FromSlash(stripped)), nil
}

// Remove recursively deletes env. The active environment is never removed.
func (r *Remover) Remove(env venv.Environment) error {
	if r.session.IsActive(env.Path) {
		return fmt.Errorf("%w: %s", ErrActiveEnvironment, session.Normalize(env.Path))
	}

	root := r.session.Workspace()
	target, err := ResolvePath(root, env.Path)
	if err != nil {
		return err
	}

	if err := r.fs.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to delete virtual environment: %w", err)
	}

	r.log.Info().Str("path", env.Path).Str("root", root).Msg("Removed environment")

	if r.history != nil {
		err := r.history.RecordRemoval(db.Removal{
			Workspace: root,
			EnvPath:   env.Path,
			Label:     env.Label,
			RemovedAt: r.now(),
		})
		if err != nil {
			r.log.Warn().Err(err).Str("path", env.Path).Msg("Failed to record removal")
		}
	}

	return nil
}
