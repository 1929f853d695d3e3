package remove

import (
	"fmt"

	"github.com/gabssanto/ruyienv/internal/session"
	"github.com/gabssanto/ruyienv/internal/venv"
)

// Prompter asks the user which environment to remove and whether to go on
type Prompter interface {
	Select(envs []venv.Environment) (venv.Environment, error)
	Confirm(env venv.Environment) (bool, error)
}

// Run orchestrates the interactive removal of one environment from envs
// and returns the environment that was removed.
func (r *Remover) Run(envs []venv.Environment, prompter Prompter) (venv.Environment, error) {
	if len(envs) == 0 {
		return venv.Environment{}, ErrNoEnvironments
	}

	selected, err := prompter.Select(envs)
	if err != nil {
		return venv.Environment{}, err
	}

	// Refuse before asking for confirmation
	if r.session.IsActive(selected.Path) {
		return selected, fmt.Errorf("%w: %s", ErrActiveEnvironment, session.Normalize(selected.Path))
	}

	ok, err := prompter.Confirm(selected)
	if err != nil {
		return selected, err
	}
	if !ok {
		return selected, ErrCancelled
	}

	return selected, r.Remove(selected)
}
