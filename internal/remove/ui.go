package remove

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/gabssanto/ruyienv/internal/venv"
)

// FormPrompter asks through interactive huh forms
type FormPrompter struct {
	// Title of the selection list
	Title string
	// AssumeYes skips the confirmation form
	AssumeYes bool
}

// Select presents a single-select list of environments; the label is the
// description and the path identifies the choice.
func (p FormPrompter) Select(envs []venv.Environment) (venv.Environment, error) {
	if len(envs) == 0 {
		return venv.Environment{}, ErrNoEnvironments
	}

	title := p.Title
	if title == "" {
		title = "Select a virtual environment"
	}

	options := make([]huh.Option[int], len(envs))
	for i, env := range envs {
		options[i] = huh.NewOption(OptionLabel(env), i)
	}

	var selected int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(title).
				Description("Use / to filter, enter to select").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return venv.Environment{}, wrapAbort(err)
	}
	return envs[selected], nil
}

// Confirm asks before the non-reversible deletion
func (p FormPrompter) Confirm(env venv.Environment) (bool, error) {
	if p.AssumeYes {
		return true, nil
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete virtual environment %s?", env.Path)).
				Description("This removes the whole directory and cannot be undone.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, wrapAbort(err)
	}
	return confirmed, nil
}

// OptionLabel renders an environment for selection lists
func OptionLabel(env venv.Environment) string {
	if env.Label == "" {
		return env.Path
	}
	return fmt.Sprintf("%s (%s)", env.Path, env.Label)
}

func wrapAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return fmt.Errorf("selection cancelled: %w", err)
}
