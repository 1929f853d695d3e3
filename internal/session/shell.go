package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gabssanto/ruyienv/internal/venv"
)

// ShellOptions configures the activated subshell
type ShellOptions struct {
	Shell  string // Defaults to $SHELL, then /bin/sh
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    []string // Base environment, defaults to os.Environ()
}

// Shell activates env and runs a shell in the workspace with the
// environment's bin directory first on PATH. The session is deactivated
// when the shell exits. A non-zero exit status of the shell itself is not
// treated as an error.
func (s *Session) Shell(ctx context.Context, env venv.Environment, opts ShellOptions) error {
	if err := s.Activate(env.Path); err != nil {
		return err
	}
	defer func() {
		if err := s.Deactivate(); err != nil {
			fmt.Fprintf(stderrOf(opts), "Warning: failed to clear active environment: %v\n", err)
		}
	}()

	current, _ := s.Current()

	shell := opts.Shell
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, opts.Args...)
	cmd.Dir = s.workspace
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	cmd.Env = ActivatedEnv(opts.Env, s.workspace, env, current.SessionID)

	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("failed to run shell: %w", err)
	}
	return nil
}

// ActivatedEnv returns base (or the process environment when base is nil)
// with the variables of an activated environment set.
func ActivatedEnv(base []string, workspace string, env venv.Environment, sessionID string) []string {
	if base == nil {
		base = os.Environ()
	}

	envDir := filepath.Join(workspace, filepath.FromSlash(env.Path))
	binDir := filepath.Join(envDir, venv.MarkerDir)

	path := binDir
	overrides := map[string]string{
		"RUYI_VENV":         envDir,
		"RUYI_VENV_NAME":    env.Label,
		"RUYIENV_SESSION":   sessionID,
		"RUYIENV_WORKSPACE": workspace,
	}

	out := make([]string, 0, len(base)+len(overrides)+1)
	for _, kv := range base {
		key, value, _ := strings.Cut(kv, "=")
		if key == "PATH" {
			if value != "" {
				path = binDir + string(os.PathListSeparator) + value
			}
			continue
		}
		if _, ok := overrides[key]; ok {
			continue
		}
		out = append(out, kv)
	}

	out = append(out, "PATH="+path)
	for _, key := range []string{"RUYI_VENV", "RUYI_VENV_NAME", "RUYIENV_SESSION", "RUYIENV_WORKSPACE"} {
		out = append(out, key+"="+overrides[key])
	}
	return out
}

func stderrOf(opts ShellOptions) io.Writer {
	if opts.Stderr != nil {
		return opts.Stderr
	}
	return os.Stderr
}
