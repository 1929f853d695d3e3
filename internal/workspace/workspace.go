// Package workspace resolves the root directory that environments are scanned in.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoWorkspace is returned when no usable workspace directory is given
var ErrNoWorkspace = errors.New("no workspace open")

// Resolve converts arg (empty or "." for the current directory, "~" for
// the home directory) into an absolute path of an existing directory.
func Resolve(arg string) (string, error) {
	path := arg
	if path == "" || path == "." {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: failed to get current directory: %v", ErrNoWorkspace, err)
		}
		path = cwd
	}

	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("%w: cannot access %s: %v", ErrNoWorkspace, absPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: not a directory: %s", ErrNoWorkspace, absPath)
	}

	return absPath, nil
}
