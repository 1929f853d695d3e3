package venv

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	logKeyRoot   = "root"
	logKeyPath   = "path"
	logKeyReason = "reason"
)

// Scanner discovers environments at most MaxDepth directories below a root.
// It only reads from its filesystem and keeps no state between scans.
type Scanner struct {
	fs  afero.Fs
	log zerolog.Logger
}

// NewScanner creates a Scanner reading from fsys
func NewScanner(fsys afero.Fs, log zerolog.Logger) *Scanner {
	return &Scanner{fs: fsys, log: log}
}

// Scan returns every environment found under root, depth-1 candidates
// first, then depth-2 candidates grouped by parent, each in listing order.
//
// Scan never fails: an unreadable root yields an empty list, and any other
// problem only drops the affected candidate.
func (s *Scanner) Scan(root string) []Environment {
	candidates, err := s.candidates(root)
	if err != nil {
		s.log.Error().Err(err).Str(logKeyRoot, root).Msg("Failed to scan workspace")
		return []Environment{}
	}

	outcomes := make([]outcome, 0, len(candidates))
	for _, candidate := range candidates {
		outcomes = append(outcomes, s.evaluate(root, candidate))
	}

	envs := make([]Environment, 0)
	for _, o := range outcomes {
		if o.env != nil {
			envs = append(envs, *o.env)
			continue
		}
		s.report(o)
	}

	s.log.Debug().
		Str(logKeyRoot, root).
		Int("candidates", len(candidates)).
		Int("environments", len(envs)).
		Msg("Scan completed")

	return envs
}

// Find rescans root and returns the environment at relPath. A leading
// "./" on relPath is ignored.
func (s *Scanner) Find(root, relPath string) (Environment, bool) {
	return Lookup(s.Scan(root), relPath)
}

// Lookup returns the environment of envs at relPath, ignoring a leading "./"
func Lookup(envs []Environment, relPath string) (Environment, bool) {
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "./")
	for _, env := range envs {
		if env.Path == relPath {
			return env, true
		}
	}
	return Environment{}, false
}

// candidates lists directory paths at depth 1 and 2 below root. Only a
// failure to list root itself is returned.
func (s *Scanner) candidates(root string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, root)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var level1 []string
	for _, entry := range entries {
		if entry.IsDir() {
			level1 = append(level1, entry.Name())
		}
	}

	var level2 []string
	for _, parent := range level1 {
		children, err := afero.ReadDir(s.fs, filepath.Join(root, parent))
		if err != nil {
			s.log.Warn().Err(err).Str(logKeyPath, parent).Msg("Skipping unreadable directory")
			continue
		}
		for _, child := range children {
			if child.IsDir() {
				level2 = append(level2, path.Join(parent, child.Name()))
			}
		}
	}

	return append(level1, level2...), nil
}

// evaluate decides whether one candidate is an environment
func (s *Scanner) evaluate(root, candidate string) outcome {
	o := outcome{candidate: candidate}

	if !IsSafeRelPath(candidate) {
		o.reason = SkipUnsafePath
		return o
	}

	markerPath := filepath.Join(root, filepath.FromSlash(candidate), MarkerDir, MarkerFile)
	// Any stat failure means the marker cannot be seen, which is absence
	info, err := s.fs.Stat(markerPath)
	if err != nil {
		o.reason = SkipNoMarker
		if !errors.Is(err, fs.ErrNotExist) {
			o.err = err
		}
		return o
	}
	if info.IsDir() {
		o.reason = SkipMarkerUnreadable
		o.err = fmt.Errorf("%s is a directory", markerPath)
		return o
	}

	data, err := afero.ReadFile(s.fs, markerPath)
	if err != nil {
		o.reason = SkipMarkerUnreadable
		o.err = err
		return o
	}

	label, ok := ParseLabel(string(data))
	if !ok {
		o.reason = SkipNoPrompt
		return o
	}

	o.env = &Environment{Path: candidate, Label: label}
	return o
}

// report logs a skipped candidate at the level its reason deserves
func (s *Scanner) report(o outcome) {
	event := s.log.Debug()
	msg := "Candidate is not an environment"
	if o.reason.warns() {
		event = s.log.Warn()
		msg = "Skipping candidate"
		if o.reason == SkipUnsafePath {
			msg = "Rejected unsafe candidate path"
		}
	}
	if o.err != nil {
		event = event.Err(o.err)
	}
	event.Str(logKeyPath, o.candidate).Str(logKeyReason, string(o.reason)).Msg(msg)
}
