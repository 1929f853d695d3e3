package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gabssanto/ruyienv/internal/config"
	"github.com/gabssanto/ruyienv/internal/db"
	"github.com/gabssanto/ruyienv/internal/session"
	"github.com/gabssanto/ruyienv/internal/venv"
)

func init() {
	color.NoColor = true
}

// newTestApp builds an app on the real filesystem with a temp database;
// stdin is a buffer, so prompts are unavailable.
func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "ruyienv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var out bytes.Buffer
	return &app{
		cfg:    config.Config{LogLevel: "warn", LogFormat: config.LogFormatJSON},
		log:    zerolog.Nop(),
		store:  store,
		fs:     afero.NewOsFs(),
		stdin:  &bytes.Buffer{},
		stdout: &out,
		stderr: &bytes.Buffer{},
	}, &out
}

func makeEnv(t *testing.T, root, rel, label string) {
	t.Helper()
	bin := filepath.Join(root, filepath.FromSlash(rel), venv.MarkerDir)
	fs := afero.NewOsFs()
	require.NoError(t, fs.MkdirAll(bin, 0755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(bin, venv.MarkerFile), []byte("RUYI_VENV_PROMPT="+label+"\n"), 0644))
}

func TestPrintEnvironments(t *testing.T) {
	envs := []venv.Environment{{Path: "venv", Label: "main"}, {Path: "proj/rv64", Label: "board"}}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printEnvironments(&buf, "/ws", envs, formatText))
		assert.Contains(t, buf.String(), "Virtual environments in /ws:")
		assert.Contains(t, buf.String(), "proj/rv64")
		assert.Contains(t, buf.String(), "Total: 2")
	})

	t.Run("text empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printEnvironments(&buf, "/ws", nil, formatText))
		assert.Equal(t, "No virtual environments found in /ws\n", buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printEnvironments(&buf, "/ws", envs, formatYAML))

		var got listing
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, listing{Workspace: "/ws", Environments: envs}, got)
	})

	t.Run("paths", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printEnvironments(&buf, "/ws", envs, formatPaths))
		assert.Equal(t, "venv\nproj/rv64\n", buf.String())
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, printEnvironments(&bytes.Buffer{}, "/ws", envs, "xml"))
	})
}

func TestHandleList(t *testing.T) {
	a, out := newTestApp(t)
	root := t.TempDir()
	makeEnv(t, root, "venv", "main")

	require.NoError(t, a.handleList([]string{root, "--format", "paths"}))
	assert.Equal(t, "venv\n", out.String())
}

func TestHandleRemoveWithFlags(t *testing.T) {
	a, out := newTestApp(t)
	root := t.TempDir()
	makeEnv(t, root, "proj/old", "old")
	makeEnv(t, root, "keep", "keep")

	require.NoError(t, a.handleRemove([]string{root, "--env", "./proj/old", "--yes"}))
	assert.Contains(t, out.String(), "Deleted virtual environment proj/old")
	assert.NoDirExists(t, filepath.Join(root, "proj", "old"))
	assert.DirExists(t, filepath.Join(root, "keep"))

	removals, err := a.store.ListRemovals(root)
	require.NoError(t, err)
	require.Len(t, removals, 1)
	assert.Equal(t, "proj/old", removals[0].EnvPath)
}

func TestHandleRemoveRefusesActive(t *testing.T) {
	a, _ := newTestApp(t)
	root := t.TempDir()
	makeEnv(t, root, "venv", "main")

	resolved, err := filepath.Abs(root)
	require.NoError(t, err)
	sess, err := session.New(resolved, a.store)
	require.NoError(t, err)
	require.NoError(t, sess.Activate("venv"))

	err = a.handleRemove([]string{root, "-e", "venv", "-y"})
	assert.ErrorContains(t, err, "currently active")
	assert.DirExists(t, filepath.Join(root, "venv"))
}

func TestHandleRemoveNeedsTerminalOrFlags(t *testing.T) {
	a, _ := newTestApp(t)
	root := t.TempDir()
	makeEnv(t, root, "venv", "main")

	assert.ErrorContains(t, a.handleRemove([]string{root, "-e", "venv"}), "--yes")
	assert.ErrorContains(t, a.handleRemove([]string{root, "-y"}), "--env")
}

func TestHandleRemoveUnknownEnv(t *testing.T) {
	a, _ := newTestApp(t)
	root := t.TempDir()
	makeEnv(t, root, "venv", "main")

	assert.ErrorContains(t, a.handleRemove([]string{root, "-e", "../escape", "-y"}), "no virtual environment at")
}

func TestHandleDeactivate(t *testing.T) {
	a, out := newTestApp(t)
	root := t.TempDir()

	sess, err := session.New(root, a.store)
	require.NoError(t, err)
	require.NoError(t, sess.Activate("venv"))

	require.NoError(t, a.handleDeactivate([]string{root}))
	assert.Contains(t, out.String(), "Deactivated ./venv")

	_, ok, err := a.store.ActiveEnvironment(root)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandleCompletions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, handleCompletions(&buf, []string{"fish"}))
	assert.Contains(t, buf.String(), "complete -c ruyienv")

	assert.Error(t, handleCompletions(&buf, nil))
}

func TestParseRejectsExtraArgs(t *testing.T) {
	fs := newFlagSet("list", &bytes.Buffer{})
	done, err := parse(fs, []string{"a", "b"})
	assert.True(t, done)
	assert.Error(t, err)
}

func TestRunUnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "frobnicate"`)
}

func TestRunStatelessCommands(t *testing.T) {
	assert.NoError(t, run(nil))
	assert.NoError(t, run([]string{"version"}))
	assert.Error(t, run([]string{"completions", "tcsh"}))
}
