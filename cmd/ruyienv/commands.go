package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/gabssanto/ruyienv/internal/completions"
	"github.com/gabssanto/ruyienv/internal/config"
	"github.com/gabssanto/ruyienv/internal/remove"
	"github.com/gabssanto/ruyienv/internal/session"
	"github.com/gabssanto/ruyienv/internal/venv"
	"github.com/gabssanto/ruyienv/internal/workspace"
)

// Output formats of the list command
const (
	formatText  = "text"
	formatYAML  = "yaml"
	formatPaths = "paths"
)

// listing is the YAML document printed by 'list -f yaml'
type listing struct {
	Workspace    string             `yaml:"workspace"`
	Environments []venv.Environment `yaml:"environments"`
}

// newFlagSet creates a flag set that reports errors instead of exiting
func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parse parses args and reports whether the command should stop (help requested)
func parse(fs *pflag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return true, err
	}
	if fs.NArg() > 1 {
		return true, fmt.Errorf("usage: ruyienv %s [path]", fs.Name())
	}
	return false, nil
}

func (a *app) scanner() *venv.Scanner {
	return venv.NewScanner(a.fs, a.log)
}

// openSession resolves the workspace argument and loads its session
func (a *app) openSession(arg string) (*session.Session, error) {
	root, err := workspace.Resolve(arg)
	if err != nil {
		return nil, err
	}
	return session.New(root, a.store)
}

// interactive reports whether prompts can be shown
func (a *app) interactive() bool {
	f, ok := a.stdin.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func (a *app) handleList(args []string) error {
	fs := newFlagSet("list", a.stderr)
	format := fs.StringP("format", "f", formatText, "output format: text, yaml or paths")
	if done, err := parse(fs, args); done {
		return err
	}

	root, err := workspace.Resolve(fs.Arg(0))
	if err != nil {
		return err
	}

	envs := a.scanner().Scan(root)
	return printEnvironments(a.stdout, root, envs, *format)
}

func printEnvironments(w io.Writer, root string, envs []venv.Environment, format string) error {
	switch format {
	case formatText:
		if len(envs) == 0 {
			fmt.Fprintf(w, "No virtual environments found in %s\n", root)
			return nil
		}
		fmt.Fprintf(w, "Virtual environments in %s:\n", root)
		for _, env := range envs {
			fmt.Fprintf(w, "  %-30s %s\n", env.Path, color.CyanString(env.Label))
		}
		fmt.Fprintf(w, "\nTotal: %d\n", len(envs))
		return nil
	case formatYAML:
		out, err := yaml.Marshal(listing{Workspace: root, Environments: envs})
		if err != nil {
			return fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		_, err = w.Write(out)
		return err
	case formatPaths:
		for _, env := range envs {
			fmt.Fprintln(w, env.Path)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (supported: text, yaml, paths)", format)
	}
}

// presetPrompter selects an environment chosen on the command line
type presetPrompter struct {
	remove.FormPrompter
	env venv.Environment
}

func (p presetPrompter) Select([]venv.Environment) (venv.Environment, error) {
	return p.env, nil
}

// choose resolves the --env flag or prompts for an environment
func (a *app) choose(root, envFlag string, envs []venv.Environment, base remove.FormPrompter) (remove.Prompter, error) {
	if envFlag != "" {
		env, ok := venv.Lookup(envs, envFlag)
		if !ok {
			return nil, fmt.Errorf("no virtual environment at %s in %s", envFlag, root)
		}
		return presetPrompter{FormPrompter: base, env: env}, nil
	}
	if !a.interactive() {
		return nil, errors.New("no terminal available for selection; pass --env")
	}
	return base, nil
}

func (a *app) handleRemove(args []string) error {
	fs := newFlagSet("remove", a.stderr)
	envFlag := fs.StringP("env", "e", "", "environment path relative to the workspace")
	yes := fs.BoolP("yes", "y", false, "delete without asking for confirmation")
	if done, err := parse(fs, args); done {
		return err
	}

	sess, err := a.openSession(fs.Arg(0))
	if err != nil {
		return err
	}
	root := sess.Workspace()

	envs := a.scanner().Scan(root)
	if len(envs) == 0 {
		fmt.Fprintln(a.stdout, "No virtual environments found.")
		return nil
	}

	if !*yes && !a.interactive() {
		return errors.New("no terminal available for confirmation; pass --yes")
	}

	prompter, err := a.choose(root, *envFlag, envs, remove.FormPrompter{
		Title:     "Select a virtual environment to delete",
		AssumeYes: *yes,
	})
	if err != nil {
		return err
	}

	remover := remove.New(a.fs, sess, a.store, a.log)
	removed, err := remover.Run(envs, prompter)
	switch {
	case errors.Is(err, remove.ErrCancelled):
		fmt.Fprintln(a.stdout, "Cancelled. Nothing was deleted.")
		return nil
	case errors.Is(err, remove.ErrActiveEnvironment):
		return fmt.Errorf("cannot delete the currently active virtual environment %s; deactivate it first", session.Normalize(removed.Path))
	case err != nil:
		return err
	}

	fmt.Fprintf(a.stdout, "%s Deleted virtual environment %s\n", color.GreenString("✓"), removed.Path)
	return nil
}

func (a *app) handleActivate(args []string) error {
	fs := newFlagSet("activate", a.stderr)
	envFlag := fs.StringP("env", "e", "", "environment path relative to the workspace")
	if done, err := parse(fs, args); done {
		return err
	}

	sess, err := a.openSession(fs.Arg(0))
	if err != nil {
		return err
	}
	root := sess.Workspace()

	if active := sess.Active(); active != "" {
		return fmt.Errorf("%s is already active in %s (run 'ruyienv deactivate' if that session is gone)", active, root)
	}

	envs := a.scanner().Scan(root)
	if len(envs) == 0 {
		return fmt.Errorf("no virtual environments found in %s", root)
	}

	prompter, err := a.choose(root, *envFlag, envs, remove.FormPrompter{Title: "Select a virtual environment to activate"})
	if err != nil {
		return err
	}
	env, err := prompter.Select(envs)
	if err != nil {
		if errors.Is(err, remove.ErrCancelled) {
			return nil
		}
		return err
	}

	fmt.Fprintf(a.stdout, "Activated %s (%s)\n", color.CyanString(env.Path), env.Label)
	fmt.Fprintln(a.stdout, "Type 'exit' to leave the session")
	fmt.Fprintln(a.stdout, "---")

	err = sess.Shell(context.Background(), env, session.ShellOptions{
		Stdin:  a.stdin,
		Stdout: a.stdout,
		Stderr: a.stderr,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "\nSession ended. %s is no longer active.\n", env.Path)
	return nil
}

func (a *app) handleDeactivate(args []string) error {
	fs := newFlagSet("deactivate", a.stderr)
	if done, err := parse(fs, args); done {
		return err
	}

	sess, err := a.openSession(fs.Arg(0))
	if err != nil {
		return err
	}

	active := sess.Active()
	if active == "" {
		fmt.Fprintln(a.stdout, "No active environment.")
		return nil
	}
	if err := sess.Deactivate(); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Deactivated %s\n", active)
	return nil
}

func (a *app) handleStatus(args []string) error {
	fs := newFlagSet("status", a.stderr)
	if done, err := parse(fs, args); done {
		return err
	}

	sess, err := a.openSession(fs.Arg(0))
	if err != nil {
		return err
	}

	current, ok := sess.Current()
	if !ok {
		fmt.Fprintf(a.stdout, "No active environment in %s\n", sess.Workspace())
		return nil
	}

	fmt.Fprintf(a.stdout, "Workspace:   %s\n", current.Workspace)
	fmt.Fprintf(a.stdout, "Active:      %s\n", color.GreenString(current.EnvPath))
	fmt.Fprintf(a.stdout, "Since:       %s\n", current.ActivatedAt.Format(time.RFC1123))
	fmt.Fprintf(a.stdout, "Session:     %s\n", current.SessionID)
	if os.Getenv("RUYIENV_SESSION") == current.SessionID {
		fmt.Fprintln(a.stdout, "(this shell)")
	}
	return nil
}

func (a *app) handleHistory(args []string) error {
	fs := newFlagSet("history", a.stderr)
	all := fs.Bool("all", false, "show removals from every workspace")
	if done, err := parse(fs, args); done {
		return err
	}

	var root string
	if !*all {
		r, err := workspace.Resolve(fs.Arg(0))
		if err != nil {
			return err
		}
		root = r
	}

	removals, err := a.store.ListRemovals(root)
	if err != nil {
		return err
	}

	if len(removals) == 0 {
		fmt.Fprintln(a.stdout, "No environments removed yet.")
		return nil
	}

	for _, r := range removals {
		line := fmt.Sprintf("  %s  %-30s %s", r.RemovedAt.Format("2006-01-02 15:04"), r.EnvPath, r.Label)
		if *all {
			line += "  " + color.HiBlackString(r.Workspace)
		}
		fmt.Fprintln(a.stdout, line)
	}
	fmt.Fprintf(a.stdout, "\nTotal: %d\n", len(removals))
	return nil
}

func (a *app) handlePrune(args []string) error {
	fs := newFlagSet("prune", a.stderr)
	dryRun := fs.BoolP("dry-run", "n", false, "only show what would be removed")
	if done, err := parse(fs, args); done {
		return err
	}

	result, err := a.store.Prune(*dryRun, func(dir string) bool {
		ok, err := afero.DirExists(a.fs, dir)
		return err == nil && ok
	})
	if err != nil {
		return err
	}

	if result.RemovedCount == 0 {
		fmt.Fprintln(a.stdout, "No stale activations found. Everything is clean!")
		return nil
	}

	if *dryRun {
		fmt.Fprintf(a.stdout, "Would remove %d stale activation(s):\n", result.RemovedCount)
	} else {
		fmt.Fprintf(a.stdout, "Removed %d stale activation(s):\n", result.RemovedCount)
	}
	for _, act := range result.Removed {
		fmt.Fprintf(a.stdout, "  %s  %s\n", act.Workspace, act.EnvPath)
	}
	return nil
}

func handleCompletions(w io.Writer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ruyienv completions <shell>\nSupported shells: bash, zsh, fish")
	}

	script, err := completions.Generate(args[0])
	if err != nil {
		return err
	}

	fmt.Fprint(w, script)
	return nil
}

func (a *app) handleDebug() error {
	w := a.stdout
	configDir, _ := config.Dir()

	fmt.Fprintln(w, "ruyienv Debug Information")
	fmt.Fprintln(w, "=========================")
	fmt.Fprintf(w, "Version:     %s\n", Version)
	fmt.Fprintf(w, "OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "Go version:  %s\n", runtime.Version())
	fmt.Fprintf(w, "Config dir:  %s\n", configDir)
	fmt.Fprintf(w, "Database:    %s\n", a.cfg.DBPath)

	if info, err := os.Stat(a.cfg.DBPath); err == nil {
		fmt.Fprintf(w, "DB size:     %d bytes\n", info.Size())
	} else {
		fmt.Fprintf(w, "DB size:     (not found)\n")
	}

	fmt.Fprintf(w, "Log level:   %s (%s)\n", a.cfg.Level(), a.cfg.LogFormat)

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "(unknown)"
	}
	fmt.Fprintf(w, "Shell:       %s\n", shell)

	if id := os.Getenv("RUYIENV_SESSION"); id != "" {
		fmt.Fprintf(w, "In session:  %s\n", id)
		fmt.Fprintf(w, "Environment: %s\n", os.Getenv("RUYI_VENV"))
		fmt.Fprintf(w, "Workspace:   %s\n", os.Getenv("RUYIENV_WORKSPACE"))
	}

	activations, err := a.store.ListActivations()
	if err == nil {
		fmt.Fprintf(w, "\nActive environments: %d\n", len(activations))
		for _, act := range activations {
			fmt.Fprintf(w, "  %s\n", strings.TrimSuffix(act.Workspace, "/")+"/"+session.Strip(act.EnvPath))
		}
	}

	return nil
}
