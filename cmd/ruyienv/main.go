package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/gabssanto/ruyienv/internal/config"
	"github.com/gabssanto/ruyienv/internal/db"
	"github.com/gabssanto/ruyienv/internal/logger"
)

// Version is set at build time via ldflags
var Version = "dev"

const usage = `ruyienv - Find and remove ruyi virtual environments in a workspace

Usage:
  ruyienv list [path] [-f text|yaml|paths]   List virtual environments
  ruyienv remove [path] [-e env] [-y]        Delete a virtual environment
  ruyienv activate [path] [-e env]           Open a shell with an environment activated
  ruyienv deactivate [path]                  Clear the recorded active environment
  ruyienv status [path]                      Show the active environment
  ruyienv history [path] [--all]             Show removed environments
  ruyienv prune [--dry-run]                  Forget activations of deleted environments
  ruyienv completions <shell>                Generate shell completions (bash/zsh/fish)
  ruyienv debug                              Show debug information
  ruyienv help                               Show this help message
  ruyienv version                            Show version information

Environments:
  A virtual environment is a directory at most two levels below the
  workspace containing bin/ruyi-activate with a RUYI_VENV_PROMPT= line.
  [path] defaults to the current directory.

Sessions:
  'ruyienv activate' opens a new shell with the environment's bin directory
  first on PATH. While that shell runs, the environment is active and
  'ruyienv remove' refuses to delete it. Type 'exit' to leave the session.

Examples:
  ruyienv list                        List environments in the current directory
  ruyienv list ~/work/board -f yaml   List environments as YAML
  ruyienv remove                      Pick an environment and delete it
  ruyienv remove -e venvs/rv64 -y     Delete without prompting
  ruyienv activate -e venv            Start an activated shell
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
		os.Exit(1)
	}
}

// app carries what every command needs
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	store  *db.Store
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// stateCommands need the configuration and the database
var stateCommands = []string{
	"list", "ls", "remove", "rm", "activate", "deactivate",
	"status", "history", "prune", "debug",
}

func unknownCommand(command string) error {
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q (run 'ruyienv help' for usage)", command)
}

func run(argv []string) error {
	if len(argv) < 1 {
		fmt.Print(usage)
		return nil
	}

	command := argv[0]
	args := argv[1:]

	// Commands that need no state
	switch command {
	case "help", "--help", "-h":
		fmt.Print(usage)
		return nil
	case "version", "--version", "-v":
		fmt.Printf("ruyienv version %s\n", Version)
		return nil
	case "completions":
		return handleCompletions(os.Stdout, args)
	default:
		if !slices.Contains(stateCommands, command) {
			return unknownCommand(command)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.NoColor {
		color.NoColor = true
	}

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() { _ = store.Close() }()

	a := &app{
		cfg:    cfg,
		log:    logger.New(os.Stderr, cfg),
		store:  store,
		fs:     afero.NewOsFs(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	switch command {
	case "list", "ls":
		return a.handleList(args)
	case "remove", "rm":
		return a.handleRemove(args)
	case "activate":
		return a.handleActivate(args)
	case "deactivate":
		return a.handleDeactivate(args)
	case "status":
		return a.handleStatus(args)
	case "history":
		return a.handleHistory(args)
	case "prune":
		return a.handlePrune(args)
	case "debug":
		return a.handleDebug()
	default:
		return unknownCommand(command)
	}
}
