package completions

import (
	"fmt"
	"strings"
)

// Bash generates bash completion script
func Bash() string {
	return `# ruyienv bash completion script
# Add to ~/.bashrc: eval "$(ruyienv completions bash)"

_ruyienv_completions() {
    local cur prev commands envs
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    commands="list remove activate deactivate status history prune completions debug help version"

    case "${prev}" in
        ruyienv)
            COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )
            return 0
            ;;
        --env|-e)
            # Environments of the current workspace
            envs=$(ruyienv list --format paths 2>/dev/null)
            COMPREPLY=( $(compgen -W "${envs}" -- "${cur}") )
            return 0
            ;;
        --format|-f)
            COMPREPLY=( $(compgen -W "text yaml paths" -- "${cur}") )
            return 0
            ;;
        list|remove|activate|deactivate|status|history)
            if [[ "${cur}" == -* ]]; then
                COMPREPLY=( $(compgen -W "--env --yes --format" -- "${cur}") )
            else
                COMPREPLY=( $(compgen -d -- "${cur}") )
            fi
            return 0
            ;;
        completions)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "${cur}") )
            return 0
            ;;
        prune)
            COMPREPLY=( $(compgen -W "--dry-run" -- "${cur}") )
            return 0
            ;;
        *)
            ;;
    esac

    COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )
}

complete -F _ruyienv_completions ruyienv
`
}

// Zsh generates zsh completion script
func Zsh() string {
	return `#compdef ruyienv
# ruyienv zsh completion script
# Add to ~/.zshrc: eval "$(ruyienv completions zsh)"

_ruyienv() {
    local -a commands envs

    commands=(
        'list:List virtual environments in a workspace'
        'remove:Delete a virtual environment'
        'activate:Open a shell with an environment activated'
        'deactivate:Clear the recorded active environment'
        'status:Show the active environment'
        'history:Show removed environments'
        'prune:Forget activations of deleted environments'
        'completions:Generate shell completions'
        'debug:Show debug information'
        'help:Show help'
        'version:Show version'
    )

    if (( $+commands[ruyienv] )); then
        envs=(${(f)"$(ruyienv list --format paths 2>/dev/null)"})
    fi

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case $state in
        command)
            _describe -t commands 'ruyienv commands' commands
            ;;
        args)
            case $words[2] in
                remove)
                    _arguments \
                        '(-e --env)'{-e,--env}'[environment path]:environment:($envs)' \
                        '(-y --yes)'{-y,--yes}'[skip confirmation]' \
                        '*:workspace:_files -/'
                    ;;
                activate)
                    _arguments \
                        '(-e --env)'{-e,--env}'[environment path]:environment:($envs)' \
                        '*:workspace:_files -/'
                    ;;
                list)
                    _arguments \
                        '(-f --format)'{-f,--format}'[output format]:format:(text yaml paths)' \
                        '*:workspace:_files -/'
                    ;;
                deactivate|status|history)
                    _files -/
                    ;;
                completions)
                    _values 'shells' 'bash' 'zsh' 'fish'
                    ;;
                prune)
                    _values 'flags' '--dry-run[preview changes]'
                    ;;
            esac
            ;;
    esac
}

_ruyienv "$@"
`
}

// Fish generates fish completion script
func Fish() string {
	return `# ruyienv fish completion script
# Add to ~/.config/fish/completions/ruyienv.fish

complete -c ruyienv -f

# Commands
complete -c ruyienv -n "__fish_use_subcommand" -a "list" -d "List virtual environments"
complete -c ruyienv -n "__fish_use_subcommand" -a "remove" -d "Delete a virtual environment"
complete -c ruyienv -n "__fish_use_subcommand" -a "activate" -d "Open an activated shell"
complete -c ruyienv -n "__fish_use_subcommand" -a "deactivate" -d "Clear the active environment"
complete -c ruyienv -n "__fish_use_subcommand" -a "status" -d "Show the active environment"
complete -c ruyienv -n "__fish_use_subcommand" -a "history" -d "Show removed environments"
complete -c ruyienv -n "__fish_use_subcommand" -a "prune" -d "Forget activations of deleted environments"
complete -c ruyienv -n "__fish_use_subcommand" -a "completions" -d "Generate shell completions"
complete -c ruyienv -n "__fish_use_subcommand" -a "debug" -d "Show debug information"
complete -c ruyienv -n "__fish_use_subcommand" -a "help" -d "Show help"
complete -c ruyienv -n "__fish_use_subcommand" -a "version" -d "Show version"

function __ruyienv_envs
    ruyienv list --format paths 2>/dev/null
end

# Workspace directories
complete -c ruyienv -n "__fish_seen_subcommand_from list remove activate deactivate status history" -a "(__fish_complete_directories)"

# Flags
complete -c ruyienv -n "__fish_seen_subcommand_from remove activate" -s e -l env -x -a "(__ruyienv_envs)" -d "Environment path"
complete -c ruyienv -n "__fish_seen_subcommand_from remove" -s y -l yes -d "Skip confirmation"
complete -c ruyienv -n "__fish_seen_subcommand_from list" -s f -l format -x -a "text yaml paths" -d "Output format"
complete -c ruyienv -n "__fish_seen_subcommand_from prune" -l dry-run -d "Preview changes"

complete -c ruyienv -n "__fish_seen_subcommand_from completions" -a "bash zsh fish" -d "Shell"
`
}

// Generate returns the completion script for the given shell
func Generate(shell string) (string, error) {
	switch strings.ToLower(shell) {
	case "bash":
		return Bash(), nil
	case "zsh":
		return Zsh(), nil
	case "fish":
		return Fish(), nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", shell)
	}
}
