// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/theoryctl/internal/meta"
)

const bashCompletionScript = `# bash completion for theoryctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_theoryctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "ls show add edit rm import export validate history diff restore watch console completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--data -d --backend --yes -y"
    local query="--attrs -a --color -c --filter -f --local -l --output -o --sort -s --titles -t --tldr --schema"

    case "$cmd" in
        ls)
            local opts="$common $query --search -q --category"
            ;;
        show)
            local opts="$common --output -o"
            ;;
        add|edit)
            local opts="$common --set"
            ;;
        validate)
            local opts="$common --strict"
            ;;
        history)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "ls save rm clear usage" -- "$cur") )
                return 0
            fi
            local opts="$common $query --message -m"
            ;;
        diff)
            local opts="$common --detail --color -c"
            ;;
        import|export)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi
    if [[ "$prev" == "--backend" ]]; then
        COMPREPLY=( $(compgen -W "local memory s3 redis sqlite" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _theoryctl theoryctl
`

const zshCompletionScript = `#compdef theoryctl

_theoryctl() {
  local -a cmds
  cmds=(
    'ls:list theories'
    'show:show one theory'
    'add:add a theory'
    'edit:change fields of a theory'
    'rm:delete a theory'
    'import:replace the data file with a collection document'
    'export:write the collection with export metadata'
    'validate:check a collection document'
    'history:manage the version history'
    'diff:compare two versions of the data'
    'restore:make a stored version the current data'
    'watch:print change notifications from other editors'
    'console:interactive query console'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-d --data)'{-d,--data}'[data file]:file:_files'
  '--backend[history backend]:backend:(local memory s3 redis sqlite)'
  '(-y --yes)'{-y,--yes}'[do not ask for confirmation]'
  )

  local -a query
  query=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--schema[dump schema]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'theoryctl commands' cmds
    return
  fi

  case $words[2] in
    ls)
      _arguments -C $common $query \
        '(-q --search)'{-q,--search}'[free-text search]:text' \
        '--category[category key]:category'
      ;;
    add|edit)
      _arguments -C $common '*--set[field=value]:assignment'
      ;;
    history)
      _arguments -C $common $query '1: :(ls save rm clear usage)'
      ;;
    diff)
      _arguments -C $common '--detail[field level delta]' '(-c --color)'{-c,--color}'[colored delta]'
      ;;
    import|export|validate)
      _arguments -C $common '1:file:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _theoryctl theoryctl
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	w := writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(w, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(w, bashCompletionScript)
		default:
			fmt.Fprintln(errWriter(cmd), "usage: theoryctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "theoryctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
