package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/fizzfib/internal/config"
)

// FlagCompletion describes one flag for the completion generators.
type FlagCompletion struct {
	Long      string   // without "--"
	Short     string   // without "-"
	Help      string
	Values    []string // static suggestions
	ValueName string   // non-empty when the flag takes a value
	IsFile    bool
	IsAlgo    bool // values are the registered algorithms plus "all"
}

var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Long: "task", Help: "Task to run", Values: []string{config.TaskFibonacci, config.TaskFizzBuzz}, ValueName: "task"},
	{Short: "n", Help: "Fibonacci index or FizzBuzz bound", ValueName: "number"},
	{Long: "algo", Help: "Fibonacci algorithm", IsAlgo: true, ValueName: "algorithm"},
	{Long: "timeout", Help: "Maximum computation time", Values: []string{"30s", "1m", "5m", "30m"}, ValueName: "duration"},
	{Long: "threshold", Help: "Parallel multiplication threshold in bits", Values: []string{"-1", "1024", "2048", "4096", "8192"}, ValueName: "bits"},
	{Long: "last-digits", Help: "Compute only the last K digits", ValueName: "digits"},
	{Long: "calculate", Short: "c", Help: "Display the computed value"},
	{Long: "verbose", Short: "v", Help: "Display the full value"},
	{Long: "details", Short: "d", Help: "Display size and digit analysis"},
	{Long: "quiet", Short: "q", Help: "Print only the result"},
	{Long: "output", Short: "o", Help: "Write the result to a file", IsFile: true, ValueName: "file"},
	{Long: "no-color", Help: "Disable colors"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level"},
	{Long: "tui", Help: "Interactive dashboard"},
	{Long: "interactive", Help: "Interactive REPL"},
	{Long: "serve", Help: "Start the HTTP server"},
	{Long: "addr", Help: "Listen address", ValueName: "address"},
	{Long: "stats-db", Help: "SQLite file for request statistics", IsFile: true, ValueName: "file"},
	{Long: "max-n", Help: "Largest n accepted by the server", ValueName: "number"},
	{Long: "env-file", Help: "Dotenv file", IsFile: true, ValueName: "file"},
	{Long: "completion", Help: "Print a completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell"},
}

// GenerateCompletion writes the completion script for shell.
func GenerateCompletion(out io.Writer, shell string, algorithms []string) error {
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(algorithms)
	case "zsh":
		script = zshCompletion(algorithms)
	case "fish":
		script = fishCompletion(algorithms)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
	if _, err := io.WriteString(out, script); err != nil {
		return fmt.Errorf("write %s completion: %w", shell, err)
	}
	return nil
}

func flagNames(f FlagCompletion) []string {
	var names []string
	if f.Long != "" {
		names = append(names, "--"+f.Long)
	}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func bashCompletion(algorithms []string) string {
	var opts []string
	var cases strings.Builder
	for _, f := range flagRegistry {
		opts = append(opts, flagNames(f)...)

		var reply string
		switch {
		case f.IsAlgo:
			reply = `COMPREPLY=( $(compgen -W "${algorithms}" -- "${cur}") )`
		case f.IsFile:
			reply = `COMPREPLY=( $(compgen -f -- "${cur}") )`
		case len(f.Values) > 0:
			reply = fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " "))
		default:
			continue
		}
		fmt.Fprintf(&cases, "        %s)\n            %s\n            return 0\n            ;;\n", strings.Join(flagNames(f), "|"), reply)
	}

	return fmt.Sprintf(`# bash completion for fizzfib
# source this file from ~/.bashrc

_fizzfib_completions() {
    local cur prev opts algorithms
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="%s"
    algorithms="%s %s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
    fi
    return 0
}

complete -F _fizzfib_completions fizzfib
`, strings.Join(opts, " "), strings.Join(algorithms, " "), config.AlgoAll, cases.String())
}

func zshCompletion(algorithms []string) string {
	var args []string
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	return fmt.Sprintf(`#compdef fizzfib
# zsh completion for fizzfib; place in a directory listed in $fpath

_fizzfib() {
    local -a algorithms
    algorithms=(%s %s)

    _arguments -s \
%s
}

_fizzfib "$@"
`, strings.Join(algorithms, " "), config.AlgoAll, strings.Join(args, " \\\n"))
}

func zshArgEntry(f FlagCompletion) string {
	var value string
	switch {
	case f.IsFile:
		value = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsAlgo:
		value = fmt.Sprintf(":%s:($algorithms)", f.ValueName)
	case len(f.Values) > 0:
		value = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		value = fmt.Sprintf(":%s:", f.ValueName)
	}

	switch {
	case f.Long != "" && f.Short != "":
		return fmt.Sprintf("        '(-%[1]s --%[2]s)'{-%[1]s,--%[2]s}'[%[3]s]%[4]s'", f.Short, f.Long, f.Help, value)
	case f.Long != "":
		return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, value)
	default:
		return fmt.Sprintf("        '-%s[%s]%s'", f.Short, f.Help, value)
	}
}

func fishCompletion(algorithms []string) string {
	lines := []string{
		"# fish completion for fizzfib",
		"# save as ~/.config/fish/completions/fizzfib.fish",
		"complete -c fizzfib -f",
	}
	for _, f := range flagRegistry {
		parts := []string{"complete -c fizzfib"}
		if f.Short != "" {
			parts = append(parts, "-s "+f.Short)
		}
		if f.Long != "" {
			parts = append(parts, "-l "+f.Long)
		}
		parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))
		switch {
		case f.IsFile:
			parts = append(parts, "-rF")
		case f.IsAlgo:
			parts = append(parts, fmt.Sprintf("-xa '%s %s'", strings.Join(algorithms, " "), config.AlgoAll))
		case len(f.Values) > 0:
			parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
		case f.ValueName != "":
			parts = append(parts, "-x")
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n") + "\n"
}
