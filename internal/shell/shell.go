// Package shell provides the interactive hlockit REPL.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"
)

// CommandRunner executes an hlockit command and returns its output. The
// cmd package supplies one that dispatches in-process, which keeps this
// package free of a cyclic import on the command tree.
type CommandRunner func(ctx context.Context, args []string, stdout, stderr io.Writer) error

// Session manages an interactive hlockit shell session.
type Session struct {
	// DefaultImages is prepended as the positional argument when a workflow
	// command is entered without one.
	DefaultImages  string
	LastOutput     string
	CommandHistory []string
	HistoryFile    string
	StartTime      time.Time

	// KnownCommands is the list of top-level commands for completion.
	KnownCommands []string

	runner CommandRunner
}

// workflowCommands take an images directory as their positional argument.
var workflowCommands = map[string]bool{
	"extract": true, "pairs": true, "match": true, "reconstruct": true, "run": true,
}

// NewSession creates a new interactive session dispatching through runner.
func NewSession(runner CommandRunner) (*Session, error) {
	if runner == nil {
		return nil, fmt.Errorf("shell runner not configured")
	}

	home, _ := os.UserHomeDir()
	histFile := filepath.Join(home, ".hlockit", "shell_history")

	os.MkdirAll(filepath.Dir(histFile), 0755)

	return &Session{
		runner:      runner,
		HistoryFile: histFile,
		StartTime:   time.Now(),
		KnownCommands: []string{
			"extract", "pairs", "match", "reconstruct", "run",
			"presets", "report", "watch", "doctor", "config",
			"completion", "version",
			"help", "exit", "quit", "history", "set",
		},
	}, nil
}

// Run starts the REPL loop. Blocks until 'exit' or Ctrl+D.
func (s *Session) Run(ctx context.Context) error {
	completer := readline.NewPrefixCompleter(s.buildCompleter()...)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "hlockit> ",
		HistoryFile:     s.HistoryFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Printf("hlockit — Interactive Shell\n")
	fmt.Println("Type 'help' for commands, 'exit' to quit.")
	fmt.Println()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		s.CommandHistory = append(s.CommandHistory, line)

		switch {
		case line == "exit" || line == "quit":
			elapsed := time.Since(s.StartTime).Round(time.Second)
			fmt.Printf("\nSession ended. %d commands run in %s.\n",
				len(s.CommandHistory)-1, elapsed)
			return nil
		case line == "help":
			s.printHelp()
		case line == "history":
			for i, cmd := range s.CommandHistory {
				fmt.Printf("  %d  %s\n", i+1, cmd)
			}
		case strings.HasPrefix(line, "set images "):
			s.DefaultImages = strings.TrimPrefix(line, "set images ")
			fmt.Printf("Default image directory: %s\n", s.DefaultImages)
		default:
			output, err := s.Eval(ctx, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			} else if output != "" {
				fmt.Print(output)
				if !strings.HasSuffix(output, "\n") {
					fmt.Println()
				}
			}
		}
	}

	return nil
}

// Eval runs a single command string and returns its output. The session's
// default image directory fills in a missing positional argument for
// workflow commands.
func (s *Session) Eval(ctx context.Context, command string) (string, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return "", nil
	}

	if workflowCommands[args[0]] && s.DefaultImages != "" && !hasPositional(args[1:]) {
		args = append([]string{args[0], s.DefaultImages}, args[1:]...)
	}

	var stdout, stderr bytes.Buffer
	err := s.runner(ctx, args, &stdout, &stderr)

	output := stdout.String()
	s.LastOutput = output

	if errOut := stderr.String(); errOut != "" && err != nil {
		return output, fmt.Errorf("%s", strings.TrimSpace(errOut))
	}

	return output, err
}

// hasPositional reports whether args contain a non-flag argument.
func hasPositional(args []string) bool {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return true
		}
	}
	return false
}

// Complete returns tab-completion candidates for the given input.
func (s *Session) Complete(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return s.KnownCommands
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return s.KnownCommands
	}

	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		prefix := parts[0]
		var matches []string
		for _, cmd := range s.KnownCommands {
			if strings.HasPrefix(cmd, prefix) {
				matches = append(matches, cmd)
			}
		}
		sort.Strings(matches)
		return matches
	}

	parent := parts[0]
	subcommands := s.subcommandsFor(parent)
	if len(parts) == 2 && !strings.HasSuffix(input, " ") {
		prefix := parts[1]
		var matches []string
		for _, sub := range subcommands {
			if strings.HasPrefix(sub, prefix) {
				matches = append(matches, sub)
			}
		}
		return matches
	}

	if strings.HasSuffix(input, " -") || (len(parts) > 0 && strings.HasPrefix(parts[len(parts)-1], "-")) {
		return []string{"--feature", "--matcher", "--pairing", "--json", "--verbose", "--help"}
	}

	return nil
}

func (s *Session) subcommandsFor(parent string) []string {
	subs := map[string][]string{
		"presets": {"features", "matchers", "retrievals"},
		"config":  {"init", "show", "path", "validate"},
		"report":  {"clear"},
	}
	return subs[parent]
}

func (s *Session) buildCompleter() []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range s.KnownCommands {
		subs := s.subcommandsFor(cmd)
		if len(subs) == 0 {
			items = append(items, readline.PcItem(cmd))
			continue
		}
		var subItems []readline.PrefixCompleterInterface
		for _, sub := range subs {
			subItems = append(subItems, readline.PcItem(sub))
		}
		items = append(items, readline.PcItem(cmd, subItems...))
	}
	return items
}

func (s *Session) printHelp() {
	fmt.Println("Available commands:")
	fmt.Println()
	fmt.Println("  Workflows:  extract, pairs, match, reconstruct, run")
	fmt.Println("  Inspect:    presets, report, doctor, version")
	fmt.Println("  Automation: watch")
	fmt.Println("  Setup:      config, completion")
	fmt.Println()
	fmt.Println("Shell commands:")
	fmt.Println("  set images <dir>  Default image directory for workflow commands")
	fmt.Println("  history           Show commands run in this session")
	fmt.Println("  exit              End the session")
}
