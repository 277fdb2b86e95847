package cmd

import (
	"context"
	"io"
)

// runForShell executes one command line in-process for the interactive
// shell, with output redirected into the session's buffers. A fresh command
// tree is built per call so flag state never leaks between evaluations.
func runForShell(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}
