// Package shell provides the "hlockit shell" interactive REPL command.
package shell

import (
	"fmt"

	"github.com/spf13/cobra"

	shellpkg "github.com/mapforge/hlockit/internal/shell"
)

// NewCommand creates the "shell" command. The runner executes one command
// line in-process and is injected by the root package to avoid an import
// cycle.
func NewCommand(runner shellpkg.CommandRunner) *cobra.Command {
	var (
		evalCmd   string
		imagesDir string
	)

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive hlockit shell",
		Long: `Start an interactive REPL with tab completion and session defaults.

Set a default image directory once ('set images <dir>') and every workflow
command picks it up without repeating the path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := shellpkg.NewSession(runner)
			if err != nil {
				return err
			}
			if imagesDir != "" {
				session.DefaultImages = imagesDir
			}
			if evalCmd != "" {
				output, err := session.Eval(cmd.Context(), evalCmd)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), output)
				return nil
			}
			return session.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&evalCmd, "eval", "", "Run a single command and exit")
	cmd.Flags().StringVar(&imagesDir, "images", "", "Default image directory for the session")
	return cmd
}
