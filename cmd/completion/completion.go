// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for hlockit.

Install instructions:
  Bash:       hlockit completion bash > /etc/bash_completion.d/hlockit
              echo 'source <(hlockit completion bash)' >> ~/.bashrc
  Zsh:        hlockit completion zsh > ~/.zsh/completions/_hlockit
  Fish:       hlockit completion fish > ~/.config/fish/completions/hlockit.fish
  PowerShell: hlockit completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				fmt.Fprintln(os.Stdout, "# hlockit bash completion")
				fmt.Fprintln(os.Stdout, "# Install: hlockit completion bash > /etc/bash_completion.d/hlockit")
				fmt.Fprintln(os.Stdout, "# Or:      echo 'source <(hlockit completion bash)' >> ~/.bashrc")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				fmt.Fprintln(os.Stdout, "# hlockit zsh completion")
				fmt.Fprintln(os.Stdout, "# Install: hlockit completion zsh > ~/.zsh/completions/_hlockit")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				fmt.Fprintln(os.Stdout, "# hlockit fish completion")
				fmt.Fprintln(os.Stdout, "# Install: hlockit completion fish > ~/.config/fish/completions/hlockit.fish")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				fmt.Fprintln(os.Stdout, "# hlockit PowerShell completion")
				fmt.Fprintln(os.Stdout, "# Install: hlockit completion powershell >> $PROFILE")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", args[0])
			}
		},
	}
	return cmd
}
