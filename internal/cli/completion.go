package cli

import "github.com/spf13/cobra"

// newCompletionCmd creates the completion command.
func (cli *CLI) newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for gssh.

Besides commands and flags, the scripts complete profile names for
'gssh use' and 'gssh remove' by listing ~/.ssh/profiles at completion time.

To load completions:

Bash:
  $ source <(gssh completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ gssh completion bash > /etc/bash_completion.d/gssh
  # macOS:
  $ gssh completion bash > $(brew --prefix)/etc/bash_completion.d/gssh

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ gssh completion zsh > "${fpath[1]}/_gssh"
  # You may need to start a new shell for this to take effect.

Fish:
  $ gssh completion fish | source
  # To load completions for each session, execute once:
  $ gssh completion fish > ~/.config/fish/completions/gssh.fish

PowerShell:
  PS> gssh completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> gssh completion powershell > gssh.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
	return cmd
}
