package main

import (
	"github.com/spf13/cobra"
)

// NewCompletionCommand prints shell completion scripts.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Print a shell completion script for volumetric",
		Long: `Print a completion script for bash, zsh, fish or powershell.

Completions cover subcommands and flags, the names of tracked volumes for
"volumetric rm", and commit indexes for "volumetric show". They are read from
the repository selected with --repository, so they follow -C.

  bash:        source <(volumetric completion bash)
  zsh:         volumetric completion zsh > "${fpath[1]}/_volumetric"
  fish:        volumetric completion fish > ~/.config/fish/completions/volumetric.fish
  powershell:  volumetric completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
