package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/config"
	"github.com/nebari-dev/mlperm/internal/endpoints"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for mlperm.

To load completions:

Bash:
  $ source <(mlperm completion bash)

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ mlperm completion zsh > "${fpath[1]}/_mlperm"

Fish:
  $ mlperm completion fish | source

PowerShell:
  PS> mlperm completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

// completeResourceKinds returns completion for --resource values.
func completeResourceKinds(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, k := range endpoints.ResourceKinds {
		if strings.HasPrefix(k.String(), toComplete) {
			names = append(names, k.String())
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeLevels returns completion for --level values.
func completeLevels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, l := range cliclient.Levels {
		if strings.HasPrefix(string(l), strings.ToUpper(toComplete)) {
			names = append(names, string(l))
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeUsernames returns completion for usernames.
// This makes a network call to the configured server.
func completeUsernames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if cfg == nil {
		c, err := config.Load()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		cfg = c
	}
	client, err := getAuthenticatedClient()
	if err != nil {
		// Not logged in or no server configured - fail silently
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	users, err := client.ListUsers(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	for _, u := range users {
		if strings.HasPrefix(u.Username, toComplete) {
			names = append(names, u.Username)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
