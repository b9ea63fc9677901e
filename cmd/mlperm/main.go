package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/config"
	"github.com/nebari-dev/mlperm/internal/guard"
	"github.com/nebari-dev/mlperm/internal/logger"
)

// Version is set via ldflags at build time
var Version = "dev"

var (
	serverFlag   string
	outputFlag   string
	logLevelFlag string
)

// cfg is loaded before every command runs.
var cfg *config.Config

// session is populated for commands bound to a guarded route.
var session struct {
	client *cliclient.Client
	user   *cliclient.User
}

var rootCmd = &cobra.Command{
	Use:   "mlperm",
	Short: "mlperm - permission management for MLflow",
	Long:  `mlperm manages users, groups and resource permissions on an MLflow server with the auth plugin.`,
	Example: `  # Log in and look around
  mlperm login https://mlflow.company.com --username alice
  mlperm whoami
  mlperm experiments list

  # Grant a group edit access to a registered model
  mlperm perms grant --group data-science --resource models --id churn-model --level EDIT

  # Browse a user's permissions interactively
  mlperm console --user bob`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "MLflow server URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Output format: table or json")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddGroup(
		&cobra.Group{ID: "access", Title: "Permission Commands:"},
		&cobra.Group{ID: "directory", Title: "Directory Commands:"},
		&cobra.Group{ID: "admin", Title: "Admin Commands:"},
		&cobra.Group{ID: "session", Title: "Session Commands:"},
	)

	permsCmd.GroupID = "access"
	patternsCmd.GroupID = "access"
	whoCmd.GroupID = "access"
	consoleCmd.GroupID = "access"

	usersCmd.GroupID = "directory"
	groupsCmd.GroupID = "directory"
	tokenCmd.GroupID = "directory"
	experimentsCmd.GroupID = "directory"
	modelsCmd.GroupID = "directory"
	promptsCmd.GroupID = "directory"
	gatewayCmd.GroupID = "directory"

	serviceAccountsCmd.GroupID = "admin"
	webhooksCmd.GroupID = "admin"
	trashCmd.GroupID = "admin"

	loginCmd.GroupID = "session"
	logoutCmd.GroupID = "session"
	whoamiCmd.GroupID = "session"
	configCmd.GroupID = "session"
	themeCmd.GroupID = "session"
	historyCmd.GroupID = "session"

	rootCmd.AddCommand(permsCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(whoCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(experimentsCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(serviceAccountsCmd)
	rootCmd.AddCommand(webhooksCmd)
	rootCmd.AddCommand(trashCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)

	setRoute(whoamiCmd, guard.Home)
	setRoute(usersCmd, guard.Users)
	setRoute(groupsCmd, guard.Groups)
	setRoute(serviceAccountsCmd, guard.ServiceAccounts)
	setRoute(tokenCmd, guard.AccessTokens)
	setRoute(experimentsCmd, guard.Experiments)
	setRoute(modelsCmd, guard.Models)
	setRoute(promptsCmd, guard.Prompts)
	setRoute(gatewayCmd, guard.Gateway)
	setRoute(permsCmd, guard.Permissions)
	setRoute(whoCmd, guard.Permissions)
	setRoute(consoleCmd, guard.Permissions)
	setRoute(patternsCmd, guard.PatternPermissions)
	setRoute(webhooksCmd, guard.Webhooks)
	setRoute(trashCmd, guard.Trash)
}

// setup loads configuration, initializes logging and, for guarded commands,
// authenticates against the server.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if serverFlag != "" {
		c.Server.URL = serverFlag
	}
	if outputFlag != "" {
		c.Output.Format = outputFlag
	}
	if logLevelFlag != "" {
		c.Log.Level = logLevelFlag
	}
	if err := c.Validate(); err != nil {
		return err
	}
	logger.Init(c.Log.Format, c.Log.Level, cmd.ErrOrStderr())
	cfg = c

	session.client, session.user = nil, nil
	route, ok := routeFor(cmd)
	if !ok {
		return nil
	}

	client, err := getAuthenticatedClient()
	if err != nil {
		return err
	}
	user, err := authorize(cmd, client, route)
	if err != nil {
		return err
	}
	session.client, session.user = client, user
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
