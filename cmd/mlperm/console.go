package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/mlperm/internal/permview"
	"github.com/nebari-dev/mlperm/internal/store"
	"github.com/nebari-dev/mlperm/internal/tui"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Browse and edit a principal's permissions interactively",
	Long: `Opens a terminal view of a user's or group's permissions with one tab per
resource kind. Administrators can switch to regex permissions with r.

Examples:
  mlperm console --user alice
  mlperm console --group data-science`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := principalFromFlags()
		if err != nil {
			return err
		}

		dark := false
		if s, err := store.New(); err == nil {
			dark, err = s.DarkMode()
			if err != nil {
				slog.Debug("reading theme", "error", err)
			}
			s.Close()
		}

		page := permview.New(session.client, p, session.user.IsAdmin)
		return tui.Run(cmd.Context(), tui.Options{Page: page, Dark: dark})
	},
}

func init() {
	consoleCmd.Flags().StringVar(&principalUser, "user", "", "Username to inspect")
	consoleCmd.Flags().StringVar(&principalGroup, "group", "", "Group to inspect")
	consoleCmd.RegisterFlagCompletionFunc("user", completeUsernames)
}
