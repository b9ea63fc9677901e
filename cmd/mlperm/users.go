package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/mlperm/internal/audit"
	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/endpoints"
	"github.com/nebari-dev/mlperm/internal/filter"
	"github.com/nebari-dev/mlperm/internal/validate"
)

var (
	listSearch string
	listGlob   string
)

func addListFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive substring filter on name")
	cmd.Flags().StringVar(&listGlob, "glob", "", "Glob filter on name, e.g. 'team-*'")
}

func listFilter() filter.Options {
	return filter.Options{Search: listSearch, Glob: listGlob}
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Browse users",
}

var usersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := session.client.ListUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing users: %w", err)
		}
		users = filter.Apply(users, func(u cliclient.User) string { return u.Username }, listFilter())
		return printUsers(cmd, users)
	},
}

var usersGetCmd = &cobra.Command{
	Use:               "get <username>",
	Short:             "Show a user",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeUsernames,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := session.client.GetUser(cmd.Context(), args[0])
		if err != nil {
			if cliclient.IsNotFound(err) {
				return fmt.Errorf("user %q not found", args[0])
			}
			return err
		}
		return printUsers(cmd, []cliclient.User{*u})
	},
}

func printUsers(cmd *cobra.Command, users []cliclient.User) error {
	if jsonOutput() {
		return printJSON(cmd, users)
	}
	if len(users) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No users found.")
		return nil
	}
	w := newTable(cmd)
	fmt.Fprintln(w, "USERNAME\tDISPLAY NAME\tADMIN\tSERVICE ACCOUNT\tGROUPS")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.Username, u.DisplayName, yesNo(u.IsAdmin), yesNo(u.IsServiceAccount), strings.Join(u.GroupNames(), ","))
	}
	return w.Flush()
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Browse groups",
}

var groupsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List groups",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := session.client.ListGroups(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing groups: %w", err)
		}
		groups = filter.Apply(groups, func(g cliclient.Group) string { return g.Name }, listFilter())
		if jsonOutput() {
			return printJSON(cmd, groups)
		}
		if len(groups) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No groups found.")
			return nil
		}
		w := newTable(cmd)
		fmt.Fprintln(w, "NAME")
		for _, g := range groups {
			fmt.Fprintln(w, g.Name)
		}
		return w.Flush()
	},
}

var groupsMembersCmd = &cobra.Command{
	Use:   "members <group>",
	Short: "List the members of a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := session.client.ListGroupMembers(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("listing members of %s: %w", args[0], err)
		}
		return printUsers(cmd, users)
	},
}

var (
	saDisplayName string
	saAdmin       bool
)

var serviceAccountsCmd = &cobra.Command{
	Use:     "service-accounts",
	Aliases: []string{"sa"},
	Short:   "Manage service accounts (admin)",
}

var serviceAccountsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List service accounts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := session.client.ListServiceAccounts(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing service accounts: %w", err)
		}
		return printUsers(cmd, accounts)
	},
}

var serviceAccountsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a service account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := cliclient.CreateServiceAccountRequest{Username: args[0], DisplayName: saDisplayName, IsAdmin: saAdmin}
		sa, err := session.client.CreateServiceAccount(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("creating service account: %w", err)
		}
		recordHistory(audit.ActionCreateServiceAcct, endpoints.ServiceAccount(sa.Username), req)
		fmt.Fprintf(cmd.ErrOrStderr(), "Created service account %s\n", sa.Username)
		return nil
	},
}

var serviceAccountsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a service account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.client.DeleteServiceAccount(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting service account: %w", err)
		}
		recordHistory(audit.ActionDeleteServiceAcct, endpoints.ServiceAccount(args[0]), nil)
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted service account %s\n", args[0])
		return nil
	},
}

var (
	tokenUser    string
	tokenExpires string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage access tokens",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue an access token",
	Long: `Issues an access token for yourself or, as an administrator, for another
user or service account. The token is printed once.

Examples:
  mlperm token create --expires 30d
  mlperm token create --user ci-bot --expires 2027-01-31`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		exp, err := parseExpiry(now, tokenExpires)
		if err != nil {
			return err
		}
		if err := validate.TokenExpiration(now, exp); err != nil {
			return err
		}

		req := cliclient.AccessTokenRequest{Username: tokenUser, Expiration: exp.UTC()}
		tok, err := session.client.CreateAccessToken(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("creating access token: %w", err)
		}
		target := tokenUser
		if target == "" {
			target = session.user.Username
		}
		recordHistory(audit.ActionCreateAccessToken, endpoints.AccessToken.Path(), map[string]string{"username": target, "expiration": exp.UTC().Format(time.RFC3339)})

		if jsonOutput() {
			return printJSON(cmd, tok)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
		fmt.Fprintf(cmd.ErrOrStderr(), "Token for %s expires %s. It will not be shown again.\n", target, tok.Expiration.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

// parseExpiry accepts "<n>d", a Go duration, YYYY-MM-DD or RFC 3339.
func parseExpiry(now time.Time, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil {
			return now.AddDate(0, 0, n), nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(d), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, &validate.FieldError{Field: "expiration", Message: fmt.Sprintf("cannot parse %q; use 30d, 720h, 2027-01-31 or RFC 3339", s)}
}

func init() {
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersGetCmd)
	addListFilterFlags(usersListCmd)

	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsMembersCmd)
	addListFilterFlags(groupsListCmd)

	serviceAccountsCreateCmd.Flags().StringVar(&saDisplayName, "display-name", "", "Display name")
	serviceAccountsCreateCmd.Flags().BoolVar(&saAdmin, "admin", false, "Grant administrator rights")
	serviceAccountsCmd.AddCommand(serviceAccountsListCmd)
	serviceAccountsCmd.AddCommand(serviceAccountsCreateCmd)
	serviceAccountsCmd.AddCommand(serviceAccountsDeleteCmd)

	tokenCreateCmd.Flags().StringVar(&tokenUser, "user", "", "Issue for another user (admin)")
	tokenCreateCmd.Flags().StringVar(&tokenExpires, "expires", "30d", "Expiration: 30d, 720h, 2027-01-31 or RFC 3339")
	tokenCmd.AddCommand(tokenCreateCmd)
}
