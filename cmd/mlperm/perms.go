package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/mlperm/internal/audit"
	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/endpoints"
	"github.com/nebari-dev/mlperm/internal/validate"
)

var (
	principalUser  string
	principalGroup string
	resourceFlag   string
	resourceID     string
	levelFlag      string

	patternID       int
	patternRegex    string
	patternPriority int
)

func addPrincipalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&principalUser, "user", "", "Username whose permissions to manage")
	cmd.PersistentFlags().StringVar(&principalGroup, "group", "", "Group whose permissions to manage")
	cmd.PersistentFlags().StringVarP(&resourceFlag, "resource", "r", "experiments", "Resource kind: experiments, models, prompts, gateway-endpoints, gateway-secrets, gateway-models")
	cmd.RegisterFlagCompletionFunc("resource", completeResourceKinds)
	cmd.RegisterFlagCompletionFunc("user", completeUsernames)
}

// principalFromFlags returns the principal named by exactly one of --user or --group.
func principalFromFlags() (cliclient.Principal, error) {
	switch {
	case principalUser != "" && principalGroup != "":
		return cliclient.Principal{}, fmt.Errorf("--user and --group are mutually exclusive")
	case principalUser != "":
		return cliclient.UserPrincipal(principalUser), nil
	case principalGroup != "":
		return cliclient.GroupPrincipal(principalGroup), nil
	default:
		return cliclient.Principal{}, fmt.Errorf("one of --user or --group is required")
	}
}

func targetFromFlags() (cliclient.Principal, endpoints.ResourceKind, error) {
	p, err := principalFromFlags()
	if err != nil {
		return p, 0, err
	}
	kind, err := endpoints.ParseResourceKind(resourceFlag)
	return p, kind, err
}

func targetPath(p cliclient.Principal, kind endpoints.ResourceKind, pattern bool, id string) string {
	return endpoints.Resolve(endpoints.Target{
		Principal:     p.Kind,
		Resource:      kind,
		Pattern:       pattern,
		PrincipalName: p.Name,
		ResourceID:    id,
	})
}

var permsCmd = &cobra.Command{
	Use:     "perms",
	Aliases: []string{"permissions"},
	Short:   "Manage exact resource permissions of a user or group",
	Long: `Manage exact resource permissions of a user or group.

Examples:
  mlperm perms list --user alice --resource models
  mlperm perms grant --group ds --resource experiments --id 12 --level EDIT
  mlperm perms revoke --user alice --resource prompts --id summarizer`,
}

var permsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List permissions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, kind, err := targetFromFlags()
		if err != nil {
			return err
		}
		grants, err := session.client.ListPermissions(cmd.Context(), p, kind)
		if err != nil {
			return fmt.Errorf("listing %s permissions of %s: %w", kind, p, err)
		}
		if jsonOutput() {
			return printJSON(cmd, grants)
		}
		if len(grants) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "No %s permissions for %s.\n", kind, p)
			return nil
		}
		return printGrants(cmd, grants)
	},
}

func printGrants(cmd *cobra.Command, grants []cliclient.Grant) error {
	w := newTable(cmd)
	fmt.Fprintln(w, "ID\tNAME\tPERMISSION\tSOURCE")
	for _, g := range grants {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.ID, g.Name, g.Permission, g.Kind)
	}
	return w.Flush()
}

var permsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the permission held on one resource",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, kind, err := targetFromFlags()
		if err != nil {
			return err
		}
		if resourceID == "" {
			return fmt.Errorf("--id is required")
		}
		grant, err := session.client.GetPermission(cmd.Context(), p, kind, resourceID)
		if cliclient.IsNotFound(err) {
			return fmt.Errorf("%s has no %s permission on %s", p, kind, resourceID)
		}
		if err != nil {
			return fmt.Errorf("reading permission: %w", err)
		}
		if jsonOutput() {
			return printJSON(cmd, grant)
		}
		return printGrants(cmd, []cliclient.Grant{*grant})
	},
}

// levelMutation builds grant and edit, which share flags and differ only in the call.
func levelMutation(use, short, action string, call func(cmd *cobra.Command, p cliclient.Principal, kind endpoints.ResourceKind, id string, level cliclient.Level) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, kind, err := targetFromFlags()
			if err != nil {
				return err
			}
			if resourceID == "" {
				return fmt.Errorf("--id is required")
			}
			level, err := validate.ParseLevel(levelFlag)
			if err != nil {
				return err
			}
			if err := call(cmd, p, kind, resourceID, level); err != nil {
				return err
			}
			recordHistory(action, targetPath(p, kind, false, resourceID), map[string]string{"permission": string(level)})
			fmt.Fprintf(cmd.ErrOrStderr(), "%s now has %s on %s %s\n", p, level, kind, resourceID)
			return nil
		},
	}
}

var permsGrantCmd = levelMutation("grant", "Grant a permission", audit.ActionGrantPermission,
	func(cmd *cobra.Command, p cliclient.Principal, kind endpoints.ResourceKind, id string, level cliclient.Level) error {
		return session.client.GrantPermission(cmd.Context(), p, kind, id, level)
	})

var permsEditCmd = levelMutation("edit", "Change the level of an existing permission", audit.ActionUpdatePermission,
	func(cmd *cobra.Command, p cliclient.Principal, kind endpoints.ResourceKind, id string, level cliclient.Level) error {
		return session.client.UpdatePermission(cmd.Context(), p, kind, id, level)
	})

var permsRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke a permission",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, kind, err := targetFromFlags()
		if err != nil {
			return err
		}
		if resourceID == "" {
			return fmt.Errorf("--id is required")
		}
		if err := session.client.RevokePermission(cmd.Context(), p, kind, resourceID); err != nil {
			return fmt.Errorf("revoking: %w", err)
		}
		recordHistory(audit.ActionRevokePermission, targetPath(p, kind, false, resourceID), nil)
		fmt.Fprintf(cmd.ErrOrStderr(), "Revoked %s on %s %s\n", p, kind, resourceID)
		return nil
	},
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Manage regex permissions of a user or group (admin)",
	Long: `Regex permissions apply a level to every resource whose name matches.
Higher priority patterns win when several match.

Examples:
  mlperm patterns list --group ds --resource models
  mlperm patterns add --group ds --resource models --regex '^ds-.*' --priority 10 --level EDIT`,
}

var patternsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List regex permissions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, kind, err := targetFromFlags()
		if err != nil {
			return err
		}
		pats, err := session.client.ListPatternPermissions(cmd.Context(), p, kind)
		if err != nil {
			return fmt.Errorf("listing %s patterns of %s: %w", kind, p, err)
		}
		if jsonOutput() {
			return printJSON(cmd, pats)
		}
		if len(pats) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "No %s patterns for %s.\n", kind, p)
			return nil
		}
		w := newTable(cmd)
		fmt.Fprintln(w, "ID\tREGEX\tPRIORITY\tPERMISSION")
		for _, pp := range pats {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", pp.ID, pp.Regex, pp.Priority, pp.Permission)
		}
		return w.Flush()
	},
}

func checkPatternRequest(req cliclient.PatternRequest) error {
	if err := validate.Pattern(req.Regex); err != nil {
		return err
	}
	return validate.Priority(req.Priority)
}

var patternsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a regex permission",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, kind, err := targetFromFlags()
		if err != nil {
			return err
		}
		level, err := validate.ParseLevel(levelFlag)
		if err != nil {
			return err
		}
		req := cliclient.PatternRequest{Regex: patternRegex, Priority: patternPriority, Permission: level}
		if err := checkPatternRequest(req); err != nil {
			return err
		}
		created, err := session.client.CreatePatternPermission(cmd.Context(), p, kind, req)
		if err != nil {
			return fmt.Errorf("adding pattern: %w", err)
		}
		recordHistory(audit.ActionCreatePattern, targetPath(p, kind, true, strconv.Itoa(created.ID)), req)
		fmt.Fprintf(cmd.ErrOrStderr(), "Added pattern %d for %s\n", created.ID, p)
		return nil
	},
}

var patternsEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Change a regex permission",
	Long:  `Changes the fields given on the command line and keeps the others.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, kind, err := targetFromFlags()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("id") {
			return fmt.Errorf("--id is required")
		}

		pats, err := session.client.ListPatternPermissions(cmd.Context(), p, kind)
		if err != nil {
			return fmt.Errorf("loading patterns: %w", err)
		}
		var req *cliclient.PatternRequest
		for _, pp := range pats {
			if pp.ID == patternID {
				req = &cliclient.PatternRequest{Regex: pp.Regex, Priority: pp.Priority, Permission: pp.Permission}
			}
		}
		if req == nil {
			return fmt.Errorf("pattern %d not found for %s", patternID, p)
		}

		if cmd.Flags().Changed("regex") {
			req.Regex = patternRegex
		}
		if cmd.Flags().Changed("priority") {
			req.Priority = patternPriority
		}
		if cmd.Flags().Changed("level") {
			if req.Permission, err = validate.ParseLevel(levelFlag); err != nil {
				return err
			}
		}
		if err := checkPatternRequest(*req); err != nil {
			return err
		}

		if err := session.client.UpdatePatternPermission(cmd.Context(), p, kind, patternID, *req); err != nil {
			return fmt.Errorf("updating pattern: %w", err)
		}
		recordHistory(audit.ActionUpdatePattern, targetPath(p, kind, true, strconv.Itoa(patternID)), req)
		fmt.Fprintf(cmd.ErrOrStderr(), "Updated pattern %d\n", patternID)
		return nil
	},
}

var patternsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a regex permission",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, kind, err := targetFromFlags()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("id") {
			return fmt.Errorf("--id is required")
		}
		if err := session.client.DeletePatternPermission(cmd.Context(), p, kind, patternID); err != nil {
			return fmt.Errorf("deleting pattern: %w", err)
		}
		recordHistory(audit.ActionDeletePattern, targetPath(p, kind, true, strconv.Itoa(patternID)), nil)
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted pattern %d\n", patternID)
		return nil
	},
}

var whoGroups bool

var whoCmd = &cobra.Command{
	Use:   "who <resource> <id>",
	Short: "Show who has access to a resource",
	Long: `Lists the users (or groups with --groups) holding a permission on a resource.

Examples:
  mlperm who experiments 12
  mlperm who models churn-model --groups`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeResourceKinds,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := endpoints.ParseResourceKind(args[0])
		if err != nil {
			return err
		}
		var grants []cliclient.PrincipalGrant
		if whoGroups {
			grants, err = session.client.ResourceGroupPermissions(cmd.Context(), kind, args[1])
		} else {
			grants, err = session.client.ResourceUserPermissions(cmd.Context(), kind, args[1])
		}
		if err != nil {
			return fmt.Errorf("looking up %s %s: %w", kind, args[1], err)
		}
		if jsonOutput() {
			return printJSON(cmd, grants)
		}
		if len(grants) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Nobody has access.")
			return nil
		}
		w := newTable(cmd)
		fmt.Fprintln(w, "NAME\tPERMISSION\tSOURCE")
		for _, g := range grants {
			fmt.Fprintf(w, "%s\t%s\t%s\n", g.Name, g.Permission, g.Kind)
		}
		return w.Flush()
	},
}

func init() {
	addPrincipalFlags(permsCmd)
	for _, c := range []*cobra.Command{permsGetCmd, permsGrantCmd, permsEditCmd, permsRevokeCmd} {
		c.Flags().StringVar(&resourceID, "id", "", "Resource ID (experiments) or name (models, prompts, gateway objects)")
	}
	for _, c := range []*cobra.Command{permsGrantCmd, permsEditCmd} {
		c.Flags().StringVarP(&levelFlag, "level", "l", "READ", "Permission level: READ, EDIT, MANAGE, NO_PERMISSIONS")
		c.RegisterFlagCompletionFunc("level", completeLevels)
	}
	permsCmd.AddCommand(permsListCmd)
	permsCmd.AddCommand(permsGetCmd)
	permsCmd.AddCommand(permsGrantCmd)
	permsCmd.AddCommand(permsEditCmd)
	permsCmd.AddCommand(permsRevokeCmd)

	addPrincipalFlags(patternsCmd)
	for _, c := range []*cobra.Command{patternsAddCmd, patternsEditCmd} {
		c.Flags().StringVar(&patternRegex, "regex", "", "Regular expression matched against resource names")
		c.Flags().IntVar(&patternPriority, "priority", 0, "Priority; higher wins")
		c.Flags().StringVarP(&levelFlag, "level", "l", "READ", "Permission level: READ, EDIT, MANAGE, NO_PERMISSIONS")
	}
	for _, c := range []*cobra.Command{patternsEditCmd, patternsDeleteCmd} {
		c.Flags().IntVar(&patternID, "id", 0, "Pattern ID")
	}
	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsAddCmd)
	patternsCmd.AddCommand(patternsEditCmd)
	patternsCmd.AddCommand(patternsDeleteCmd)

	whoCmd.Flags().BoolVar(&whoGroups, "groups", false, "List groups instead of users")
}
