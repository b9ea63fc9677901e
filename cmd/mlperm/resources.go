package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/endpoints"
	"github.com/nebari-dev/mlperm/internal/filter"
)

var (
	experimentsCmd = &cobra.Command{Use: "experiments", Aliases: []string{"exp"}, Short: "Browse experiments"}
	modelsCmd      = &cobra.Command{Use: "models", Short: "Browse registered models"}
	promptsCmd     = &cobra.Command{Use: "prompts", Short: "Browse prompts"}
	gatewayCmd     = &cobra.Command{Use: "gateway", Short: "Browse AI gateway endpoints, secrets and model definitions"}
)

func newResourceListCmd(kind endpoints.ResourceKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List " + kind.String() + " you can see",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := session.client.ListResources(cmd.Context(), kind)
			if err != nil {
				return fmt.Errorf("listing %s: %w", kind, err)
			}
			return printResources(cmd, kind, resources)
		},
	}
	addListFilterFlags(cmd)
	return cmd
}

var gatewayListCmd = &cobra.Command{
	Use:       "list <endpoints|secrets|models>",
	Aliases:   []string{"ls"},
	Short:     "List gateway objects of a kind",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"endpoints", "secrets", "models"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !strings.HasPrefix(name, "gateway-") {
			name = "gateway-" + name
		}
		kind, err := endpoints.ParseResourceKind(name)
		if err != nil {
			return err
		}
		resources, err := session.client.ListGatewayResources(cmd.Context(), kind)
		if err != nil {
			return fmt.Errorf("listing %s: %w", kind, err)
		}
		return printResources(cmd, kind, resources)
	},
}

func printResources(cmd *cobra.Command, kind endpoints.ResourceKind, resources []cliclient.Resource) error {
	resources = filter.Apply(resources, func(r cliclient.Resource) string { return r.Name }, listFilter())
	if jsonOutput() {
		return printJSON(cmd, resources)
	}
	if len(resources) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "No %s found.\n", kind)
		return nil
	}
	w := newTable(cmd)
	if kind == endpoints.Experiment {
		fmt.Fprintln(w, "ID\tNAME")
		for _, r := range resources {
			fmt.Fprintf(w, "%s\t%s\n", r.ID, r.Name)
		}
	} else {
		fmt.Fprintln(w, "NAME")
		for _, r := range resources {
			fmt.Fprintln(w, r.Name)
		}
	}
	return w.Flush()
}

func init() {
	experimentsCmd.AddCommand(newResourceListCmd(endpoints.Experiment))
	modelsCmd.AddCommand(newResourceListCmd(endpoints.Model))
	promptsCmd.AddCommand(newResourceListCmd(endpoints.Prompt))

	addListFilterFlags(gatewayListCmd)
	gatewayCmd.AddCommand(gatewayListCmd)
}
