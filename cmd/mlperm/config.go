package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/config"
	"github.com/nebari-dev/mlperm/internal/runtimeconfig"
	"github.com/nebari-dev/mlperm/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput() {
			return printJSON(cmd, cfg)
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Writes a key to the config file.

Examples:
  mlperm config set server.url https://mlflow.company.com
  mlperm config set output.format json`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Set(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Set %s in %s\n", args[0], path)
		return nil
	},
}

var configRuntimeCmd = &cobra.Command{
	Use:   "runtime",
	Short: "Print the server's UI runtime configuration",
	Long: `Fetches config.json from the server's UI path. When it cannot be fetched
the values are inferred from the server URL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New()
		if err != nil {
			return err
		}
		creds, err := s.LoadCredentials()
		s.Close()
		if err != nil {
			return err
		}
		serverURL, err := resolveServerURL(creds)
		if err != nil {
			return err
		}

		client := cliclient.New(serverURL, cliclient.WithTimeout(cfg.Server.Timeout))
		rc, err := runtimeconfig.New(client, cfg.Server.UIPath).Load(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(cmd, struct {
				*runtimeconfig.Config
				Inferred bool `json:"inferred"`
			}{rc, rc.Fallback})
		}

		w := newTable(cmd)
		fmt.Fprintf(w, "Base path:\t%s\n", rc.BasePath)
		fmt.Fprintf(w, "UI path:\t%s\n", rc.UIPath)
		fmt.Fprintf(w, "Provider:\t%s\n", rc.Provider)
		fmt.Fprintf(w, "Authenticated:\t%v\n", rc.Authenticated)
		fmt.Fprintf(w, "Inferred:\t%v\n", rc.Fallback)
		return w.Flush()
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configRuntimeCmd)
}
