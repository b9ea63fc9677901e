package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/mlperm/internal/audit"
	"github.com/nebari-dev/mlperm/internal/store"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light]",
	Short:     "Show or set the console theme",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"dark", "light"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New()
		if err != nil {
			return err
		}
		defer s.Close()

		if len(args) == 1 {
			if err := s.SetDarkMode(args[0] == "dark"); err != nil {
				return err
			}
		}
		dark, err := s.DarkMode()
		if err != nil {
			return err
		}
		name := "light"
		if dark {
			name = "dark"
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List permission changes made from this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New()
		if err != nil {
			return err
		}
		defer s.Close()

		entries, err := audit.List(s.DB(), historyLimit)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(cmd, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No history recorded.")
			return nil
		}

		w := newTable(cmd)
		fmt.Fprintln(w, "TIME\tACTOR\tACTION\tTARGET")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Actor, e.Action, e.Target)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
}
