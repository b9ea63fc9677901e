package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/mlperm/internal/audit"
	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/endpoints"
)

var (
	trashRuns          bool
	trashOlderThan     string
	trashExperimentIDs []string
	trashRunIDs        []string
	trashYes           bool
)

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Inspect and restore deleted experiments and runs (admin)",
}

var trashListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List deleted experiments, or runs with --runs",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if trashRuns {
			runs, err := session.client.ListDeletedRuns(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing deleted runs: %w", err)
			}
			if jsonOutput() {
				return printJSON(cmd, runs)
			}
			w := newTable(cmd)
			fmt.Fprintln(w, "RUN ID\tEXPERIMENT\tNAME\tENDED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.RunID, r.ExperimentID, r.RunName, formatMillis(r.EndTime))
			}
			return w.Flush()
		}

		exps, err := session.client.ListDeletedExperiments(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing deleted experiments: %w", err)
		}
		if jsonOutput() {
			return printJSON(cmd, exps)
		}
		w := newTable(cmd)
		fmt.Fprintln(w, "ID\tNAME\tUPDATED")
		for _, e := range exps {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.ExperimentID, e.Name, formatMillis(e.LastUpdateTime))
		}
		return w.Flush()
	},
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a deleted experiment, or a run with --runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := endpoints.TrashExperiments
		var err error
		if trashRuns {
			collection = endpoints.TrashRuns
			err = session.client.RestoreRun(cmd.Context(), args[0])
		} else {
			err = session.client.RestoreExperiment(cmd.Context(), args[0])
		}
		if err != nil {
			return fmt.Errorf("restoring %s: %w", args[0], err)
		}
		recordHistory(audit.ActionRestoreTrash, endpoints.TrashRestore(collection, args[0]), nil)
		fmt.Fprintf(cmd.ErrOrStderr(), "Restored %s\n", args[0])
		return nil
	},
}

var trashCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Permanently delete trashed items",
	Long: `Permanently deletes trashed experiments and runs. Without --experiment-id or
--run-id everything older than --older-than is removed.

Examples:
  mlperm trash cleanup --older-than 30d --yes
  mlperm trash cleanup --run-id 4f2c... --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !trashYes {
			return fmt.Errorf("refusing to delete permanently without --yes")
		}
		req := cliclient.CleanupRequest{
			OlderThan:     trashOlderThan,
			ExperimentIDs: trashExperimentIDs,
			RunIDs:        trashRunIDs,
		}
		res, err := session.client.CleanupTrash(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("cleaning up trash: %w", err)
		}
		recordHistory(audit.ActionCleanupTrash, endpoints.TrashCleanup.Path(), req)
		if jsonOutput() {
			return printJSON(cmd, res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d experiments and %d runs\n", res.DeletedExperiments, res.DeletedRuns)
		return nil
	},
}

func init() {
	trashListCmd.Flags().BoolVar(&trashRuns, "runs", false, "Operate on runs instead of experiments")
	trashRestoreCmd.Flags().BoolVar(&trashRuns, "runs", false, "Operate on runs instead of experiments")
	trashCleanupCmd.Flags().StringVar(&trashOlderThan, "older-than", "", "Only items deleted longer ago, e.g. 30d")
	trashCleanupCmd.Flags().StringSliceVar(&trashExperimentIDs, "experiment-id", nil, "Experiment to delete; repeatable")
	trashCleanupCmd.Flags().StringSliceVar(&trashRunIDs, "run-id", nil, "Run to delete; repeatable")
	trashCleanupCmd.Flags().BoolVarP(&trashYes, "yes", "y", false, "Confirm permanent deletion")

	trashCmd.AddCommand(trashListCmd)
	trashCmd.AddCommand(trashRestoreCmd)
	trashCmd.AddCommand(trashCleanupCmd)
}
