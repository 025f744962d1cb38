package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JNZader/eslintsync/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List coding standards created by earlier runs",
		Long: `List the runs recorded by "create", newest first. Every run creates a new
standard, so this is the way to find the ids of older ones.

Examples:
  eslintsync history
  eslintsync history --organization acme --status failed
  eslintsync history latest --organization acme
  eslintsync history prune --older-than 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd)
		},
	}
	cmd.Flags().String("organization", "", "only runs of this organization")
	cmd.Flags().String("status", "", "only runs with this status (succeeded, failed)")
	cmd.Flags().Int("limit", 20, "maximum number of runs")
	cmd.Flags().Bool("json", false, "output as JSON")

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs from the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			olderThan, _ := cmd.Flags().GetDuration("older-than")
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			store, err := openHistory(a.cfg.State)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
			return nil
		},
	}
	prune.Flags().Duration("older-than", 30*24*time.Hour, "remove runs older than this")

	latest := &cobra.Command{
		Use:   "latest",
		Short: "Print the id of the most recent standard created successfully",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			organization, _ := cmd.Flags().GetString("organization")
			store, err := openHistory(a.cfg.State)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Latest(cmd.Context(), organization)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("no successful run recorded")
			}
			fmt.Fprintln(cmd.OutOrStdout(), run.StandardID)
			return nil
		},
	}
	latest.Flags().String("organization", "", "only runs of this organization")

	cmd.AddCommand(prune, latest)
	return cmd
}

func (a *app) runHistory(cmd *cobra.Command) error {
	f := cmd.Flags()
	q := history.Query{}
	q.Organization, _ = f.GetString("organization")
	q.Status, _ = f.GetString("status")
	q.Limit, _ = f.GetInt("limit")
	asJSON, _ := f.GetBool("json")

	switch q.Status {
	case "", history.StatusSucceeded, history.StatusFailed:
	default:
		return fmt.Errorf("unknown status %q (want succeeded or failed)", q.Status)
	}

	store, err := openHistory(a.cfg.State)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	runs, err := store.List(ctx, q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal runs: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSTANDARD\tNAME\tORGANIZATION\tPATTERNS\tSTATUS")
	for _, r := range runs {
		standardID := "-"
		if r.StandardID != 0 {
			standardID = fmt.Sprint(r.StandardID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s/%s\t%d\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), standardID, r.Name,
			r.Provider, r.Organization, r.Enabled, r.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	stats, err := store.Stats(ctx, history.Query{Organization: q.Organization})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d runs recorded, %d succeeded, %d failed\n", stats.Total, stats.Succeeded, stats.Failed)
	return nil
}
