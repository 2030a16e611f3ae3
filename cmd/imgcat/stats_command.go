package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"imgcat/internal/catalog"
	"imgcat/internal/config"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the catalog by format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					views := make([]formatStatView, 0, len(stats))
					for _, st := range stats {
						views = append(views, formatStatView{Format: string(st.Format), Count: st.Count, TotalBytes: st.TotalBytes})
					}
					return writeJSON(cmd, views)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				var total, totalBytes int64
				rows := make([][]string, 0, len(stats)+1)
				for _, st := range stats {
					total += st.Count
					totalBytes += st.TotalBytes
					rows = append(rows, []string{string(st.Format), fmt.Sprint(st.Count), humanize.IBytes(uint64(st.TotalBytes))})
				}
				fmt.Fprintln(out, renderStatusLine("Catalog", statusInfo, cfg.Paths.Database, colorize))
				fmt.Fprintln(out, renderStatusLine("Images", statusInfo, fmt.Sprint(total), colorize))
				fmt.Fprintln(out, renderStatusLine("Total size", statusInfo, humanize.IBytes(uint64(totalBytes)), colorize))
				if len(rows) == 0 {
					return nil
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					[]string{"Format", "Images", "Size"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print per-format statistics as JSON")
	return cmd
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent scan runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				runs, err := store.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					views := make([]runView, 0, len(runs))
					for _, r := range runs {
						views = append(views, newRunView(r))
					}
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No scans recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, r := range runs {
					id := r.ID
					if len(id) > 8 {
						id = id[:8]
					}
					rows = append(rows, []string{
						id,
						r.Root,
						r.StartedAt.Local().Format(listTimeLayout),
						r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
						fmt.Sprint(r.Processed),
						fmt.Sprint(r.Succeeded),
						fmt.Sprint(r.Failed),
						yesNo(r.Canceled),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Root", "Started", "Duration", "Processed", "Succeeded", "Failed", "Canceled"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}
