package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"imgcat/internal/catalog"
	"imgcat/internal/config"
)

const listTimeLayout = "2006-01-02 15:04"

func newListCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var prefix string
	var limit int
	var offset int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := catalog.ListOptions{Limit: limit, Offset: offset}
			if strings.TrimSpace(formatFlag) != "" {
				format, err := catalog.ParseFormat(formatFlag)
				if err != nil {
					return err
				}
				opts.Format = format
			}
			if strings.TrimSpace(prefix) != "" {
				expanded, err := config.ExpandPath(prefix)
				if err != nil {
					return fmt.Errorf("resolve prefix: %w", err)
				}
				if !strings.HasSuffix(expanded, string(filepath.Separator)) {
					expanded += string(filepath.Separator)
				}
				opts.PathPrefix = expanded
			}

			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				records, err := store.List(cmd.Context(), opts)
				if err != nil {
					return err
				}
				if jsonOutput {
					views := make([]recordView, 0, len(records))
					for _, rec := range records {
						views = append(views, newRecordView(rec))
					}
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No images cataloged")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.Path,
						string(rec.Format),
						fmt.Sprintf("%dx%d", rec.Width, rec.Height),
						humanize.IBytes(uint64(rec.FileSizeBytes)),
						rec.CreatedAt.Local().Format(listTimeLayout),
						string(rec.DateSource),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Path", "Format", "Dimensions", "Size", "Created", "Date source"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Only list images of this format (jpeg, png, gif, bmp, webp)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list images under this directory")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum rows to print (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print records as JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Show the catalog entry for one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				rec, err := store.Get(cmd.Context(), path)
				if err != nil {
					return err
				}
				if rec == nil {
					return fmt.Errorf("no catalog entry for %s", path)
				}
				if jsonOutput {
					return writeJSON(cmd, newRecordView(*rec))
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				lines := []struct{ label, value string }{
					{"Path", rec.Path},
					{"File", rec.FileName},
					{"Format", string(rec.Format)},
					{"Dimensions", fmt.Sprintf("%dx%d", rec.Width, rec.Height)},
					{"Size", fmt.Sprintf("%s (%d bytes)", humanize.IBytes(uint64(rec.FileSizeBytes)), rec.FileSizeBytes)},
					{"Created", rec.CreatedAt.Local().Format(time.RFC3339)},
					{"Date source", string(rec.DateSource)},
					{"Scanned", rec.ScannedAt.Local().Format(time.RFC3339)},
				}
				for _, line := range lines {
					fmt.Fprintln(out, renderStatusLine(line.label, statusInfo, line.value, colorize))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the record as JSON")
	return cmd
}
