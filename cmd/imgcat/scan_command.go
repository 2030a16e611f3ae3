package main

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"imgcat/internal/catalog"
	"imgcat/internal/config"
	"imgcat/internal/logging"
	"imgcat/internal/metadata"
	"imgcat/internal/pipeline"
	"imgcat/internal/walker"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var jsonOutput bool
	var noCreate bool

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Scan a directory tree and upsert image metadata into the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			root := cfg.Paths.RootDir
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				if root, err = config.ExpandPath(args[0]); err != nil {
					return fmt.Errorf("resolve scan root: %w", err)
				}
			}
			if cmd.Flags().Changed("workers") {
				if workers < 0 {
					return errors.New("--workers must be >= 0")
				}
				cfg.Scan.Workers = workers
			}
			if noCreate {
				cfg.Paths.CreateRoot = false
			}

			created, err := cfg.EnsureRoot(root)
			if err != nil {
				return err
			}
			if created {
				logger.Info("created missing scan root", logging.String(logging.FieldPath, root))
			}

			lock, err := catalog.AcquireLock(cfg.Paths.Database)
			if err != nil {
				if errors.Is(err, catalog.ErrLocked) {
					return fmt.Errorf("another scan is using %s; wait for it to finish", cfg.Paths.Database)
				}
				return err
			}
			defer lock.Release()

			store, err := catalog.Open(cfg.Paths.Database)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, runErr := runScan(runCtx, cfg, store, logger, root)
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return runErr
			}

			if err := store.RecordRun(context.WithoutCancel(runCtx), summary.RunRecord()); err != nil {
				logging.WarnWithContext(logger, "scan history not saved", "run_record_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "runs command will not list this scan"),
				)
			}

			if jsonOutput {
				if err := writeJSON(cmd, newSummaryView(summary)); err != nil {
					return err
				}
			} else {
				printSummary(cmd, summary)
			}
			return runErr
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent extractors (0 uses one per CPU)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	cmd.Flags().BoolVar(&noCreate, "no-create", false, "Fail instead of creating a missing scan root")
	return cmd
}

func runScan(ctx context.Context, cfg *config.Config, store *catalog.Store, logger *slog.Logger, root string) (pipeline.Summary, error) {
	loc, err := cfg.ExifLocation()
	if err != nil {
		return pipeline.Summary{}, err
	}
	extractor := metadata.New(metadata.Options{
		VerifyPixels: cfg.Scan.VerifyPixels,
		Providers:    metadata.DefaultProviders(loc, cfg.Scan.FilesystemDate),
	})

	walkLogger := logging.NewComponentLogger(logger, "walker")
	walkOpts := walker.Options{
		Extensions: cfg.Scan.Extensions,
		SkipHidden: cfg.Scan.SkipHidden,
		OnSkip: func(path string, err error) {
			walkLogger.Debug("entry skipped",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
		},
	}
	walk := func(root string) (iter.Seq[string], error) {
		return walker.Walk(root, walkOpts)
	}

	p := pipeline.New(walk, extractor, store, pipeline.Options{
		Workers: cfg.Scan.Workers,
		Logger:  logger,
	})
	return p.Run(ctx, root)
}

func printSummary(cmd *cobra.Command, s pipeline.Summary) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	title := "Scan complete"
	if s.Canceled {
		title = "Scan interrupted"
	}
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Root", statusInfo, s.Root, colorize))
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, s.RunID, colorize))
	fmt.Fprintln(out, renderStatusLine("Processed", statusInfo, fmt.Sprint(s.Processed), colorize))
	fmt.Fprintln(out, renderStatusLine("Succeeded", countKind(s.Succeeded, false), fmt.Sprint(s.Succeeded), colorize))
	fmt.Fprintln(out, renderStatusLine("Failed", countKind(s.Failed, true), fmt.Sprint(s.Failed), colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, s.Duration().Round(time.Millisecond).String(), colorize))
	if s.Canceled {
		fmt.Fprintln(out, renderStatusLine("Status", statusError, "canceled before the tree was fully scanned", colorize))
	}

	if len(s.Failures) == 0 {
		return
	}
	rows := make([][]string, 0, len(s.Failures))
	for _, f := range s.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		rows = append(rows, []string{relativeTo(s.Root, f.Path), string(f.Stage), f.Kind, msg})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]string{"Path", "Stage", "Kind", "Error"}, rows, nil))
}

// relativeTo shortens path for display. The walker yields paths under the
// resolved root, so a symlinked root is tried in both forms.
func relativeTo(root, path string) string {
	roots := []string{root}
	if resolved, err := filepath.EvalSymlinks(root); err == nil && resolved != root {
		roots = append(roots, resolved)
	}
	for _, r := range roots {
		rel, err := filepath.Rel(r, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return rel
	}
	return path
}
