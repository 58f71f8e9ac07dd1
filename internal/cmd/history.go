package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/namecheck/internal/history"
)

// NewHistoryCommand creates the 'namecheck history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded scans",
		Long: `List recent scans recorded with --history-db (or history_db in the config
file), newest first. With --run, print the warnings stored for one run.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 = all)")
	cmd.Flags().String("run", "", "Show the warnings of this run ID")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, ".")
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return usageError(errors.New("no history database configured: use --history-db or history_db"))
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return usageError(fmt.Errorf("invalid --limit %d: must be >= 0", limit))
	}
	runID, _ := cmd.Flags().GetString("run")
	output := cmd.OutOrStdout()

	// Don't create an empty database just to report that it is empty
	if _, err := os.Stat(cfg.HistoryDB); os.IsNotExist(err) {
		fmt.Fprintf(output, "No runs recorded in %s\n", cfg.HistoryDB)
		return nil
	}

	store, err := history.NewStore(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	if runID != "" {
		records, err := store.RunWarnings(ctx, runID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintf(output, "No warnings recorded for run %s\n", runID)
			return nil
		}
		last := ""
		for _, rec := range records {
			if rec.Path != last {
				fmt.Fprintf(output, "%s:\n", rec.Path)
				last = rec.Path
			}
			fmt.Fprintf(output, "  %s\n", rec.Message)
		}
		return nil
	}

	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(output, "No runs recorded in %s\n", cfg.HistoryDB)
		return nil
	}

	header := color.New(color.Bold)
	if !colorFor(cmd) {
		header.DisableColor()
	}
	header.Fprintf(output, "%-36s  %-19s  %8s  %8s  %8s  %s\n", "RUN", "STARTED", "ENTRIES", "WARNINGS", "DURATION", "ROOT")
	for _, run := range runs {
		fmt.Fprintf(output, "%-36s  %-19s  %8d  %8d  %8s  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Entries,
			run.WarningCount,
			run.Duration.Round(time.Millisecond),
			run.Root,
		)
	}
	return nil
}
