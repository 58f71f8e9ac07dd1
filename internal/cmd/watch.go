package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/namecheck/internal/config"
	"github.com/harrison/namecheck/internal/report"
	"github.com/harrison/namecheck/internal/watch"
)

// NewWatchCommand creates the 'namecheck watch' command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-scan a tree whenever it changes",
		Long: `Scan path once, then keep watching it and re-scan after each burst of
changes until interrupted with Ctrl-C.

Each re-scan prints a full report. Hidden directories are not watched unless
--full is given.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: runWatch,
	}

	addScanFlags(cmd)
	cmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period after the last change before re-scanning")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := scanRoot(args)

	debounce, _ := cmd.Flags().GetDuration("debounce")
	if debounce <= 0 {
		return usageError(fmt.Errorf("invalid --debounce %s: must be positive", debounce))
	}

	session, err := newScanSession(cmd, root)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := session.scan(ctx, root); err != nil {
		return err
	}

	w, err := watch.New(root, session.cfg.IncludeHidden, debounce, session.log)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	ignoreOwnWrites(w, session.cfg)
	session.log.LogInfo(fmt.Sprintf("watching %d directories under %s", w.WatchedCount(), root))

	return w.Run(ctx, func(ctx context.Context) error {
		_, err := session.scan(ctx, root)
		if err != nil && ctx.Err() != nil {
			// interrupted mid-scan
			return nil
		}
		return err
	})
}

// ignoreOwnWrites keeps the report, history database and run logs from
// triggering the next scan when they live inside the watched tree
func ignoreOwnWrites(w *watch.Watcher, cfg *config.Config) {
	if cfg.Output != "" {
		// the report, its .lock file and WriteAtomic's temp files
		w.IgnorePrefix(cfg.Output)
		w.IgnorePrefix(filepath.Join(filepath.Dir(cfg.Output), "."+filepath.Base(cfg.Output)+".tmp-"))
	}
	if cfg.HistoryDB != "" {
		// -wal, -shm and -journal sit next to the database
		w.IgnorePrefix(cfg.HistoryDB)
	}
	if cfg.LogDir != "" {
		w.IgnorePath(cfg.LogDir)
	}
}

// colorFor reports whether the command's stdout should get color
func colorFor(cmd *cobra.Command) bool {
	return report.ColorEnabled(cmd.OutOrStdout())
}
