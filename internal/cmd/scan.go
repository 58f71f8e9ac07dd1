package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/namecheck/internal/config"
	"github.com/harrison/namecheck/internal/history"
	"github.com/harrison/namecheck/internal/logger"
	"github.com/harrison/namecheck/internal/report"
	"github.com/harrison/namecheck/internal/rules"
	"github.com/harrison/namecheck/internal/walker"
)

// runScanCommand implements the root command: one scan of one tree
func runScanCommand(cmd *cobra.Command, args []string) error {
	root := scanRoot(args)

	session, err := newScanSession(cmd, root)
	if err != nil {
		return err
	}
	defer session.Close()

	rep, err := session.scan(cmd.Context(), root)
	if err != nil {
		return err
	}

	if session.cfg.FailOnWarnings {
		if n := rep.WarningCount(); n > 0 {
			return &ExitError{Code: ExitWarnings, Err: fmt.Errorf("%d %s found", n, pluralize(n, "warning", "warnings"))}
		}
	}
	return nil
}

// scanSession holds everything that stays fixed across the scans of one
// command invocation
type scanSession struct {
	cfg    *config.Config
	log    logger.Logger
	engine *rules.Engine
	store  *history.Store
	out    io.Writer

	closers []func() error
}

func newScanSession(cmd *cobra.Command, root string) (*scanSession, error) {
	cfg, err := loadConfig(cmd, configDir(root))
	if err != nil {
		return nil, err
	}

	s := &scanSession{
		cfg:    cfg,
		engine: rules.NewEngine(cfg.RuleSet()),
		out:    cmd.OutOrStdout(),
	}

	log, closeLog, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	s.log = log
	s.closers = append(s.closers, closeLog)

	for _, key := range cfg.IgnoredKeys {
		log.LogWarn(fmt.Sprintf("ignoring %s from %s in the scanned tree; pass it as a flag or via --config", key, config.FileName))
	}

	if cfg.HistoryDB != "" {
		store, err := history.NewStore(cfg.HistoryDB)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		s.store = store
		s.closers = append(s.closers, store.Close)
	}

	return s, nil
}

// scan walks root, writes the report and records the run
func (s *scanSession) scan(ctx context.Context, root string) (*report.Report, error) {
	started := time.Now()
	s.log.LogScanStart(root, s.cfg.IncludeHidden)

	w := walker.New(s.engine, walker.Options{IncludeHidden: s.cfg.IncludeHidden}, s.log)
	res, err := w.Walk(ctx, root)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}
	duration := time.Since(started)

	for _, walkErr := range res.Errors {
		s.log.LogWarn(walkErr.Error())
	}
	for _, pruned := range res.Pruned {
		s.log.LogTrace("skipped hidden " + pruned)
	}

	rep := report.FromResult(history.NewRunID(), res, s.cfg.IncludeHidden, started)
	if err := s.write(ctx, rep); err != nil {
		return nil, err
	}

	if s.store != nil {
		run := &history.Run{
			ID:            rep.RunID,
			Root:          root,
			IncludeHidden: s.cfg.IncludeHidden,
			StartedAt:     started,
			Duration:      duration,
			Entries:       len(res.Entries),
		}
		if err := s.store.RecordRun(ctx, run, res.Findings); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		s.log.LogDebug("recorded run " + run.ID)
	}

	s.log.LogScanSummary(logger.ScanSummary{
		Root:     root,
		Entries:  len(res.Entries),
		Paths:    len(res.Findings),
		Warnings: res.WarningCount(),
		Pruned:   len(res.Pruned),
		Errors:   len(res.Errors),
		Duration: duration,
	})
	return rep, nil
}

func (s *scanSession) write(ctx context.Context, rep *report.Report) error {
	opts := report.Options{Format: s.cfg.Format}

	if s.cfg.Output != "" {
		if err := report.WriteFile(ctx, s.cfg.Output, rep, opts); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		s.log.LogInfo("report written to " + s.cfg.Output)
		return nil
	}

	opts.Color = report.ColorEnabled(s.out)
	if err := report.Render(s.out, rep, opts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Close releases the log file and history database
func (s *scanSession) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// loadConfig reads the config file (--config, or .namecheck.yaml in dir),
// applies the flags the user set and validates the result
func loadConfig(cmd *cobra.Command, dir string) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		// an explicit path must exist; only the implicit file is optional
		if _, statErr := os.Stat(configPath); statErr != nil {
			return nil, usageError(fmt.Errorf("failed to load config from %s: %w", configPath, statErr))
		}
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, usageError(fmt.Errorf("failed to load config from %s: %w", configPath, err))
		}
	} else {
		cfg, err = config.LoadConfigFromDir(dir)
		if err != nil {
			return nil, usageError(fmt.Errorf("failed to load config: %w", err))
		}
	}

	cfg.MergeWithFlags(flagOverrides(cmd))

	if err := cfg.Validate(); err != nil {
		return nil, usageError(fmt.Errorf("invalid configuration: %w", err))
	}
	return cfg, nil
}

// flagOverrides collects the flags the user explicitly set. Flags that the
// command does not define are never Changed.
func flagOverrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	flags := cmd.Flags()

	if flags.Changed("full") {
		v, _ := flags.GetBool("full")
		o.IncludeHidden = &v
	}
	if flags.Changed("fail-on-warnings") {
		v, _ := flags.GetBool("fail-on-warnings")
		o.FailOnWarnings = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		o.LogLevel = &v
	}
	if flags.Changed("log-dir") {
		v, _ := flags.GetString("log-dir")
		o.LogDir = &v
	}
	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		o.Format = &v
	}
	if flags.Changed("output") {
		v, _ := flags.GetString("output")
		o.Output = &v
	}
	if flags.Changed("history-db") {
		v, _ := flags.GetString("history-db")
		o.HistoryDB = &v
	}
	return o
}

// newLogger builds the stderr logger and, with a log directory, the run log
func newLogger(cmd *cobra.Command, cfg *config.Config) (logger.Logger, func() error, error) {
	console := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.LogDir == "" {
		return console, func() error { return nil }, nil
	}

	fileLogger, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	console.LogDebug("run log: " + fileLogger.Path())
	return logger.NewMultiLogger(console, fileLogger), fileLogger.Close, nil
}

func scanRoot(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// configDir is the directory searched for .namecheck.yaml
func configDir(root string) string {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return filepath.Dir(root)
	}
	return root
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
