package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for namecheck
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "namecheck [path]",
		Short: "Check file names for cross-file-system compatibility",
		Long: `namecheck walks a directory tree and reports file and directory names
that would be rejected or mishandled by at least one of exFAT, ext3 or NTFS:
over-long paths and components, disallowed and control characters, trailing
spaces and periods, reserved names, and siblings that differ only by case.

It is advisory only and never renames or modifies anything.

Configuration is loaded from .namecheck.yaml in the scan root if present.
CLI flags override configuration file settings.

Examples:
  namecheck                       # scan the current directory
  namecheck --full ~/Music        # include hidden entries
  namecheck --format jsonl .      # one JSON object per warning
  namecheck -o report.html --format html .
  namecheck --fail-on-warnings .  # exit 3 when anything is found`,
		Version: Version,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: runScanCommand,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error once and picks the exit code
		SilenceErrors: true,
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(fmt.Errorf("%w\nRun '%s --help' for usage", err, c.CommandPath()))
	})

	cmd.PersistentFlags().String("config", "", "Path to config file (default: <path>/.namecheck.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log verbosity: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-dir", "", "Also write a run log into this directory")
	cmd.PersistentFlags().String("history-db", "", "Record runs in this SQLite database")
	addScanFlags(cmd)
	cmd.Flags().Bool("fail-on-warnings", false, "Exit with status 3 when any warning is found")

	cmd.AddCommand(NewRulesCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewWatchCommand())

	return cmd
}

// addScanFlags registers the flags shared by every command that scans
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("full", "f", false, "Include hidden files and directories")
	cmd.Flags().String("format", "", "Report format: text, jsonl, markdown, html")
	cmd.Flags().StringP("output", "o", "", "Write the report to this file instead of stdout")
}
