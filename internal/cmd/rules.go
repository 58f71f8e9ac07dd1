package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/namecheck/internal/rules"
)

// NewRulesCommand creates the 'namecheck rules' command
func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the checks and the effective reserved names",
		Long: `List every rule ID with a short description, marking rules disabled by
configuration, followed by the reserved name lists in effect (built-in
names plus those added in .namecheck.yaml).

Rule IDs are what rules.disabled in the config file and the jsonl report
format refer to.`,
		Args: cobra.NoArgs,
		RunE: runRules,
	}

	return cmd
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, ".")
	if err != nil {
		return err
	}
	engine := rules.NewEngine(cfg.RuleSet())
	out := cmd.OutOrStdout()

	bold := color.New(color.Bold)
	if !colorFor(cmd) {
		bold.DisableColor()
	}

	bold.Fprintln(out, "Rules:")
	for _, info := range rules.AllRules() {
		status := ""
		if !engine.Enabled(info.ID) {
			status = " (disabled)"
		}
		fmt.Fprintf(out, "  %-22s %s%s\n", info.ID, info.Description, status)
	}

	fmt.Fprintln(out)
	bold.Fprintln(out, "Reserved names:")
	fmt.Fprintf(out, "  %s\n", strings.Join(engine.ReservedNames(), ", "))

	fmt.Fprintln(out)
	bold.Fprintln(out, "Reserved directly under the scan root:")
	fmt.Fprintf(out, "  %s\n", strings.Join(engine.RootReservedNames(), ", "))

	return nil
}
