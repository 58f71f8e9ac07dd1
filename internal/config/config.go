// Package config loads namecheck settings from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/namecheck/internal/rules"
)

// FileName is the config file looked up in the scan root
const FileName = ".namecheck.yaml"

// Report formats
const (
	FormatText     = "text"
	FormatJSONL    = "jsonl"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// RulesConfig adjusts the rule engine
type RulesConfig struct {
	// ReservedNames are added to the built-in Windows device names
	ReservedNames []string `yaml:"reserved_names"`

	// RootReservedNames are added to the built-in NTFS metadata names
	RootReservedNames []string `yaml:"root_reserved_names"`

	// Disabled lists rule IDs to suppress
	Disabled []string `yaml:"disabled"`
}

// Config represents namecheck configuration options
type Config struct {
	// IncludeHidden visits entries whose names start with "."
	IncludeHidden bool `yaml:"include_hidden"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables a per-run log file in this directory when set
	LogDir string `yaml:"log_dir"`

	// Format selects the report format (text, jsonl, markdown, html)
	Format string `yaml:"format"`

	// Output writes the report to this file instead of stdout when set
	Output string `yaml:"output"`

	// FailOnWarnings makes the run exit non-zero when any warning is found
	FailOnWarnings bool `yaml:"fail_on_warnings"`

	// HistoryDB records each run in this SQLite database when set
	HistoryDB string `yaml:"history_db"`

	// Rules contains rule engine adjustments
	Rules RulesConfig `yaml:"rules"`

	// IgnoredKeys lists settings dropped from an implicitly loaded file
	IgnoredKeys []string `yaml:"-"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		IncludeHidden:  false,
		LogLevel:       "info",
		Format:         FormatText,
		FailOnWarnings: false,
	}
}

// LoadConfig loads configuration from the specified file path.
// A missing file yields the defaults; a malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Empty keys in the file fall back to defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Format == "" {
		cfg.Format = FormatText
	}

	return cfg, nil
}

// LoadConfigFromDir loads .namecheck.yaml from dir, or the defaults if absent.
// The file lives in the tree being scanned, so it may only adjust rules and
// presentation: output, history_db and log_dir are dropped and listed in
// IgnoredKeys. Those keys are honored from an explicit --config file only.
func LoadConfigFromDir(dir string) (*Config, error) {
	cfg, err := LoadConfig(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	cfg.dropWriteTargets()
	return cfg, nil
}

// dropWriteTargets clears every setting that makes namecheck write a file
func (c *Config) dropWriteTargets() {
	if c.Output != "" {
		c.IgnoredKeys = append(c.IgnoredKeys, "output")
		c.Output = ""
	}
	if c.HistoryDB != "" {
		c.IgnoredKeys = append(c.IgnoredKeys, "history_db")
		c.HistoryDB = ""
	}
	if c.LogDir != "" {
		c.IgnoredKeys = append(c.IgnoredKeys, "log_dir")
		c.LogDir = ""
	}
}

// Overrides carries CLI flag values. Nil fields were not set by the user.
type Overrides struct {
	IncludeHidden  *bool
	LogLevel       *string
	LogDir         *string
	Format         *string
	Output         *string
	FailOnWarnings *bool
	HistoryDB      *string
}

// MergeWithFlags applies non-nil overrides so that CLI flags take
// precedence over config file settings
func (c *Config) MergeWithFlags(o Overrides) {
	if o.IncludeHidden != nil {
		c.IncludeHidden = *o.IncludeHidden
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	if o.LogDir != nil {
		c.LogDir = *o.LogDir
	}
	if o.Format != nil {
		c.Format = *o.Format
	}
	if o.Output != nil {
		c.Output = *o.Output
	}
	if o.FailOnWarnings != nil {
		c.FailOnWarnings = *o.FailOnWarnings
	}
	if o.HistoryDB != nil {
		c.HistoryDB = *o.HistoryDB
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	switch c.Format {
	case FormatText, FormatJSONL, FormatMarkdown, FormatHTML:
	default:
		return fmt.Errorf("invalid format %q, must be one of: text, jsonl, markdown, html", c.Format)
	}

	for _, id := range c.Rules.Disabled {
		if !rules.IsKnownRule(id) {
			return fmt.Errorf("rules.disabled: unknown rule %q", id)
		}
	}

	for _, name := range append(append([]string(nil), c.Rules.ReservedNames...), c.Rules.RootReservedNames...) {
		if name == "" {
			return fmt.Errorf("rules: reserved names cannot be empty")
		}
	}

	return nil
}

// RuleSet builds the rule engine input: built-in lists plus configured extras
func (c *Config) RuleSet() rules.RuleSet {
	rs := rules.DefaultRuleSet()
	rs.ReservedNames = append(rs.ReservedNames, c.Rules.ReservedNames...)
	rs.RootReservedNames = append(rs.RootReservedNames, c.Rules.RootReservedNames...)
	for _, id := range c.Rules.Disabled {
		rs.Disabled = append(rs.Disabled, rules.RuleID(id))
	}
	return rs
}
