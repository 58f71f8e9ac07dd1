package rules

import (
	"sort"
	"strings"
)

// DefaultReservedNames are Windows device names, reserved in every directory
var DefaultReservedNames = []string{
	"AUX", "CON", "PRN", "NUL",
	"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
	"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
	"CLOCK$", "CONFIG$", "KEYBD$", "LST", "SCREEN$", "$IDLE$",
}

// DefaultRootReservedNames are NTFS metadata files, reserved at the volume root
var DefaultRootReservedNames = []string{
	"$MFT", "$MFTMirr", "$LogFile", "$Volume", "$AttrDef", "$Bitmap", "$Boot",
	"$BadClus", "$Secure", "$UpCase", "$Extend", "$Quota", "$ObjDir", "$Reparse",
}

// RuleSet is the configurable input of an Engine
type RuleSet struct {
	// ReservedNames are matched case-insensitively in every directory
	ReservedNames []string
	// RootReservedNames are matched case-insensitively at the scan root only
	RootReservedNames []string
	// Disabled rules are dropped from every result
	Disabled []RuleID
}

// DefaultRuleSet returns the built-in name lists with no rules disabled
func DefaultRuleSet() RuleSet {
	return RuleSet{
		ReservedNames:     append([]string(nil), DefaultReservedNames...),
		RootReservedNames: append([]string(nil), DefaultRootReservedNames...),
	}
}

// Engine applies a RuleSet. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	reserved     map[string]string // upper-cased -> canonical spelling
	rootReserved map[string]string
	disabled     map[RuleID]bool
}

// NewEngine builds an Engine from rs
func NewEngine(rs RuleSet) *Engine {
	e := &Engine{
		reserved:     make(map[string]string, len(rs.ReservedNames)),
		rootReserved: make(map[string]string, len(rs.RootReservedNames)),
		disabled:     make(map[RuleID]bool, len(rs.Disabled)),
	}
	for _, n := range rs.ReservedNames {
		e.reserved[strings.ToUpper(n)] = n
	}
	for _, n := range rs.RootReservedNames {
		e.rootReserved[strings.ToUpper(n)] = n
	}
	for _, id := range rs.Disabled {
		e.disabled[id] = true
	}
	return e
}

// ReservedNames returns the effective device-name list, sorted
func (e *Engine) ReservedNames() []string {
	return sortedValues(e.reserved)
}

// RootReservedNames returns the effective root-only list, sorted
func (e *Engine) RootReservedNames() []string {
	return sortedValues(e.rootReserved)
}

// CheckReservedName matches name against the reserved lists. A device name is
// reserved with or without an extension ("con", "CON.txt"). Metadata names
// must match exactly and only when atRoot is set.
func (e *Engine) CheckReservedName(name string, atRoot bool) []Warning {
	var warnings []Warning
	upper := strings.ToUpper(name)

	stem := upper
	if idx := strings.Index(upper, "."); idx > 0 {
		stem = upper[:idx]
	}
	if canonical, ok := e.reserved[upper]; ok {
		warnings = append(warnings, newWarning(RuleReservedName, "name '%s' is reserved on Windows.", canonical))
	} else if canonical, ok := e.reserved[stem]; ok {
		warnings = append(warnings, newWarning(RuleReservedName, "name '%s' is reserved on Windows, even with an extension.", canonical))
	}

	if atRoot {
		if canonical, ok := e.rootReserved[upper]; ok {
			warnings = append(warnings, newWarning(RuleRootReservedName, "name '%s' is reserved in the root directory of NTFS volumes.", canonical))
		}
	}

	return warnings
}

// CheckPath runs the path-level checks
func (e *Engine) CheckPath(path string) []Warning {
	return e.filter(CheckPathLength(path))
}

// CheckComponent runs every single-segment check: length, content and
// reserved names
func (e *Engine) CheckComponent(name string, atRoot bool) []Warning {
	var warnings []Warning
	warnings = append(warnings, CheckComponentLength(name)...)
	warnings = append(warnings, CheckComponentContent(name)...)
	warnings = append(warnings, e.CheckReservedName(name, atRoot)...)
	return e.filter(warnings)
}

// CheckSiblings runs the case-collision check over one directory listing
func (e *Engine) CheckSiblings(names []string) []Warning {
	return e.filter(CheckSiblingCollisions(names))
}

// Enabled reports whether rule is active
func (e *Engine) Enabled(rule RuleID) bool {
	return !e.disabled[rule]
}

func (e *Engine) filter(warnings []Warning) []Warning {
	if len(e.disabled) == 0 || len(warnings) == 0 {
		return warnings
	}
	kept := warnings[:0]
	for _, w := range warnings {
		if !e.disabled[w.Rule] {
			kept = append(kept, w)
		}
	}
	return kept
}

func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
