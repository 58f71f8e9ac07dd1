package rules

import "fmt"

// RuleID identifies the rule that produced a warning
type RuleID string

// Rule identifiers, stable across releases (used in config and JSON output)
const (
	RuleLongPath         RuleID = "long-path"
	RulePathLength       RuleID = "path-length"
	RuleComponentLength  RuleID = "component-length"
	RuleCharacter        RuleID = "character"
	RuleControlCharacter RuleID = "control-character"
	RuleTrailingSpace    RuleID = "trailing-space"
	RuleTrailingPeriod   RuleID = "trailing-period"
	RuleReservedName     RuleID = "reserved-name"
	RuleRootReservedName RuleID = "root-reserved-name"
	RuleCaseCollision    RuleID = "case-collision"
	RuleUnreadable       RuleID = "unreadable"
)

// RuleInfo describes a rule for listings
type RuleInfo struct {
	ID          RuleID
	Description string
}

// AllRules returns every rule in reporting order
func AllRules() []RuleInfo {
	return []RuleInfo{
		{RuleLongPath, fmt.Sprintf("path longer than %d characters", MaxLongPathLength)},
		{RulePathLength, fmt.Sprintf("path longer than %d characters", MaxPathLength)},
		{RuleComponentLength, fmt.Sprintf("component longer than %d characters", MaxComponentLength)},
		{RuleCharacter, "character not permitted by all file systems"},
		{RuleControlCharacter, "ASCII control character (0-31) in name"},
		{RuleTrailingSpace, "name ends with a space"},
		{RuleTrailingPeriod, "name ends with a period"},
		{RuleReservedName, "Windows device name"},
		{RuleRootReservedName, "NTFS metadata name directly under the scan root"},
		{RuleCaseCollision, "sibling names differing only by case"},
		{RuleUnreadable, "entry could not be inspected"},
	}
}

// IsKnownRule reports whether id names a rule
func IsKnownRule(id string) bool {
	for _, r := range AllRules() {
		if string(r.ID) == id {
			return true
		}
	}
	return false
}

// Warning is a single rule violation
type Warning struct {
	Rule    RuleID
	Message string
}

// String returns the human-readable message
func (w Warning) String() string {
	return w.Message
}

func newWarning(rule RuleID, format string, args ...interface{}) Warning {
	return Warning{Rule: rule, Message: fmt.Sprintf(format, args...)}
}
