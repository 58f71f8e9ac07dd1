package rules

import (
	"strings"
	"unicode/utf8"
)

// Length limits in Unicode code points
const (
	MaxLongPathLength  = 32767
	MaxPathLength      = 255
	MaxComponentLength = 255
)

// DisallowedCharacters lists the printable characters rejected by at least one
// target file system. NUL is rejected as well; it is reported as '\0' by the
// character rule and again by the control-character rule.
const DisallowedCharacters = `$/\<>[]|@*=%,;:?!"`

// CheckPathLength checks a full path against both length limits.
// The long-path warning, when present, comes first.
func CheckPathLength(path string) []Warning {
	var warnings []Warning
	n := utf8.RuneCountInString(path)

	if n > MaxLongPathLength {
		warnings = append(warnings, newWarning(RuleLongPath, "path longer than %d characters", MaxLongPathLength))
	}
	if n > MaxPathLength {
		warnings = append(warnings, newWarning(RulePathLength, "path longer than %d characters", MaxPathLength))
	}

	return warnings
}

// CheckComponentLength checks a single path segment against the 255 limit
func CheckComponentLength(name string) []Warning {
	if utf8.RuneCountInString(name) > MaxComponentLength {
		return []Warning{newWarning(RuleComponentLength, "component longer than %d characters", MaxComponentLength)}
	}
	return nil
}

// CheckComponentContent checks the characters of a single path segment.
// Each offending character is reported once regardless of how often it occurs.
func CheckComponentContent(name string) []Warning {
	var warnings []Warning

	for _, c := range DisallowedCharacters {
		if strings.ContainsRune(name, c) {
			warnings = append(warnings, newWarning(RuleCharacter, "character '%c' not permitted by all file systems.", c))
		}
	}
	if strings.IndexByte(name, 0) >= 0 {
		warnings = append(warnings, newWarning(RuleCharacter, `character '\0' not permitted by all file systems.`))
	}

	var seen [32]bool
	for i := 0; i < len(name); i++ {
		if b := name[i]; b < 32 {
			seen[b] = true
		}
	}
	for c, present := range seen {
		if present {
			warnings = append(warnings, newWarning(RuleControlCharacter, "ASCII control character 0x%02X not permitted by all file systems.", c))
		}
	}

	if strings.HasSuffix(name, " ") {
		warnings = append(warnings, newWarning(RuleTrailingSpace, "ends with a space"))
	}

	if strings.HasSuffix(name, ".") && name != "." {
		warnings = append(warnings, newWarning(RuleTrailingPeriod, "ends with a period"))
	}

	return warnings
}

// CheckSiblingCollisions reports every unordered pair of names in one
// directory that are equal once lowercased. Pairs appear in listing order.
func CheckSiblingCollisions(names []string) []Warning {
	groups := make(map[string][]string)
	var order []string

	for _, name := range names {
		key := strings.ToLower(name)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], name)
	}

	var warnings []Warning
	for _, key := range order {
		group := groups[key]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i] == group[j] {
					continue
				}
				warnings = append(warnings, newWarning(RuleCaseCollision, "%q and %q differ only by case", group[i], group[j]))
			}
		}
	}

	return warnings
}
