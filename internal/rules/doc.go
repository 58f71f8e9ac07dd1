// Package rules checks file and directory names for compatibility with
// common file systems (exFAT, ext3, NTFS).
//
// The checks are pure functions over strings. They never touch the file
// system and they err on the side of over-reporting: a name that one of the
// target file systems might reject or silently alter is flagged.
//
// # Checks
//
//   - CheckPathLength: full path against the NTFS long-path limit (32767) and
//     the legacy 255 limit. Both thresholds are reported independently.
//   - CheckComponentLength: a single path segment against the 255 limit.
//   - CheckComponentContent: disallowed characters, ASCII control characters,
//     trailing spaces and trailing periods in a single segment.
//   - Engine.CheckReservedName: Windows device names anywhere, NTFS metadata
//     names at the scan root.
//   - CheckSiblingCollisions: names in one directory that differ only by case.
//
// Component checks must only ever receive a single segment. Passing a string
// with a path separator is a caller bug.
//
// # Usage
//
//	engine := rules.NewEngine(rules.DefaultRuleSet())
//	warnings := engine.CheckComponent("CON.txt", false)
//	for _, w := range warnings {
//	    fmt.Println(w.Rule, w.Message)
//	}
package rules
