package walker

import "github.com/harrison/namecheck/internal/rules"

// Entry is one visited file or directory
type Entry struct {
	Path      string
	Name      string // final segment of Path
	IsDir     bool
	IsSymlink bool
	IsHidden  bool
	Depth     int // 0 for the scan root
}

// Finding groups the warnings raised for one path
type Finding struct {
	Path     string
	Warnings []rules.Warning
}

// Result is everything one walk produced, in visit order
type Result struct {
	Root     string
	Entries  []Entry
	Findings []Finding
	// Pruned lists hidden entries skipped together with their subtrees
	Pruned []string
	// Errors holds non-fatal errors (permission failures)
	Errors []error
}

// add appends warnings for path, merging into the previous finding when it
// is for the same path so each path gets a single group
func (r *Result) add(path string, warnings []rules.Warning) {
	if len(warnings) == 0 {
		return
	}
	if n := len(r.Findings); n > 0 && r.Findings[n-1].Path == path {
		r.Findings[n-1].Warnings = append(r.Findings[n-1].Warnings, warnings...)
		return
	}
	r.Findings = append(r.Findings, Finding{Path: path, Warnings: append([]rules.Warning(nil), warnings...)})
}

// WarningCount returns the total number of warnings across all findings
func (r *Result) WarningCount() int {
	n := 0
	for _, f := range r.Findings {
		n += len(f.Warnings)
	}
	return n
}

// Visited returns the paths of all visited entries
func (r *Result) Visited() []string {
	paths := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		paths[i] = e.Path
	}
	return paths
}
