// Package walker applies the name rules to every entry of a directory tree.
//
// The walk is depth-first and single-threaded. Each directory is listed once;
// its listing feeds the sibling collision check and then the recursion, in
// lexical order. Nothing is modified on disk.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/namecheck/internal/rules"
)

// Checker is the rule set applied to each entry. *rules.Engine implements it.
type Checker interface {
	CheckPath(path string) []rules.Warning
	CheckComponent(name string, atRoot bool) []rules.Warning
	CheckSiblings(names []string) []rules.Warning
}

// Logger receives diagnostic messages. Rule violations are never logged,
// they are returned in the Result.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
}

// EntryHook adds type-specific checks for files or directories
type EntryHook func(e Entry) []rules.Warning

// Options configures a walk
type Options struct {
	// IncludeHidden visits entries whose name starts with "."
	IncludeHidden bool
	// FileHook runs after the shared checks on non-directory entries
	FileHook EntryHook
	// DirectoryHook runs after the shared checks on directories
	DirectoryHook EntryHook
}

// Walker traverses trees with a fixed Checker and Options
type Walker struct {
	checker Checker
	opts    Options
	logger  Logger
}

// New creates a Walker. A nil logger discards diagnostics.
func New(checker Checker, opts Options, logger Logger) *Walker {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Walker{checker: checker, opts: opts, logger: logger}
}

// Walk scans root and everything below it. It fails with *NotFoundError when
// root, or an entry discovered mid-walk, does not exist. Permission failures
// are recorded as warnings and in Result.Errors.
func (w *Walker) Walk(ctx context.Context, root string) (*Result, error) {
	name, checkName := rootComponent(root)

	result := &Result{Root: root}
	if err := w.visit(ctx, root, name, checkName, 0, result); err != nil {
		return nil, err
	}

	w.logger.LogDebug(fmt.Sprintf("scanned %d entries under %s, pruned %d hidden", len(result.Entries), root, len(result.Pruned)))
	return result, nil
}

func (w *Walker) visit(ctx context.Context, path, name string, checkName bool, depth int, result *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// The root was requested explicitly and is never pruned. Pruning before
	// Lstat keeps unsearchable directories from reporting hidden children.
	if depth > 0 && IsHidden(name) && !w.opts.IncludeHidden {
		w.logger.LogTrace("pruning hidden entry " + path)
		result.Pruned = append(result.Pruned, path)
		return nil
	}

	info, err := os.Lstat(path)
	if err != nil {
		return w.statFailure(path, err, result)
	}

	symlink := info.Mode()&fs.ModeSymlink != 0
	if symlink {
		target, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			w.logger.LogTrace("skipping broken symlink " + path)
			return nil
		}
		// A symlinked root is followed; links found below it are not.
		if depth == 0 && err == nil {
			info = target
		}
	}

	entry := Entry{
		Path:      path,
		Name:      name,
		IsDir:     info.IsDir(),
		IsSymlink: symlink,
		IsHidden:  IsHidden(name),
		Depth:     depth,
	}
	result.Entries = append(result.Entries, entry)

	result.add(path, w.checker.CheckPath(path))
	if checkName {
		result.add(path, w.checker.CheckComponent(name, depth == 1))
	}

	if !entry.IsDir {
		if w.opts.FileHook != nil {
			result.add(path, w.opts.FileHook(entry))
		}
		return nil
	}

	if w.opts.DirectoryHook != nil {
		result.add(path, w.opts.DirectoryHook(entry))
	}

	children, err := os.ReadDir(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrPermission):
			w.recordPermission(path, "list", err, result)
			return nil
		case errors.Is(err, fs.ErrNotExist):
			return &NotFoundError{Path: path}
		default:
			return fmt.Errorf("failed to list %s: %w", path, err)
		}
	}

	names := make([]string, len(children))
	for i, child := range children {
		names[i] = child.Name()
	}
	result.add(path, w.checker.CheckSiblings(names))

	for _, child := range names {
		if err := w.visit(ctx, filepath.Join(path, child), child, true, depth+1, result); err != nil {
			return err
		}
	}

	return nil
}

func (w *Walker) statFailure(path string, err error, result *Result) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &NotFoundError{Path: path}
	case errors.Is(err, fs.ErrPermission):
		w.recordPermission(path, "stat", err, result)
		return nil
	default:
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
}

func (w *Walker) recordPermission(path, op string, err error, result *Result) {
	pe := &PermissionError{Path: path, Op: op, Err: err}
	result.Errors = append(result.Errors, pe)
	result.add(path, []rules.Warning{{
		Rule:    rules.RuleUnreadable,
		Message: fmt.Sprintf("could not be inspected (%s): permission denied", op),
	}})
	w.logger.LogDebug(pe.Error())
}

// IsHidden reports whether name follows the dot-file convention.
// "." itself is not hidden.
func IsHidden(name string) bool {
	return name != "." && strings.HasPrefix(name, ".")
}

// rootComponent returns the name to check for the scan root and whether it
// should be checked at all. Relative roots such as "." or ".." resolve to the
// directory they denote; volume roots have no name to check.
func rootComponent(root string) (string, bool) {
	clean := filepath.Clean(root)
	name := filepath.Base(clean)
	if name == "." || name == ".." {
		if abs, err := filepath.Abs(clean); err == nil {
			name = filepath.Base(abs)
		}
	}
	if name == "" || name == string(filepath.Separator) {
		return name, false
	}
	return name, true
}

type nopLogger struct{}

func (nopLogger) LogTrace(string) {}
func (nopLogger) LogDebug(string) {}
