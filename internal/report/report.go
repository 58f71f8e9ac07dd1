// Package report renders scan findings for people and machines.
//
// Formats:
//   - text: a "path:" header line per offending path, then one message per line
//   - jsonl: one {"path","rule","message"} object per warning
//   - markdown: a heading per path and a bullet per warning
//   - html: the markdown rendering converted with goldmark
//
// All renderers write to an io.Writer and keep the walk's visit order.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/harrison/namecheck/internal/config"
	"github.com/harrison/namecheck/internal/filelock"
	"github.com/harrison/namecheck/internal/walker"
)

// Report is the renderable outcome of one scan
type Report struct {
	RunID         string
	Root          string
	IncludeHidden bool
	Started       time.Time
	Entries       int
	Findings      []walker.Finding
}

// FromResult builds a Report from a walk result
func FromResult(runID string, res *walker.Result, includeHidden bool, started time.Time) *Report {
	return &Report{
		RunID:         runID,
		Root:          res.Root,
		IncludeHidden: includeHidden,
		Started:       started,
		Entries:       len(res.Entries),
		Findings:      res.Findings,
	}
}

// WarningCount returns the number of warnings in the report
func (r *Report) WarningCount() int {
	n := 0
	for _, f := range r.Findings {
		n += len(f.Warnings)
	}
	return n
}

// Options controls rendering
type Options struct {
	Format string // one of the config.Format* constants
	Color  bool   // text format only
}

// Render writes r to w in the requested format
func Render(w io.Writer, r *Report, opts Options) error {
	switch opts.Format {
	case config.FormatText, "":
		return renderText(w, r, opts.Color)
	case config.FormatJSONL:
		return renderJSONL(w, r)
	case config.FormatMarkdown:
		return renderMarkdown(w, r)
	case config.FormatHTML:
		return renderHTML(w, r)
	default:
		return fmt.Errorf("unknown report format %q", opts.Format)
	}
}

// WriteFile renders r into path atomically while holding the report lock
func WriteFile(ctx context.Context, path string, r *Report, opts Options) error {
	opts.Color = false
	return filelock.LockAndWrite(ctx, path, func(w io.Writer) error {
		return Render(w, r, opts)
	})
}

// ColorEnabled reports whether w is a terminal that should get color.
// NO_COLOR disables color regardless.
func ColorEnabled(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
