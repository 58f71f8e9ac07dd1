package report

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"
	"unicode"

	"github.com/fatih/color"
)

// colorScheme holds the text format colors
type colorScheme struct {
	header  *color.Color
	message *color.Color
}

func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		header:  color.New(color.FgCyan, color.Bold),
		message: color.New(color.FgYellow),
	}
	// The decision is made by the caller, not by fatih/color's stdout check
	for _, c := range []*color.Color{s.header, s.message} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func renderText(w io.Writer, r *Report, useColor bool) error {
	scheme := newColorScheme(useColor)
	bw := bufio.NewWriter(w)

	for _, f := range r.Findings {
		scheme.header.Fprint(bw, displayText(f.Path)+":")
		bw.WriteString("\n")
		for _, warning := range f.Warnings {
			scheme.message.Fprint(bw, displayText(warning.Message))
			bw.WriteString("\n")
		}
	}

	return bw.Flush()
}

// displayText returns s unchanged unless it holds control characters, which
// would split a header line or drive the terminal; those strings are quoted
func displayText(s string) string {
	for _, r := range s {
		if unicode.IsControl(r) {
			return strconv.Quote(s)
		}
	}
	return s
}

type jsonWarning struct {
	Path    string `json:"path"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func renderJSONL(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for _, f := range r.Findings {
		for _, warning := range f.Warnings {
			if err := enc.Encode(jsonWarning{Path: f.Path, Rule: string(warning.Rule), Message: warning.Message}); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}
