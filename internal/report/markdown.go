package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

func renderMarkdown(w io.Writer, r *Report) error {
	_, err := io.WriteString(w, buildMarkdown(r))
	return err
}

func buildMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# File name compatibility report\n\n")
	sb.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Root | %s |\n", escapeMarkdown(r.Root))
	if r.RunID != "" {
		fmt.Fprintf(&sb, "| Run | %s |\n", escapeMarkdown(r.RunID))
	}
	if !r.Started.IsZero() {
		fmt.Fprintf(&sb, "| Started | %s |\n", r.Started.Format(time.RFC3339))
	}
	fmt.Fprintf(&sb, "| Hidden entries | %s |\n", includedLabel(r.IncludeHidden))
	fmt.Fprintf(&sb, "| Entries scanned | %d |\n", r.Entries)
	fmt.Fprintf(&sb, "| Warnings | %d |\n\n", r.WarningCount())

	if len(r.Findings) == 0 {
		sb.WriteString("No problems found.\n")
		return sb.String()
	}

	for _, f := range r.Findings {
		fmt.Fprintf(&sb, "## %s\n\n", escapeMarkdown(f.Path))
		for _, warning := range f.Warnings {
			fmt.Fprintf(&sb, "- **%s**: %s\n", warning.Rule, escapeMarkdown(warning.Message))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func renderHTML(w io.Writer, r *Report) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(buildMarkdown(r)), &body); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>namecheck: %s</title>\n", html.EscapeString(r.Root))
	sb.WriteString("</head>\n<body>\n")
	sb.Write(body.Bytes())
	sb.WriteString("</body>\n</html>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// escapeMarkdown backslash-escapes every ASCII punctuation character so that
// file names are shown literally. Newlines and other control characters are
// replaced by their escaped form.
func escapeMarkdown(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, "\\\\x%02X", r)
		case r < 0x80 && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func includedLabel(included bool) string {
	if included {
		return "included"
	}
	return "skipped"
}
