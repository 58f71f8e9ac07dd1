// Package logger provides diagnostic logging for namecheck runs.
//
// Loggers report scan progress and summaries. Rule violations are not logged;
// they are rendered by the report package. Implementations are thread-safe.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is the interface shared by all loggers
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogScanStart(root string, includeHidden bool)
	LogScanSummary(summary ScanSummary)
}

// ScanSummary holds the totals of one completed scan
type ScanSummary struct {
	Root     string
	Entries  int
	Paths    int // paths with at least one warning
	Warnings int
	Pruned   int
	Errors   int
	Duration time.Duration
}

// ConsoleLogger logs to a writer with [HH:MM:SS] timestamps and level filtering.
// Color output is enabled automatically for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive); anything
// else falls back to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// false when NO_COLOR is set or the stream is not a TTY
		return !color.NoColor
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if IsValidLevel(normalized) {
		return normalized
	}
	return "info"
}

// IsValidLevel reports whether level is one of the known level names
func IsValidLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// logLevelToInt converts a log level string to its numeric value
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose)
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// LogScanStart logs the start of a scan at INFO level
func (cl *ConsoleLogger) LogScanStart(root string, includeHidden bool) {
	cl.logWithLevel("INFO", formatScanStart(root, includeHidden))
}

// LogScanSummary logs the totals of a finished scan at INFO level.
// The count is highlighted yellow when warnings were found.
func (cl *ConsoleLogger) LogScanSummary(summary ScanSummary) {
	message := formatScanSummary(summary)
	if cl.colorOutput && summary.Warnings > 0 {
		message = color.New(color.FgYellow).Sprint(message)
	} else if cl.colorOutput {
		message = color.New(color.FgGreen).Sprint(message)
	}
	cl.logWithLevel("INFO", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with a colored level tag
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch level {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

func formatScanStart(root string, includeHidden bool) string {
	if includeHidden {
		return fmt.Sprintf("Scanning %s (including hidden entries)", root)
	}
	return fmt.Sprintf("Scanning %s", root)
}

func formatScanSummary(s ScanSummary) string {
	msg := fmt.Sprintf("%d %s in %d %s, %d %s scanned in %s",
		s.Warnings, plural(s.Warnings, "warning", "warnings"),
		s.Paths, plural(s.Paths, "path", "paths"),
		s.Entries, plural(s.Entries, "entry", "entries"),
		formatDuration(s.Duration))
	if s.Pruned > 0 {
		msg += fmt.Sprintf(", %d hidden skipped", s.Pruned)
	}
	if s.Errors > 0 {
		msg += fmt.Sprintf(", %d unreadable", s.Errors)
	}
	return msg
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// timestamp returns the current time formatted as HH:MM:SS
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration renders d compactly: "850ms", "1.2s", "2m5s"
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

// NoOpLogger discards everything
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that discards all messages
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogScanStart(string, bool) {}
func (n *NoOpLogger) LogScanSummary(ScanSummary) {}
