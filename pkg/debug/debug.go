// Package debug provides category-based debug logging for the cast service.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): controlled via CAST_DEBUG env or config
//   - Levels (HOW MUCH detail): controlled via CAST_LOG_LEVEL env or config
//
// Usage:
//
//	debug.Log("pool", "connection acquired", "acquired", n)
//	if debug.Enabled("storage") { /* expensive formatting */ }
//
// Categories: storage, pool, config, http, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTrace is below slog.LevelDebug for maximum verbosity.
// At TRACE, SQL statements are logged, truncated to a bounded length.
const LevelTrace = slog.LevelDebug - 4

// categories holds the set of enabled debug categories.
// Access is read-only after Init(), so no synchronization needed.
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv("CAST_DEBUG"))
}

// Settings configures logging output.
type Settings struct {
	Categories string // comma-separated debug categories
	Level      string // ERROR, WARN, INFO, DEBUG, TRACE
	Format     string // "text" (default) or "json"

	// File, when set, sends log output to a size-rotated file instead of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init configures the debug system and installs the default slog logger.
// Environment overrides config. The returned closer releases the log file,
// if any.
func Init(s Settings) io.Closer {
	cats := os.Getenv("CAST_DEBUG")
	if cats == "" {
		cats = s.Categories
	}
	categories = parseCategories(cats)

	level := os.Getenv("CAST_LOG_LEVEL")
	if level == "" {
		level = s.Level
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if s.File != "" {
		lj := &lumberjack.Logger{
			Filename:   s.File,
			MaxSize:    s.MaxSizeMB,
			MaxBackups: s.MaxBackups,
			MaxAge:     s.MaxAgeDays,
		}
		out = lj
		closer = lj
	}

	slog.SetDefault(slog.New(NewHandler(out, s.Format, ParseLevel(level))))
	return closer
}

// NewHandler returns a slog handler writing to w in the given format.
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the given category.
// If the category is not enabled, this is a no-op.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level message for the given category.
// Only visible when CAST_LOG_LEVEL=TRACE.
func Trace(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// ParseLevel converts a level string to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the list of enabled categories.
func Categories() []string {
	var result []string
	for k := range categories {
		result = append(result, k)
	}
	return result
}

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	if s == "" {
		return m
	}
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
