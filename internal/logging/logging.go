// Package logging provides the structured leveled logger used across the
// registry. Logs go to stderr by default so that command output on stdout
// stays machine-readable.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// Level represents the severity of a log message.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

var levelPriority = map[Level]int{
	DebugLevel: 0,
	InfoLevel:  1,
	WarnLevel:  2,
	ErrorLevel: 3,
}

// Format selects the output encoding.
type Format string

const (
	// JSONFormat emits one JSON object per line.
	JSONFormat Format = "json"
	// HumanFormat emits a readable single-line format.
	HumanFormat Format = "human"
)

// Config holds logger configuration.
type Config struct {
	Format Format
	Level  Level
	Output io.Writer // defaults to stderr
}

// Logger provides structured logging with a fixed component tag.
type Logger struct {
	cfg       Config
	writer    io.Writer
	component string
}

// New creates a logger with the given configuration. Unknown levels and
// formats fall back to info/human.
func New(cfg Config) *Logger {
	if _, ok := levelPriority[cfg.Level]; !ok {
		cfg.Level = InfoLevel
	}
	if cfg.Format != JSONFormat {
		cfg.Format = HumanFormat
	}
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	return &Logger{cfg: cfg, writer: w}
}

// Named returns a logger that tags every entry with the component name.
func (l *Logger) Named(component string) *Logger {
	clone := *l
	clone.component = component
	return &clone
}

type entry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func (l *Logger) enabled(level Level) bool {
	return levelPriority[level] >= levelPriority[l.cfg.Level]
}

func (l *Logger) log(level Level, msg string, fields map[string]any) {
	if !l.enabled(level) {
		return
	}

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Component: l.component,
		Message:   msg,
		Fields:    fields,
	}

	if l.cfg.Format == JSONFormat {
		data, err := json.Marshal(e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to marshal log entry: %v\n", err)
			return
		}
		fmt.Fprintln(l.writer, string(data))
		return
	}

	if e.Component != "" {
		fmt.Fprintf(l.writer, "%s [%s] %s: %s", e.Timestamp, e.Level, e.Component, e.Message)
	} else {
		fmt.Fprintf(l.writer, "%s [%s] %s", e.Timestamp, e.Level, e.Message)
	}
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprint(l.writer, " |")
		for _, k := range keys {
			fmt.Fprintf(l.writer, " %s=%v", k, fields[k])
		}
	}
	fmt.Fprintln(l.writer)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields map[string]any) { l.log(DebugLevel, msg, fields) }

// Info logs an info message.
func (l *Logger) Info(msg string, fields map[string]any) { l.log(InfoLevel, msg, fields) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields map[string]any) { l.log(WarnLevel, msg, fields) }

// Error logs an error message.
func (l *Logger) Error(msg string, fields map[string]any) { l.log(ErrorLevel, msg, fields) }
