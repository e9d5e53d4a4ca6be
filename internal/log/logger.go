// Package log implements trackast's leveled diagnostic logger. Every
// line goes to stderr; stdout is reserved exclusively for the
// analysis's JSON/DOT payload (spec §6), so unlike a general-purpose
// logging package this one never accepts an stdout writer at all.
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level represents log severity levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger interface defines structured logging methods. Component scopes
// every subsequent line to a named pipeline stage (loader, builder,
// cli, ...) without callers having to pass "component" as a key/value
// arg on every call site.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	SetLevel(level Level)
	SetJSONOutput(enabled bool)
	Component(name string) Logger
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level      Level
	JSONOutput bool
	Stderr     io.Writer
}

// DefaultLogger is the default implementation of Logger
type DefaultLogger struct {
	mu         sync.Mutex
	level      Level
	jsonOutput bool
	stderr     io.Writer
	colors     bool
}

var (
	defaultLogger *DefaultLogger
	once          sync.Once
)

// New creates a new logger with the given configuration
func New(cfg LoggerConfig) *DefaultLogger {
	l := &DefaultLogger{
		level:      cfg.Level,
		jsonOutput: cfg.JSONOutput,
		stderr:     cfg.Stderr,
		colors:     isTerminal(cfg.Stderr),
	}

	if l.stderr == nil {
		l.stderr = os.Stderr
	}

	return l
}

// Default returns the default logger instance
func Default() *DefaultLogger {
	once.Do(func() {
		defaultLogger = New(LoggerConfig{
			Level:  InfoLevel,
			Stderr: os.Stderr,
		})
	})
	return defaultLogger
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminalFD(f)
	}
	return false
}

// isTerminalFD checks if the file is a character device (a terminal)
// and color output is not disabled by isTerminalPath.
func isTerminalFD(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	return isTerminalPath(f.Name())
}

// isTerminalPath reports whether color output is allowed; the path
// itself is not inspected.
func isTerminalPath(path string) bool {
	return isatty()
}

// isatty reports isTTY().
func isatty() bool {
	return isTTY()
}

// IsTTY reports isTTY(); it does not inspect any file descriptor.
func IsTTY() bool {
	return isTTY()
}

// isTTY returns true when not on Windows and IsTerminalWidth is
// nonzero (NO_COLOR unset).
func isTTY() bool {
	return runtime.GOOS != "windows" && IsTerminalWidth() > 0
}

// IsTerminalWidth returns 0 when NO_COLOR is set and a fixed width of 80
// otherwise; it does not query the terminal.
func IsTerminalWidth() int {
	if os.Getenv("NO_COLOR") != "" {
		return 0
	}
	return 80 // Default assumption
}

// formatMessage formats the message with key-value args
func formatMessage(msg string, args ...interface{}) string {
	if len(args) == 0 {
		return msg
	}

	var sb strings.Builder
	sb.WriteString(msg)

	if len(args)%2 != 0 {
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprintf("%v", args[0]))
		args = args[1:]
	}

	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(fmt.Sprintf("%v", args[i+1]))
	}

	return sb.String()
}

// colorize wraps the message with ANSI color codes if colors are enabled
func (l *DefaultLogger) colorize(level Level, msg string) string {
	if !l.colors {
		return msg
	}

	color := getColor(level)
	reset := "\033[0m"
	return color + msg + reset
}

// getColor returns the ANSI color code for the given level
func getColor(level Level) string {
	switch level {
	case DebugLevel:
		return "\033[36m" // Cyan
	case InfoLevel:
		return "\033[32m" // Green
	case WarnLevel:
		return "\033[33m" // Yellow
	case ErrorLevel:
		return "\033[31m" // Red
	default:
		return ""
	}
}

// write outputs the log message, tagging it with component if set.
func (l *DefaultLogger) write(level Level, component, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	levelStr := level.String()

	if l.jsonOutput {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     levelStr,
			"message":   msg,
		}
		if component != "" {
			entry["component"] = component
		}
		data, _ := json.Marshal(entry)
		fmt.Fprintln(l.stderr, string(data))
		return
	}

	prefix := levelStr
	if component != "" {
		prefix = component + " " + levelStr
	}
	coloredMsg := l.colorize(level, msg)
	fmt.Fprintf(l.stderr, "[%s] %s: %s\n", timestamp, prefix, coloredMsg)
}

// Debug logs a debug message
func (l *DefaultLogger) Debug(msg string, args ...interface{}) {
	if l.level > DebugLevel {
		return
	}
	l.write(DebugLevel, "", formatMessage(msg, args...))
}

// Info logs an info message
func (l *DefaultLogger) Info(msg string, args ...interface{}) {
	if l.level > InfoLevel {
		return
	}
	l.write(InfoLevel, "", formatMessage(msg, args...))
}

// Warn logs a warning message
func (l *DefaultLogger) Warn(msg string, args ...interface{}) {
	if l.level > WarnLevel {
		return
	}
	l.write(WarnLevel, "", formatMessage(msg, args...))
}

// Error logs an error message
func (l *DefaultLogger) Error(msg string, args ...interface{}) {
	if l.level > ErrorLevel {
		return
	}
	l.write(ErrorLevel, "", formatMessage(msg, args...))
}

// SetLevel sets the minimum log level
func (l *DefaultLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetJSONOutput enables or disables JSON output
func (l *DefaultLogger) SetJSONOutput(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonOutput = enabled
}

// Component returns a view of l that tags every line it logs with name,
// so a pipeline stage (loader, builder, cli) doesn't have to repeat
// "component"=name as an arg on every call site. Level and JSON-output
// changes made through the view affect the underlying logger.
func (l *DefaultLogger) Component(name string) Logger {
	return &componentLogger{parent: l, name: name}
}

type componentLogger struct {
	parent *DefaultLogger
	name   string
}

func (c *componentLogger) Debug(msg string, args ...interface{}) {
	if c.parent.level > DebugLevel {
		return
	}
	c.parent.write(DebugLevel, c.name, formatMessage(msg, args...))
}

func (c *componentLogger) Info(msg string, args ...interface{}) {
	if c.parent.level > InfoLevel {
		return
	}
	c.parent.write(InfoLevel, c.name, formatMessage(msg, args...))
}

func (c *componentLogger) Warn(msg string, args ...interface{}) {
	if c.parent.level > WarnLevel {
		return
	}
	c.parent.write(WarnLevel, c.name, formatMessage(msg, args...))
}

func (c *componentLogger) Error(msg string, args ...interface{}) {
	if c.parent.level > ErrorLevel {
		return
	}
	c.parent.write(ErrorLevel, c.name, formatMessage(msg, args...))
}

func (c *componentLogger) SetLevel(level Level)       { c.parent.SetLevel(level) }
func (c *componentLogger) SetJSONOutput(enabled bool) { c.parent.SetJSONOutput(enabled) }
func (c *componentLogger) Component(name string) Logger {
	return c.parent.Component(name)
}
