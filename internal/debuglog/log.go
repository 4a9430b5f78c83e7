// Package debuglog is a small leveled logger that writes to a file so the
// terminal UI owns stdout/stderr. It is silent until Setup is called with a
// level other than LevelOff.
package debuglog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelOff:   "OFF",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLogLevel maps a config string to a level. Unknown values yield LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF", "NONE":
		return LevelOff
	default:
		return LevelInfo
	}
}

type sink struct {
	mu     sync.Mutex
	level  LogLevel
	logger *log.Logger
	closer io.Closer
}

var std = &sink{level: LevelOff}

// Setup opens (or creates) the log file and sets the level.
// An empty path logs to ~/.reel/reel.log.
func Setup(level LogLevel, path string) error {
	std.mu.Lock()
	defer std.mu.Unlock()

	std.closeLocked()
	std.level = level
	if level == LevelOff {
		return nil
	}

	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".reel", "reel.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}
	std.closer = f
	std.logger = log.New(f, "reel ", log.LstdFlags|log.Lmicroseconds)
	return nil
}

// SetOutput routes log lines to w. Intended for tests.
func SetOutput(level LogLevel, w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()

	std.closeLocked()
	std.level = level
	std.logger = log.New(w, "reel ", 0)
}

func SetLevel(level LogLevel) {
	std.mu.Lock()
	std.level = level
	std.mu.Unlock()
}

func GetLevel() LogLevel {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.level
}

// Close releases the log file, if any, and disables logging.
func Close() error {
	std.mu.Lock()
	defer std.mu.Unlock()
	err := std.closeLocked()
	std.level = LevelOff
	return err
}

func (s *sink) closeLocked() error {
	var err error
	if s.closer != nil {
		err = s.closer.Close()
		s.closer = nil
	}
	s.logger = nil
	return err
}

func (s *sink) write(level LogLevel, suffix, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logger == nil || level < s.level || s.level == LevelOff {
		return
	}
	s.logger.Printf("[%s] %s%s", level, fmt.Sprintf(format, args...), suffix)
}

func Debugf(format string, args ...any) { std.write(LevelDebug, "", format, args...) }
func Infof(format string, args ...any)  { std.write(LevelInfo, "", format, args...) }
func Warnf(format string, args ...any)  { std.write(LevelWarn, "", format, args...) }
func Errorf(format string, args ...any) { std.write(LevelError, "", format, args...) }

// Fields are key/value pairs appended to a log line.
type Fields map[string]any

// FieldLogger carries a fixed set of fields onto every line it writes.
type FieldLogger struct {
	suffix string
}

// WithFields returns a logger that appends fields, sorted by key.
func WithFields(fields Fields) *FieldLogger {
	if len(fields) == 0 {
		return &FieldLogger{}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return &FieldLogger{suffix: " [" + strings.Join(parts, " ") + "]"}
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	std.write(LevelDebug, fl.suffix, format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	std.write(LevelInfo, fl.suffix, format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	std.write(LevelWarn, fl.suffix, format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	std.write(LevelError, fl.suffix, format, args...)
}
