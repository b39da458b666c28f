// Package logging provides config-driven categorized file-based logging for Nova.
// Logs are written to .nova/logs/ with one file per subsystem category.
// Logging is controlled by the debugMode argument to Initialize - when false
// (the default), nothing is written: Nova is a library embedded in another
// process's event loop and must stay silent unless that process opts in.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category identifies which Nova subsystem a log line belongs to.
type Category string

const (
	CategoryClasspath Category = "classpath"
	CategoryClassfile Category = "classfile"
	CategorySyntax    Category = "syntax"
	CategoryHIR       Category = "hir"
	CategoryResolve   Category = "resolve"
	CategoryTypes     Category = "types"
	CategoryFlow      Category = "flow"
	CategoryTypeck    Category = "typeck"
	CategoryDB        Category = "db"
	CategoryWorkspace Category = "workspace"
	CategoryJDK       Category = "jdk"
)

// loggingConfig is populated by the embedding process via Initialize; Nova
// never reads a config file of its own (see SPEC_FULL.md's Configuration
// section).
type loggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories"`
	Level      string          `json:"level"`
	JSONFormat bool            `json:"json_format"`
}

// StructuredLogEntry is a single JSON log line, one object per line, for
// downstream tooling that wants to parse Nova's logs instead of grepping them.
type StructuredLogEntry struct {
	Timestamp int64                  `json:"ts"`
	Category  string                 `json:"cat"`
	Level     string                 `json:"lvl"`
	Message   string                 `json:"msg"`
	RequestID string                 `json:"req,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger wraps a standard logger with category and file output. The zero
// value (as returned when a category is disabled) is a valid no-op logger.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	workspace string
	config    loggingConfig
	configMu  sync.RWMutex
	logLevel  int
)

// Initialize sets up the logging directory for a workspace. Call once per
// process before any package issues a log call through Get. An empty ws is an
// error. With debugMode false, Initialize only records the settings and
// creates no directory or file; with it true, it also writes a startup line
// to the db category's log.
func Initialize(ws string, debugMode bool, jsonFormat bool, level string) error {
	if ws == "" {
		return fmt.Errorf("logging: workspace path required")
	}

	configMu.Lock()
	workspace = ws
	logsDir = filepath.Join(workspace, ".nova", "logs")
	config = loggingConfig{DebugMode: debugMode, JSONFormat: jsonFormat, Level: level}
	switch level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	configMu.Unlock()

	if !debugMode {
		return nil
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("logging: create logs directory: %w", err)
	}

	boot := Get(CategoryDB)
	boot.Info("nova logging initialized, workspace=%s level=%s json=%v", workspace, level, jsonFormat)
	return nil
}

// IsDebugMode reports whether Initialize was called with debug logging on.
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.DebugMode
}

func isCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()
	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or lazily creates) the logger for category. Returns a no-op
// logger when debug mode or the category is disabled; callers never need to
// check IsDebugMode themselves before logging.
func Get(category Category) *Logger {
	if !isCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) logJSON(level, msg string) {
	entry := StructuredLogEntry{Timestamp: time.Now().UnixMilli(), Category: string(l.category), Level: level, Message: msg}
	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Printf("[%s] %s", level, msg)
		return
	}
	l.logger.Printf("%s", data)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.emit("debug", fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.emit("info", fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.emit("warn", fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.emit("error", fmt.Sprintf(format, args...))
}

func (l *Logger) emit(level, msg string) {
	if config.JSONFormat {
		l.logJSON(level, msg)
		return
	}
	l.logger.Printf("[%s] %s", level, msg)
}

// CloseAll flushes and closes every open log file. Call during process
// shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for cat, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
		delete(loggers, cat)
	}
}

// RequestLogger attaches a cancellation-token or request id to every line it
// emits, so a query's whole lifecycle can be grepped out of a shared log file.
type RequestLogger struct {
	logger    *Logger
	requestID string
}

// WithRequestID returns a logger for category that tags every line with id.
func WithRequestID(category Category, id string) *RequestLogger {
	return &RequestLogger{logger: Get(category), requestID: id}
}

func (r *RequestLogger) Debug(format string, args ...interface{}) {
	r.logger.Debug("[req=%s] %s", r.requestID, fmt.Sprintf(format, args...))
}

func (r *RequestLogger) Info(format string, args ...interface{}) {
	r.logger.Info("[req=%s] %s", r.requestID, fmt.Sprintf(format, args...))
}

func (r *RequestLogger) Warn(format string, args ...interface{}) {
	r.logger.Warn("[req=%s] %s", r.requestID, fmt.Sprintf(format, args...))
}

func (r *RequestLogger) Error(format string, args ...interface{}) {
	r.logger.Error("[req=%s] %s", r.requestID, fmt.Sprintf(format, args...))
}

// Timer records an operation's duration against a category logger, warning
// if the operation runs past a threshold (used by db to flag slow queries;
// classpath and jdk only log their durations via Stop).
type Timer struct {
	logger *Logger
	op     string
	start  time.Time
}

// StartTimer begins timing operation op under category.
func StartTimer(category Category, op string) *Timer {
	return &Timer{logger: Get(category), op: op, start: time.Now()}
}

// Stop logs the elapsed duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Debug("%s took %s", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs at warn level instead of debug if elapsed exceeds
// threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		t.logger.Warn("%s took %s, exceeding threshold %s", t.op, elapsed, threshold)
	} else {
		t.logger.Debug("%s took %s", t.op, elapsed)
	}
	return elapsed
}
