// Package logger provides the leveled, secret-masking logger used by the CLI
// and the Codacy client.
package logger

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JNZader/eslintsync/internal/diag"
)

// Level represents logging levels
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name as used in configuration files.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger is a structured logger with secret masking
type Logger struct {
	level   Level
	output  io.Writer
	prefix  string
	fields  map[string]interface{}
	mu      *sync.Mutex
	secrets *secretSet
}

// secretSet holds literal values registered at runtime, such as the
// configured API token, shared by every derived logger.
type secretSet struct {
	mu     sync.RWMutex
	values []string
}

// Secret patterns masked in every message. Codacy tokens have no fixed
// prefix, so the configured token is also registered literally.
var defaultSecretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api-token:\s*[^\s"']+)`),                                                  // Codacy header
	regexp.MustCompile(`(?i)(api[_-]?token[=:]\s*["']?[a-zA-Z0-9_-]{8,}["']?)`),                        // Codacy token assignments
	regexp.MustCompile(`(?i)(Bearer\s+[a-zA-Z0-9._-]+)`),                                               // Bearer tokens
	regexp.MustCompile(`(?i)(gh[pousr]_[a-zA-Z0-9]{36})`),                                              // GitHub tokens
	regexp.MustCompile(`(?i)(glpat-[a-zA-Z0-9_-]{20,})`),                                               // GitLab PAT
	regexp.MustCompile(`-----BEGIN [A-Z ]+ PRIVATE KEY-----[\s\S]*?-----END [A-Z ]+ PRIVATE KEY-----`), // Private keys
}

// Sensitive field names that should be masked in structured logging
var sensitiveFieldNames = map[string]bool{
	"token":         true,
	"api_token":     true,
	"api-token":     true,
	"apitoken":      true,
	"secret":        true,
	"password":      true,
	"authorization": true,
	"credentials":   true,
}

var defaultLogger *Logger
var once sync.Once

// Default returns the default logger. It writes to stderr so stdout stays
// free for command output.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(LevelInfo, os.Stderr)
	})
	return defaultLogger
}

// New creates a new logger
func New(level Level, output io.Writer) *Logger {
	return &Logger{
		level:   level,
		output:  output,
		fields:  make(map[string]interface{}),
		mu:      &sync.Mutex{},
		secrets: &secretSet{},
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New(LevelError+1, io.Discard)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level
}

// RegisterSecret masks every literal occurrence of value from now on,
// including in loggers derived before the call.
func (l *Logger) RegisterSecret(value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	l.secrets.mu.Lock()
	defer l.secrets.mu.Unlock()
	l.secrets.values = append(l.secrets.values, value)
}

// WithField returns a new logger with the field added
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a new logger with the fields added
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}
	child := l.derive()
	child.fields = newFields
	return child
}

// WithPrefix returns a new logger with the prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	child := l.derive()
	child.prefix = prefix
	return child
}

func (l *Logger) derive() *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		level:   l.level,
		output:  l.output,
		prefix:  l.prefix,
		fields:  l.fields,
		mu:      l.mu,
		secrets: l.secrets,
	}
}

// maskString masks a string showing only first and last 4 chars
func maskString(s string) string {
	if len(s) <= 8 {
		return "***MASKED***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

// mask applies the registered secrets and the default patterns to s.
func (l *Logger) mask(s string) string {
	l.secrets.mu.RLock()
	for _, secret := range l.secrets.values {
		s = strings.ReplaceAll(s, secret, "***MASKED***")
	}
	l.secrets.mu.RUnlock()

	for _, pattern := range defaultSecretPatterns {
		s = pattern.ReplaceAllStringFunc(s, maskString)
	}
	return s
}

// maskValue masks a value if it's a string and the key is sensitive
func (l *Logger) maskValue(key string, value interface{}) interface{} {
	if IsSensitiveKey(key) {
		if str, ok := value.(string); ok {
			return maskString(str)
		}
		return "***MASKED***"
	}
	if str, ok := value.(string); ok {
		return l.mask(str)
	}
	return value
}

// formatFields renders the fields sorted by key.
func (l *Logger) formatFields() string {
	if len(l.fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, l.maskValue(k, l.fields[k])))
	}
	return " " + strings.Join(parts, " ")
}

// log logs a message at the given level
func (l *Logger) log(level Level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")

	formattedMsg := msg
	if len(args) > 0 {
		formattedMsg = fmt.Sprintf(msg, args...)
	}
	formattedMsg = l.mask(formattedMsg)

	prefix := ""
	if l.prefix != "" {
		prefix = "[" + l.prefix + "] "
	}

	fmt.Fprintf(l.output, "%s %s %s%s%s\n", timestamp, level.String(), prefix, formattedMsg, l.formatFields())
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// Diagnostics logs each diagnostic at the level matching its severity.
func (l *Logger) Diagnostics(list diag.List) {
	for _, d := range list {
		switch d.Severity {
		case diag.SeverityError:
			l.Error("%s", d.String())
		case diag.SeverityWarning:
			l.Warn("%s", d.String())
		default:
			l.Debug("%s", d.String())
		}
	}
}

// SetLevel sets the level of the default logger
func SetLevel(level Level) {
	Default().SetLevel(level)
}

// SetOutput sets the output of the default logger
func SetOutput(w io.Writer) {
	Default().SetOutput(w)
}

// MaskSecrets masks all known secret patterns in a string
func MaskSecrets(s string) string {
	return Default().mask(s)
}

// IsSensitiveKey checks if a key name is sensitive
func IsSensitiveKey(key string) bool {
	return sensitiveFieldNames[strings.ToLower(key)]
}
