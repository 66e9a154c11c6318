package logging

import (
	"log"
	"sync"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

var levelRank = map[entities.LogLevel]int{
	entities.LogLevelDebug: 0,
	entities.LogLevelInfo:  1,
	entities.LogLevelWarn:  2,
	entities.LogLevelError: 3,
}

// Logger writes "[LEVEL] [component] message" lines through the standard logger
type Logger struct {
	component string
	verbose   bool
	mu        sync.RWMutex
	level     entities.LogLevel
	output    *log.Logger
}

// New creates a logger for component at info level
func New(component string) *Logger {
	return NewWithLevel(component, false, entities.LogLevelInfo)
}

// NewWithLevel creates a logger for component with an explicit level
func NewWithLevel(component string, verbose bool, level entities.LogLevel) *Logger {
	if _, ok := levelRank[level]; !ok {
		level = entities.LogLevelInfo
	}
	return &Logger{
		component: component,
		verbose:   verbose,
		level:     level,
		output:    log.Default(),
	}
}

// FromConfig creates a logger for component honouring the logging section
func FromConfig(component string, cfg *entities.LoggingConfig) *Logger {
	if cfg == nil {
		return New(component)
	}
	level := cfg.GetLevel()
	if cfg.Verbose && level != entities.LogLevelDebug {
		level = entities.LogLevelDebug
	}
	return NewWithLevel(component, cfg.Verbose, level)
}

// With returns a logger for another component sharing level and output
func (l *Logger) With(component string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &Logger{
		component: component,
		verbose:   l.verbose,
		level:     l.level,
		output:    l.output,
	}
}

// SetOutput redirects the logger, mostly for tests
func (l *Logger) SetOutput(out *log.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = out
}

// SetLevel updates the logging level
func (l *Logger) SetLevel(level entities.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the current logging level
func (l *Logger) Level() entities.LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// shouldLog checks if the message should be logged based on level
func (l *Logger) shouldLog(msgLevel entities.LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return levelRank[msgLevel] >= levelRank[l.level]
}

func (l *Logger) write(tag string, msg string, args []interface{}) {
	l.mu.RLock()
	out := l.output
	l.mu.RUnlock()
	out.Printf("["+tag+"] [%s] "+msg, append([]interface{}{l.component}, args...)...)
}

// Debug logs debug messages (only if debug level is enabled)
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelDebug) {
		l.write("DEBUG", msg, args)
	}
}

// Info logs informational messages
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) {
		l.write("INFO", msg, args)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelWarn) {
		l.write("WARN", msg, args)
	}
}

// Error logs error messages
func (l *Logger) Error(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelError) {
		l.write("ERROR", msg, args)
	}
}

// Success logs success messages at info level
func (l *Logger) Success(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) {
		l.write("SUCCESS", msg, args)
	}
}

// Nop returns a logger that discards everything below error level
func Nop() *Logger {
	return NewWithLevel("nop", false, entities.LogLevelError)
}

var _ ports.Logger = (*Logger)(nil)
