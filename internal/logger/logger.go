package logger

import (
	"strings"

	"github.com/rs/zerolog"
)

// Logger provides component-scoped structured logging
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

// ParseLevel maps a textual level to zerolog, falling back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NoOp discards everything. Used by tests and when logging is disabled.
type NoOp struct{}

func (NoOp) Debug(component, message string, fields map[string]interface{})   {}
func (NoOp) Info(component, message string, fields map[string]interface{})    {}
func (NoOp) Warning(component, message string, fields map[string]interface{}) {}
func (NoOp) Error(component string, err error, fields map[string]interface{}) {}
