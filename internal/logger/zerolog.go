package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
)

const logFileRelPath = "ribscan/ribscan.log"

type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: logger}
}

// NewConsoleLogger writes human readable lines, or JSON when asJSON is set.
func NewConsoleLogger(level zerolog.Level, asJSON bool) *ZerologAdapter {
	if asJSON {
		return NewZerolog(os.Stdout, level)
	}
	return NewZerolog(zerolog.ConsoleWriter{Out: os.Stdout}, level)
}

// NewTeeLogger writes to the console and additionally to file as JSON.
func NewTeeLogger(level zerolog.Level, asJSON bool, file io.Writer) *ZerologAdapter {
	var console io.Writer = zerolog.ConsoleWriter{Out: os.Stdout}
	if asJSON {
		console = os.Stdout
	}
	return NewZerolog(zerolog.MultiLevelWriter(console, file), level)
}

// OpenLogFile opens (creating as needed) the log file under the XDG state
// directory and returns it together with its resolved path.
func OpenLogFile() (*os.File, string, error) {
	path, err := xdg.StateFile(logFileRelPath)
	if err != nil {
		return nil, "", fmt.Errorf("resolve log file path: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, path, nil
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	event := z.logger.Info().Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	event := z.logger.Error().Str("component", component).Err(err)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg("operation failed")
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	event := z.logger.Warn().Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	event := z.logger.Debug().Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}
