// Package common provides the shared logger for upbit-mcp.
package common

import (
	"os"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"
)

const (
	defaultLogLevel   = "info"
	defaultLogFile    = "logs/upbit-mcp.log"
	defaultMaxSize    = 500 * 1024
	defaultMaxBackups = 20
	logTimeFormat     = "2006-01-02T15:04:05Z07:00"
)

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// Logger wraps arbor.ILogger to provide a consistent interface
type Logger struct {
	arbor.ILogger
}

// discardWriter implements writers.IWriter and drops everything, so a silent
// logger never reaches writers registered globally with arbor.
type discardWriter struct{}

func (w *discardWriter) Write(p []byte) (int, error)           { return len(p), nil }
func (w *discardWriter) WithLevel(_ log.Level) writers.IWriter { return w }
func (w *discardWriter) GetFilePath() string                   { return "" }
func (w *discardWriter) Close() error                          { return nil }

// NewLoggerFromConfig builds the process logger. Outputs are "console" and
// "file"; console always means stderr because stdout carries MCP JSON-RPC in
// stdio mode.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	level := cfg.Level
	if level == "" {
		level = defaultLogLevel
	}

	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	l := arbor.NewLogger()
	for _, out := range outputs {
		switch out {
		case "console":
			l = l.WithConsoleWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeConsole,
				Writer:     os.Stderr,
				TimeFormat: logTimeFormat,
			})
		case "file":
			l = l.WithFileWriter(fileWriterConfig(cfg))
		}
	}

	return &Logger{ILogger: l.WithLevelFromString(level)}
}

func fileWriterConfig(cfg LoggingConfig) models.WriterConfiguration {
	path := cfg.FilePath
	if path == "" {
		path = defaultLogFile
	}
	maxSize := int64(cfg.MaxSizeMB) * 1024 * 1024
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	maxBackups := cfg.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeFile,
		FileName:   path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		TimeFormat: logTimeFormat,
	}
}

// NewSilentLogger creates a logger that discards all output. It is the
// fallback for components constructed without a logger.
func NewSilentLogger() *Logger {
	arborLogger := arbor.NewLogger().WithWriters([]writers.IWriter{&discardWriter{}})
	return &Logger{ILogger: arborLogger}
}

// WithCorrelationId returns a Logger tagged with id. The HTTP middleware uses
// the request's X-Correlation-ID.
func (l *Logger) WithCorrelationId(id string) *Logger {
	return &Logger{ILogger: l.ILogger.WithCorrelationId(id)}
}
