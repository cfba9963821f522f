package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// NewLogger creates an arbor logger from the logging configuration.
// Outputs may name "console" (or "stdout") and "file"; with none, console is used.
func NewLogger(config LoggingConfig) arbor.ILogger {
	logger := arbor.NewLogger()

	hasFile := false
	hasConsole := len(config.Outputs) == 0
	for _, output := range config.Outputs {
		switch output {
		case "file":
			hasFile = true
		case "console", "stdout":
			hasConsole = true
		}
	}

	if hasFile && config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create log directory: %v\n", err)
			hasConsole = true
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   config.FilePath,
				TimeFormat: "15:04:05",
				MaxSize:    100 * 1024 * 1024, // 100 MB
				MaxBackups: 3,
				TextOutput: true,
			})
		}
	}

	if hasConsole {
		logger = logger.WithConsoleWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeConsole,
			TimeFormat: "15:04:05",
			TextOutput: true,
		})
	}

	return logger.WithLevelFromString(config.Level)
}

// NewDefaultLogger creates a console logger at info level
func NewDefaultLogger() arbor.ILogger {
	return NewLogger(LoggingConfig{Level: "info", Outputs: []string{"console"}})
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() arbor.ILogger {
	return arbor.NewNoOpLogger()
}
