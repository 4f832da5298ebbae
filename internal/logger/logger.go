package logger

import (
	"financial-import-platform/internal/config"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with additional functionality
type Logger struct {
	*logrus.Logger
}

// NewLogger creates a new structured logger instance
func NewLogger(cfg *config.Config) *Logger {
	log := logrus.New()

	// Set log level
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	// Set log format
	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &Logger{Logger: log}
}

// WithConfig adds mapping configuration context to log entries
func (l *Logger) WithConfig(configID string) *logrus.Entry {
	return l.WithField("mapping_config_id", configID)
}

// WithFile adds source file context to log entries
func (l *Logger) WithFile(fileName string) *logrus.Entry {
	return l.WithField("file_name", fileName)
}

// WithColumn adds source column context to log entries
func (l *Logger) WithColumn(columnName string) *logrus.Entry {
	return l.WithField("column", columnName)
}

// WithRequest adds request context to log entries
func (l *Logger) WithRequest(requestID string) *logrus.Entry {
	return l.WithField("request_id", requestID)
}
