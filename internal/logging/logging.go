// Package logging builds the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/farmassist/internal/config"
)

// New returns a logger configured from cfg; JSON in prod or when asked, text otherwise.
func New(app config.AppConfig, cfg config.LoggingConfig) *logrus.Logger {
	return NewWithOutput(app, cfg, os.Stdout)
}

func NewWithOutput(app config.AppConfig, cfg config.LoggingConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if cfg.Format == "json" || app.Env == "prod" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithField("level", cfg.Level).Warn("unknown log level, using info")
	}
	logger.SetLevel(level)
	return logger
}
