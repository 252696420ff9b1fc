package logging

import (
	"io" // Writer composition
	"os" // Stdout

	"marketplace/internal/config" // Application configuration

	"github.com/natefinch/lumberjack" // Rotating log files
	"github.com/sirupsen/logrus"      // Logrus for structured logging
)

// Setup configures the global logrus logger from the application config
func Setup(cfg *config.Config) {
	Configure(logrus.StandardLogger(), cfg)
}

// Configure applies level, formatter and output to the given logger
func Configure(logger *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel // Unknown level names fall back to info
	}
	logger.SetLevel(level)

	// JSON for log shippers in production, readable text otherwise
	if cfg.IsProd {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile, // Log file path
			MaxSize:    50,          // Megabytes before rotation
			MaxBackups: 5,           // Rotated files kept
			MaxAge:     28,          // Days to keep rotated files
			Compress:   true,        // Gzip rotated files
		})
	}
	logger.SetOutput(out)
}
