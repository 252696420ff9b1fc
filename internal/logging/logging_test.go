package logging

import (
	"os"
	"path/filepath"
	"testing"

	"marketplace/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_ProdUsesJSON(t *testing.T) {
	logger := logrus.New()
	Configure(logger, &config.Config{IsProd: true, LogLevel: "warn"})

	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}

func TestConfigure_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger := logrus.New()
	Configure(logger, &config.Config{LogLevel: "chatty"})

	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestConfigure_WritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger := logrus.New()
	Configure(logger, &config.Config{LogLevel: "info", LogFile: path, IsProd: true})

	logger.WithField("order_id", 7).Info("Order paid")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"order_id":7`)
}
