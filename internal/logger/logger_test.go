package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gestorpro/gestor-api/internal/config"
	"github.com/gestorpro/gestor-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_UnknownFormat(t *testing.T) {
	_, err := logger.NewLogger(&config.LoggingConfig{Level: "info", Format: "xml"}, &config.AppConfig{})
	assert.Error(t, err)
}

func TestNewLogger_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	log, err := logger.NewLogger(
		&config.LoggingConfig{Level: "debug", Format: "console", File: path, MaxSizeMB: 1},
		&config.AppConfig{Name: "Gestor API", Environment: "test"},
	)
	require.NoError(t, err)

	logger.WithRequest(log, "GET", "/api/v1/deals", "req-1").Info("request completed")
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"request_id":"req-1"`)
	assert.Contains(t, string(raw), `"environment":"test"`)
}
