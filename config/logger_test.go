package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingPrepareFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "manb.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: fname, Mode: "overwrite"},
	}
	require.NoError(t, conf.Validate())

	log, err := conf.Prepare()
	require.NoError(t, err)
	log.Debug("hidden message")
	log.Info("visible message")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible message")
	assert.Contains(t, string(data), AppName)
	assert.NotContains(t, string(data), "hidden message")
}

func TestLoggingPrepareAppend(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "manb.log")
	require.NoError(t, os.WriteFile(fname, []byte("previous run\n"), 0644))

	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: fname, Mode: "append"},
	}
	log, err := conf.Prepare()
	require.NoError(t, err)
	log.Debug("debug message")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.Contains(t, string(data), "previous run")
	assert.Contains(t, string(data), "debug message")
}

func TestLoggingValidate(t *testing.T) {
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "normal"},
		FileLogger:    LoggerConfig{Level: "none"},
	}
	require.NoError(t, conf.Validate())

	conf.FileLogger.Mode = "rotate"
	require.Error(t, conf.Validate())
}
