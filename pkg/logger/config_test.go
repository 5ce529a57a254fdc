package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "localhost", config.Host)
	assert.Equal(t, 5000, config.Port)
	assert.Equal(t, 30, config.MaxRetries)
	assert.Equal(t, 2*time.Second, config.RetryInterval)
	assert.Equal(t, 3*time.Second, config.IdleClose)
	assert.Equal(t, 30*time.Second, config.KeepAlive)
	assert.False(t, config.Idle)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{name: "Empty config", config: Config{}},
		{name: "Negative port", config: Config{Port: -1}, expectError: true},
		{name: "Port out of range", config: Config{Port: 70000}, expectError: true},
		{name: "Negative max retries", config: Config{MaxRetries: -3}, expectError: true},
		{name: "Negative retry interval", config: Config{RetryInterval: -time.Second}, expectError: true},
		{name: "Negative queue size", config: Config{MaxQueueSize: -1}, expectError: true},
		{name: "Unknown queue policy", config: Config{QueuePolicy: "reject"}, expectError: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.config.Validate()
			if !test.expectError {
				assert.NoError(t, err)
				return
			}

			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, ErrTypeInvalidConfig, cfgErr.Type)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	config := Config{Host: "logs.internal", Label: "svc"}
	require.NoError(t, config.Validate())

	assert.Equal(t, "logs.internal", config.Host)
	assert.Equal(t, DefaultPort, config.Port)
	assert.Equal(t, DefaultMaxRetries, config.MaxRetries)
	assert.NotNil(t, config.Transformer)
	assert.NotNil(t, config.Dialer)
	assert.NotNil(t, config.Logger)
	assert.Equal(t, "logs.internal:5000", config.Addr())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logship.yaml")
	data := []byte(`
host: collector.local
port: 5044
label: svc-a
max_retries: 4
retry_interval: 500ms
idle_close: 1s
idle: true
max_queue_size: 100
queue_policy: drop_newest
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "collector.local:5044", config.Addr())
	assert.Equal(t, "svc-a", config.Label)
	assert.Equal(t, 4, config.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, config.RetryInterval)
	assert.Equal(t, time.Second, config.IdleClose)
	assert.True(t, config.Idle)
	assert.Equal(t, DefaultKeepAlive, config.KeepAlive)
	assert.Equal(t, 100, config.MaxQueueSize)
	assert.Equal(t, "drop_newest", config.QueuePolicy)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: -5\n"), 0o600))

	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, &Error{Type: ErrTypeInvalidConfig})
}
